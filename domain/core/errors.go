package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrInvalidInput   = errors.New("invalid input")
	ErrShapeMismatch  = fmt.Errorf("%w: shape mismatch", ErrInvalidInput)
	ErrColumnNotFound = fmt.Errorf("%w: column not found", ErrInvalidInput)
	ErrNoFeatures     = fmt.Errorf("%w: no testable features", ErrInvalidInput)
	ErrBadThreshold   = fmt.Errorf("%w: p-value threshold must be in (0,1)", ErrInvalidInput)
	ErrNonBinary      = fmt.Errorf("%w: target is not binary", ErrInvalidInput)

	// Computation outcomes that are reported inline, never returned as failures
	ErrUndefinedStatistic = errors.New("undefined statistic")
)

// Error constructors with context
func NewInvalidInputError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, reason)
}

func NewShapeMismatchError(what string, got, want int) error {
	return fmt.Errorf("%w: %s has length %d, expected %d", ErrShapeMismatch, what, got, want)
}

func NewColumnNotFoundError(name string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// Error checking helpers
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsShapeMismatch(err error) bool {
	return errors.Is(err, ErrShapeMismatch)
}

func IsColumnNotFound(err error) bool {
	return errors.Is(err, ErrColumnNotFound)
}
