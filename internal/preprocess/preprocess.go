// Package preprocess cleans a raw churn export into an analysis-ready CSV:
// one column is forced numeric, the churn label becomes 1/0, the senior
// citizen flag becomes Yes/No, and incomplete rows are dropped.
package preprocess

import (
	stderrors "errors"
	"math"
	"os"
	"strconv"
	"strings"

	"churnstats/adapters/datareadiness/coercer"
	"churnstats/adapters/tabular"
	"churnstats/internal"
	"churnstats/internal/config"
	"churnstats/internal/errors"
)

// Options names the rewritten columns and the missing-value rules
type Options struct {
	NumericColumn   string
	LabelColumn     string
	IndicatorColumn string
	Coercion        coercer.CoercionConfig
}

// DefaultOptions targets the Telco churn export layout
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Preprocess)
}

// OptionsFromConfig builds Options from the loaded configuration
func OptionsFromConfig(cfg config.PreprocessConfig) Options {
	return Options{
		NumericColumn:   cfg.NumericColumn,
		LabelColumn:     cfg.LabelColumn,
		IndicatorColumn: cfg.IndicatorColumn,
		Coercion:        coercer.DefaultCoercionConfig(),
	}
}

// Summary counts what a run did
type Summary struct {
	RowsRead         int
	CoercedToMissing int // cells of the numeric column that failed to parse
	RowsDropped      int
	RowsWritten      int
}

var labelMap = map[string]string{"Yes": "1", "No": "0"}

// Run applies the cleaning steps to frame and returns a new frame. frame is
// not modified.
func Run(frame *tabular.Frame, opts Options) (*tabular.Frame, Summary, error) {
	summary := Summary{RowsRead: len(frame.Rows)}
	c := coercer.NewTypeCoercer(opts.Coercion)

	var idx [3]int
	for i, name := range []string{opts.NumericColumn, opts.LabelColumn, opts.IndicatorColumn} {
		pos, err := frame.MustColumnIndex(name)
		if err != nil {
			return nil, summary, err
		}
		idx[i] = pos
	}
	numericIdx, labelIdx, indicatorIdx := idx[0], idx[1], idx[2]

	out := &tabular.Frame{
		Headers: append([]string(nil), frame.Headers...),
		Rows:    make([][]string, 0, len(frame.Rows)),
	}

	for _, raw := range frame.Rows {
		row := append([]string(nil), raw...)

		if v := c.CoerceNumeric(row[numericIdx]); math.IsNaN(v) {
			if !c.IsMissing(row[numericIdx]) {
				summary.CoercedToMissing++
			}
			row[numericIdx] = ""
		} else {
			row[numericIdx] = FormatFloat(v)
		}

		if mapped, ok := labelMap[row[labelIdx]]; ok {
			row[labelIdx] = mapped
		}

		if v, ok := c.ParseNumeric(row[indicatorIdx]); ok {
			switch v {
			case 0:
				row[indicatorIdx] = "No"
			case 1:
				row[indicatorIdx] = "Yes"
			}
		}

		if hasMissing(row, c) {
			summary.RowsDropped++
			continue
		}
		out.Rows = append(out.Rows, row)
	}

	summary.RowsWritten = len(out.Rows)
	return out, summary, nil
}

func hasMissing(row []string, c *coercer.TypeCoercer) bool {
	for _, cell := range row {
		if c.IsMissing(cell) {
			return true
		}
	}
	return false
}

// FormatFloat renders v the way pandas writes float columns: shortest
// round-trip digits, a trailing ".0" on integral values and scientific
// notation outside [1e-4, 1e16).
func FormatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ProcessFile reads input, cleans it and writes output
func ProcessFile(input, output string, opts Options, logger *internal.Logger) (Summary, error) {
	frame, err := tabular.NewDataReader(input).ReadData()
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return Summary{}, errors.Wrapf(err, "failed to read %s", input)
		}
		return Summary{}, errors.ParseError(input, err)
	}

	cleaned, summary, err := Run(frame, opts)
	if err != nil {
		return summary, errors.Wrapf(err, "failed to preprocess %s", input)
	}

	logger.Info("Preprocessed %s: %d rows read, %d %s values coerced to missing, %d rows dropped",
		input, summary.RowsRead, summary.CoercedToMissing, opts.NumericColumn, summary.RowsDropped)

	if err := tabular.WriteCSVFile(output, cleaned); err != nil {
		return summary, errors.IOError(output, err)
	}

	logger.Info("Wrote %d rows to %s", summary.RowsWritten, output)
	return summary, nil
}
