// Package hypothesis ranks table features by their association with a target
// label using one-way ANOVA, the chi-square test of independence and the
// independent two-sample t-test.
//
// Every function is a pure transformation: inputs are only read, and the
// returned ResultTable is freshly allocated. Configuration and shape problems
// fail fast. A degenerate feature (an empty group, zero variance) yields a
// NaN row instead of aborting the batch.
package hypothesis

import (
	"churnstats/domain/core"
	"churnstats/domain/dataset"
	"churnstats/domain/stats"
)

// Options configures a test run
type Options struct {
	// Threshold is the significance level, in (0,1)
	Threshold float64
	// Alternative is only consulted by TTest
	Alternative stats.Alternative
}

// DefaultOptions returns a 0.05 threshold and a two-sided alternative
func DefaultOptions() Options {
	return Options{
		Threshold:   stats.DefaultThreshold,
		Alternative: stats.TwoSided,
	}
}

func (o Options) alternative() (stats.Alternative, error) {
	return stats.ParseAlternative(string(o.Alternative))
}

func checkTargetShape(table *dataset.Table, target *dataset.Target) error {
	if target == nil {
		return core.NewInvalidInputError("target", "nil target")
	}
	if target.Len() != table.Rows() {
		return core.NewShapeMismatchError("target", target.Len(), table.Rows())
	}
	return nil
}

func numericFeatures(table *dataset.Table) ([]*dataset.Column, error) {
	numeric := table.NumericColumns()
	if len(numeric) == 0 {
		return nil, core.ErrNoFeatures
	}
	return numeric, nil
}
