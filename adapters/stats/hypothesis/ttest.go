package hypothesis

import (
	"fmt"
	"math"

	"churnstats/domain/core"
	"churnstats/domain/dataset"
	"churnstats/domain/stats"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	groupALabel = "0"
	groupBLabel = "1"
)

// TTest runs Student's independent two-sample t-test (pooled variance) for
// every numeric column, comparing rows whose target is 0 (group A) against
// rows whose target is 1 (group B).
//
// H0: both groups share one mean. The statistic is positive when group A has
// the larger mean. Rows with a missing target are ignored; any other label
// than 0 or 1 is rejected. P-values are rounded to 10 decimals and rows are
// ranked by t-statistic, largest first.
func TTest(table *dataset.Table, target *dataset.Target, opts Options) (*stats.ResultTable, error) {
	if err := stats.ValidateThreshold(opts.Threshold); err != nil {
		return nil, err
	}
	alt, err := opts.alternative()
	if err != nil {
		return nil, err
	}
	if err := checkTargetShape(table, target); err != nil {
		return nil, err
	}
	for i := 0; i < target.Len(); i++ {
		if l := target.Label(i); l != "" && l != groupALabel && l != groupBLabel {
			return nil, fmt.Errorf("%w: row %d has label %q", core.ErrNonBinary, i, l)
		}
	}
	numeric, err := numericFeatures(table)
	if err != nil {
		return nil, err
	}

	result := &stats.ResultTable{
		Test:        stats.TestTTest,
		Threshold:   opts.Threshold,
		Alternative: alt,
		Rows:        make([]stats.FeatureResult, 0, len(numeric)),
	}

	for _, col := range numeric {
		var a, b []float64
		for i, v := range col.Floats {
			switch target.Label(i) {
			case groupALabel:
				a = append(a, v)
			case groupBLabel:
				b = append(b, v)
			}
		}

		t, df := pooledT(a, b)
		p := stats.RoundPValue(tPValue(t, df, alt))

		result.Rows = append(result.Rows, stats.FeatureResult{
			Feature:          col.Name,
			Statistic:        t,
			PValue:           p,
			DegreesOfFreedom: df,
		})
	}

	result.SortByStatisticDesc()
	for i := range result.Rows {
		result.Rows[i].Decision = stats.Decide(result.Rows[i].PValue, opts.Threshold)
	}

	return result, nil
}

// pooledT returns the equal-variance t statistic and its degrees of freedom
func pooledT(a, b []float64) (float64, int) {
	n1, n2 := len(a), len(b)
	df := n1 + n2 - 2
	if n1 == 0 || n2 == 0 || df <= 0 {
		return math.NaN(), df
	}

	mean1 := stat.Mean(a, nil)
	mean2 := stat.Mean(b, nil)

	var ss float64
	for _, v := range a {
		ss += (v - mean1) * (v - mean1)
	}
	for _, v := range b {
		ss += (v - mean2) * (v - mean2)
	}

	pooledVariance := ss / float64(df)
	standardError := math.Sqrt(pooledVariance * (1/float64(n1) + 1/float64(n2)))

	return (mean1 - mean2) / standardError, df
}

func tPValue(t float64, df int, alt stats.Alternative) float64 {
	if math.IsNaN(t) {
		return math.NaN()
	}

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	survival := func(x float64) float64 {
		switch {
		case math.IsInf(x, 1):
			return 0
		case math.IsInf(x, -1):
			return 1
		}
		return dist.Survival(x)
	}

	switch alt {
	case stats.Less:
		return survival(-t)
	case stats.Greater:
		return survival(t)
	default:
		return math.Min(1, 2*survival(math.Abs(t)))
	}
}
