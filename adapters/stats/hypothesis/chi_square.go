package hypothesis

import (
	"math"

	"churnstats/domain/core"
	"churnstats/domain/dataset"
	"churnstats/domain/stats"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquare runs a chi-square test of independence between each named column
// and the target.
//
// H0: the column and the target are independent. Each column is cross-tabulated
// against the target, skipping rows where either side is missing. Numeric
// columns are cross-tabulated by value. Yates' continuity correction is
// applied to tables with one degree of freedom. P-values are reported
// unrounded and rows are ranked by p-value, strongest association first.
func ChiSquare(table *dataset.Table, target *dataset.Target, categoricalCols []string, opts Options) (*stats.ResultTable, error) {
	if err := stats.ValidateThreshold(opts.Threshold); err != nil {
		return nil, err
	}
	if len(categoricalCols) == 0 {
		return nil, core.NewInvalidInputError("categorical columns", "list is empty")
	}

	columns := make([]*dataset.Column, len(categoricalCols))
	for i, name := range categoricalCols {
		col, ok := table.Column(name)
		if !ok {
			return nil, core.NewColumnNotFoundError(name)
		}
		columns[i] = col
	}
	if err := checkTargetShape(table, target); err != nil {
		return nil, err
	}

	result := &stats.ResultTable{
		Test:      stats.TestChiSquare,
		Threshold: opts.Threshold,
		Rows:      make([]stats.FeatureResult, 0, len(columns)),
	}

	for _, col := range columns {
		chi2, p, dof := chiSquareIndependence(crosstab(col, target))
		result.Rows = append(result.Rows, stats.FeatureResult{
			Feature:          col.Name,
			Statistic:        chi2,
			PValue:           p,
			DegreesOfFreedom: dof,
			Decision:         stats.Decide(p, opts.Threshold),
		})
	}

	result.SortByPValueAsc()
	return result, nil
}

// crosstab counts co-occurrences of column values (rows) and target labels
// (columns), both in first-seen order.
func crosstab(col *dataset.Column, target *dataset.Target) [][]float64 {
	rowPos := make(map[string]int)
	colPos := make(map[string]int)
	var counts [][]float64

	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) || target.Missing(i) {
			continue
		}

		r, ok := rowPos[col.Key(i)]
		if !ok {
			r = len(counts)
			rowPos[col.Key(i)] = r
			counts = append(counts, make([]float64, len(colPos)))
		}

		c, ok := colPos[target.Label(i)]
		if !ok {
			c = len(colPos)
			colPos[target.Label(i)] = c
			for j := range counts {
				counts[j] = append(counts[j], 0)
			}
		}

		counts[r][c]++
	}

	return counts
}

// chiSquareIndependence computes Pearson's statistic, its p-value and the
// degrees of freedom (r-1)(c-1) for an observed contingency table.
func chiSquareIndependence(observed [][]float64) (float64, float64, int) {
	if len(observed) == 0 || len(observed[0]) == 0 {
		return math.NaN(), math.NaN(), 0
	}
	rows, cols := len(observed), len(observed[0])

	rowTotals := make([]float64, rows)
	colTotals := make([]float64, cols)
	for i := range observed {
		rowTotals[i], _ = mstats.Sum(observed[i])
		for j, v := range observed[i] {
			colTotals[j] += v
		}
	}
	total, _ := mstats.Sum(rowTotals)

	dof := (rows - 1) * (cols - 1)
	if dof == 0 {
		// observed equals expected
		return 0, 1, 0
	}

	var chi2 float64
	for i := range observed {
		for j, o := range observed[i] {
			expected := rowTotals[i] * colTotals[j] / total
			if expected == 0 {
				return math.NaN(), math.NaN(), dof
			}
			if dof == 1 {
				o = yatesCorrect(o, expected)
			}
			chi2 += (o - expected) * (o - expected) / expected
		}
	}

	return chi2, distuv.ChiSquared{K: float64(dof)}.Survival(chi2), dof
}

// yatesCorrect moves an observed count up to 0.5 toward its expected count
func yatesCorrect(observed, expected float64) float64 {
	diff := expected - observed
	return observed + math.Copysign(math.Min(0.5, math.Abs(diff)), diff)
}
