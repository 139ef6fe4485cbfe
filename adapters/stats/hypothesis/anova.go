package hypothesis

import (
	"math"

	"churnstats/domain/core"
	"churnstats/domain/dataset"
	"churnstats/domain/stats"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ANOVA runs a one-way analysis of variance for every numeric column of table
// across the groups formed by the target's distinct labels.
//
// H0: the group means are equal. Non-numeric columns are skipped. Rows whose
// target label is missing do not take part. P-values are rounded to 10
// decimals and rows are ranked by F-score, strongest first.
func ANOVA(table *dataset.Table, target *dataset.Target, opts Options) (*stats.ResultTable, error) {
	if err := stats.ValidateThreshold(opts.Threshold); err != nil {
		return nil, err
	}
	numeric, err := numericFeatures(table)
	if err != nil {
		return nil, err
	}
	if err := checkTargetShape(table, target); err != nil {
		return nil, err
	}

	levels := target.Levels()
	if len(levels) < 2 {
		return nil, core.NewInvalidInputError("target", "ANOVA needs at least 2 distinct labels")
	}

	groupOf := groupIndex(target, levels)

	result := &stats.ResultTable{
		Test:      stats.TestANOVA,
		Threshold: opts.Threshold,
		Rows:      make([]stats.FeatureResult, 0, len(numeric)),
	}

	for _, col := range numeric {
		groups := make([][]float64, len(levels))
		for i, v := range col.Floats {
			if g := groupOf[i]; g >= 0 {
				groups[g] = append(groups[g], v)
			}
		}

		f, dfBetween, dfWithin := oneWayF(groups)
		p := stats.RoundPValue(fSurvival(f, dfBetween, dfWithin))

		result.Rows = append(result.Rows, stats.FeatureResult{
			Feature:          col.Name,
			Statistic:        f,
			PValue:           p,
			DegreesOfFreedom: dfBetween,
			DenominatorDF:    dfWithin,
		})
	}

	result.SortByStatisticDesc()
	for i := range result.Rows {
		result.Rows[i].Decision = stats.Decide(result.Rows[i].PValue, opts.Threshold)
	}

	return result, nil
}

// groupIndex maps each row to the position of its label in levels, or -1
func groupIndex(target *dataset.Target, levels []string) []int {
	pos := make(map[string]int, len(levels))
	for i, l := range levels {
		pos[l] = i
	}

	idx := make([]int, target.Len())
	for i := range idx {
		if target.Missing(i) {
			idx[i] = -1
			continue
		}
		idx[i] = pos[target.Label(i)]
	}
	return idx
}

// oneWayF computes the F statistic (between-group mean square over
// within-group mean square) along with both degrees of freedom.
func oneWayF(groups [][]float64) (f float64, dfBetween, dfWithin int) {
	var all []float64
	k := 0
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		k++
		all = append(all, g...)
	}

	dfBetween = k - 1
	dfWithin = len(all) - k
	if dfBetween <= 0 || dfWithin <= 0 {
		return math.NaN(), dfBetween, dfWithin
	}

	grand := stat.Mean(all, nil)

	var ssBetween, ssWithin float64
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		mean := stat.Mean(g, nil)
		d := mean - grand
		ssBetween += float64(len(g)) * d * d
		for _, v := range g {
			ssWithin += (v - mean) * (v - mean)
		}
	}

	msBetween := ssBetween / float64(dfBetween)
	msWithin := ssWithin / float64(dfWithin)
	return msBetween / msWithin, dfBetween, dfWithin
}

func fSurvival(f float64, d1, d2 int) float64 {
	switch {
	case math.IsNaN(f):
		return math.NaN()
	case math.IsInf(f, 1):
		return 0
	}
	return distuv.F{D1: float64(d1), D2: float64(d2)}.Survival(f)
}
