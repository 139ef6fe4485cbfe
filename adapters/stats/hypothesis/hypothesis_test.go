package hypothesis

import (
	"math"
	"testing"

	"churnstats/domain/core"
	"churnstats/domain/dataset"
	"churnstats/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func mustTable(t *testing.T, cols ...*dataset.Column) *dataset.Table {
	t.Helper()
	table, err := dataset.NewTable(cols...)
	require.NoError(t, err)
	return table
}

// repeat expands label/count pairs into a flat label slice
func repeat(pairs ...interface{}) []string {
	var out []string
	for i := 0; i < len(pairs); i += 2 {
		for n := 0; n < pairs[i+1].(int); n++ {
			out = append(out, pairs[i].(string))
		}
	}
	return out
}

func assertDecisions(t *testing.T, table *stats.ResultTable) {
	t.Helper()
	for _, row := range table.Rows {
		want := stats.DecisionFailToReject
		if row.PValue < table.Threshold {
			want = stats.DecisionReject
		}
		assert.Equal(t, want, row.Decision, "feature %s", row.Feature)
	}
}

func assertRounded(t *testing.T, table *stats.ResultTable) {
	t.Helper()
	for _, row := range table.Rows {
		if math.IsNaN(row.PValue) {
			continue
		}
		scaled := row.PValue * 1e10
		assert.InDelta(t, math.Round(scaled), scaled, 1e-3, "p-value %v of %s not rounded to 10 decimals", row.PValue, row.Feature)
	}
}

// ---------------------------------------------------------------------------
// ANOVA
// ---------------------------------------------------------------------------

func TestANOVA_KnownFStatistic(t *testing.T) {
	table := mustTable(t,
		dataset.NewNumericColumn("score", []float64{1, 2, 3, 2, 3, 4, 5, 6, 7}),
	)
	target := dataset.NewTarget([]string{"a", "a", "a", "b", "b", "b", "c", "c", "c"})

	result, err := ANOVA(table, target, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, result.Len())

	row := result.Rows[0]
	assert.Equal(t, stats.TestANOVA, result.Test)
	assert.InDelta(t, 13.0, row.Statistic, tolerance)
	// F(2, 6) survival at 13 is (6/32)^3
	assert.InDelta(t, 0.0065917969, row.PValue, tolerance)
	assert.Equal(t, 2, row.DegreesOfFreedom)
	assert.Equal(t, 6, row.DenominatorDF)
	assert.Equal(t, stats.DecisionReject, row.Decision)
}

func TestANOVA_SkipsCategoricalAndRanksByF(t *testing.T) {
	table := mustTable(t,
		dataset.NewNumericColumn("noise", []float64{1, 3, 2, 2, 3, 1}),
		dataset.NewCategoricalColumn("contract", []string{"m", "m", "y", "y", "m", "y"}),
		dataset.NewNumericColumn("tenure", []float64{1, 2, 1, 10, 11, 12}),
		dataset.NewNumericColumn("charges", []float64{5, 6, 7, 6, 7, 8}),
	)
	target := dataset.NewNumericTarget([]float64{0, 0, 0, 1, 1, 1})

	result, err := ANOVA(table, target, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Len(), "one row per numeric column")
	assert.NotContains(t, result.Features(), "contract")
	assert.Equal(t, "tenure", result.Rows[0].Feature)

	for i := 1; i < result.Len(); i++ {
		assert.GreaterOrEqual(t, result.Rows[i-1].Statistic, result.Rows[i].Statistic)
	}
	assertRounded(t, result)
	assertDecisions(t, result)
}

func TestANOVA_Thresholds(t *testing.T) {
	table := mustTable(t,
		dataset.NewNumericColumn("a", []float64{1, 2, 3, 2, 3, 4, 5, 6, 7}),
		dataset.NewNumericColumn("b", []float64{1, 5, 3, 2, 4, 4, 3, 2, 5}),
	)
	target := dataset.NewTarget([]string{"x", "x", "x", "y", "y", "y", "z", "z", "z"})

	for _, threshold := range []float64{0.01, 0.05, 0.10} {
		result, err := ANOVA(table, target, Options{Threshold: threshold})
		require.NoError(t, err)
		assert.Equal(t, threshold, result.Threshold)
		assertDecisions(t, result)
	}
}

func TestANOVA_Errors(t *testing.T) {
	numeric := mustTable(t, dataset.NewNumericColumn("x", []float64{1, 2, 3, 4}))
	target := dataset.NewNumericTarget([]float64{0, 0, 1, 1})

	t.Run("no numeric columns", func(t *testing.T) {
		table := mustTable(t, dataset.NewCategoricalColumn("c", []string{"a", "b", "a", "b"}))
		_, err := ANOVA(table, target, DefaultOptions())
		assert.True(t, core.IsInvalidInput(err))
	})

	t.Run("target length mismatch", func(t *testing.T) {
		_, err := ANOVA(numeric, dataset.NewNumericTarget([]float64{0, 1}), DefaultOptions())
		assert.True(t, core.IsInvalidInput(err))
		assert.True(t, core.IsShapeMismatch(err))
	})

	t.Run("single target class", func(t *testing.T) {
		_, err := ANOVA(numeric, dataset.NewNumericTarget([]float64{1, 1, 1, 1}), DefaultOptions())
		assert.True(t, core.IsInvalidInput(err))
	})

	t.Run("threshold out of range", func(t *testing.T) {
		_, err := ANOVA(numeric, target, Options{Threshold: 1.2})
		assert.True(t, core.IsInvalidInput(err))
	})
}

func TestANOVA_DegenerateFeaturesDoNotAbort(t *testing.T) {
	table := mustTable(t,
		dataset.NewNumericColumn("constant", []float64{4, 4, 4, 4}),
		dataset.NewNumericColumn("separated", []float64{1, 1, 2, 2}),
		dataset.NewNumericColumn("useful", []float64{1, 2, 3, 5}),
	)
	target := dataset.NewNumericTarget([]float64{0, 0, 1, 1})

	result, err := ANOVA(table, target, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 3, result.Len())

	byName := map[string]stats.FeatureResult{}
	for _, r := range result.Rows {
		byName[r.Feature] = r
	}

	assert.True(t, math.IsNaN(byName["constant"].Statistic))
	assert.True(t, math.IsNaN(byName["constant"].PValue))
	assert.Equal(t, stats.DecisionFailToReject, byName["constant"].Decision)

	assert.True(t, math.IsInf(byName["separated"].Statistic, 1))
	assert.Equal(t, 0.0, byName["separated"].PValue)

	assert.Equal(t, "constant", result.Rows[2].Feature, "NaN rows sort last")
}

func TestANOVA_SingletonGroupsLeaveNoWithinDF(t *testing.T) {
	table := mustTable(t, dataset.NewNumericColumn("x", []float64{1, 2}))
	target := dataset.NewTarget([]string{"a", "b"})

	result, err := ANOVA(table, target, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, math.IsNaN(result.Rows[0].Statistic))
	assert.Equal(t, 0, result.Rows[0].DenominatorDF)
}

// ---------------------------------------------------------------------------
// t-test
// ---------------------------------------------------------------------------

func TestTTest_KnownValues(t *testing.T) {
	table := mustTable(t, dataset.NewNumericColumn("x", []float64{2, 1, 3, 4, 6, 5, 7, 9}))
	target := dataset.NewNumericTarget([]float64{0, 0, 0, 0, 1, 1, 1, 1})

	result, err := TTest(table, target, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, result.Len())

	row := result.Rows[0]
	assert.Equal(t, stats.TestTTest, result.Test)
	assert.Equal(t, stats.TwoSided, result.Alternative)
	assert.InDelta(t, -3.9703446152237674, row.Statistic, tolerance)
	assert.InDelta(t, 0.0073640592, row.PValue, tolerance)
	assert.Equal(t, 6, row.DegreesOfFreedom)
	assert.Equal(t, stats.DecisionReject, row.Decision)
}

func TestTTest_Alternatives(t *testing.T) {
	table := mustTable(t, dataset.NewNumericColumn("x", []float64{2, 1, 3, 4, 6, 5, 7, 9}))
	target := dataset.NewNumericTarget([]float64{0, 0, 0, 0, 1, 1, 1, 1})

	less, err := TTest(table, target, Options{Threshold: 0.05, Alternative: stats.Less})
	require.NoError(t, err)
	assert.InDelta(t, 0.0036820296, less.Rows[0].PValue, 1e-9)
	assert.Equal(t, stats.DecisionReject, less.Rows[0].Decision)

	greater, err := TTest(table, target, Options{Threshold: 0.05, Alternative: stats.Greater})
	require.NoError(t, err)
	assert.InDelta(t, 0.9963179704, greater.Rows[0].PValue, 1e-9)
	assert.Equal(t, stats.DecisionFailToReject, greater.Rows[0].Decision)

	_, err = TTest(table, target, Options{Threshold: 0.05, Alternative: "sideways"})
	assert.True(t, core.IsInvalidInput(err))
}

func TestTTest_SwappingGroupsNegatesStatistic(t *testing.T) {
	table := mustTable(t,
		dataset.NewNumericColumn("x", []float64{2, 1, 3, 4, 6, 5, 7, 9}),
		dataset.NewNumericColumn("y", []float64{3, 8, 1, 4, 5, 2, 6, 7}),
	)
	labels := []float64{0, 0, 0, 0, 1, 1, 1, 1}
	swapped := make([]float64, len(labels))
	for i, l := range labels {
		swapped[i] = 1 - l
	}

	original, err := TTest(table, dataset.NewNumericTarget(labels), DefaultOptions())
	require.NoError(t, err)
	flipped, err := TTest(table, dataset.NewNumericTarget(swapped), DefaultOptions())
	require.NoError(t, err)

	byName := map[string]stats.FeatureResult{}
	for _, r := range flipped.Rows {
		byName[r.Feature] = r
	}
	for _, r := range original.Rows {
		other := byName[r.Feature]
		assert.InDelta(t, -r.Statistic, other.Statistic, tolerance)
		assert.InDelta(t, r.PValue, other.PValue, tolerance)
	}
}

func TestTTest_LinearlySeparable(t *testing.T) {
	table := mustTable(t, dataset.NewNumericColumn("x", []float64{1, 1, 1, 2, 2, 2}))
	target := dataset.NewNumericTarget([]float64{0, 0, 0, 1, 1, 1})

	result, err := TTest(table, target, DefaultOptions())
	require.NoError(t, err)

	row := result.Rows[0]
	assert.InDelta(t, 0.0, row.PValue, 1e-10)
	assert.Equal(t, stats.DecisionReject, row.Decision)
}

func TestTTest_SortedAndRounded(t *testing.T) {
	table := mustTable(t,
		dataset.NewNumericColumn("a", []float64{1, 2, 3, 4, 5, 6, 7, 8}),
		dataset.NewNumericColumn("b", []float64{8, 7, 6, 5, 4, 3, 2, 1}),
		dataset.NewCategoricalColumn("gender", []string{"f", "m", "f", "m", "f", "m", "f", "m"}),
		dataset.NewNumericColumn("c", []float64{3, 1, 4, 1, 5, 9, 2, 6}),
	)
	target := dataset.NewNumericTarget([]float64{0, 0, 0, 0, 1, 1, 1, 1})

	result, err := TTest(table, target, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Len())
	assert.Equal(t, "b", result.Rows[0].Feature)
	assert.Equal(t, "a", result.Rows[2].Feature)
	for i := 1; i < result.Len(); i++ {
		assert.GreaterOrEqual(t, result.Rows[i-1].Statistic, result.Rows[i].Statistic)
	}
	assertRounded(t, result)
	assertDecisions(t, result)
}

func TestTTest_Errors(t *testing.T) {
	table := mustTable(t, dataset.NewNumericColumn("x", []float64{1, 2, 3, 4}))

	_, err := TTest(table, dataset.NewNumericTarget([]float64{0, 1, 2, 1}), DefaultOptions())
	assert.ErrorIs(t, err, core.ErrNonBinary)
	assert.True(t, core.IsInvalidInput(err))

	_, err = TTest(table, dataset.NewTarget([]string{"No", "Yes", "No", "Yes"}), DefaultOptions())
	assert.True(t, core.IsInvalidInput(err))

	_, err = TTest(table, dataset.NewNumericTarget([]float64{0, 1, 0}), DefaultOptions())
	assert.True(t, core.IsShapeMismatch(err))

	_, err = TTest(table, dataset.NewNumericTarget([]float64{0, 1, 0, 1}), Options{Threshold: 0})
	assert.True(t, core.IsInvalidInput(err))
}

func TestTTest_EmptyGroupYieldsNaN(t *testing.T) {
	table := mustTable(t, dataset.NewNumericColumn("x", []float64{1, 2, 3}))
	target := dataset.NewNumericTarget([]float64{0, 0, 0})

	result, err := TTest(table, target, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, result.Len())
	assert.True(t, math.IsNaN(result.Rows[0].Statistic))
	assert.True(t, math.IsNaN(result.Rows[0].PValue))
	assert.Equal(t, stats.DecisionFailToReject, result.Rows[0].Decision)
}

// ---------------------------------------------------------------------------
// Chi-square
// ---------------------------------------------------------------------------

func TestChiSquare_KnownStatistic(t *testing.T) {
	contract := repeat("A", 30, "B", 40, "C", 40)
	churn := repeat("0", 10, "1", 20, "0", 20, "1", 20, "0", 30, "1", 10)

	table := mustTable(t, dataset.NewCategoricalColumn("contract", contract))
	result, err := ChiSquare(table, dataset.NewTarget(churn), []string{"contract"}, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, result.Len())

	row := result.Rows[0]
	assert.Equal(t, stats.TestChiSquare, result.Test)
	assert.Equal(t, 2, row.DegreesOfFreedom)
	assert.InDelta(t, 12.52777777777778, row.Statistic, tolerance)
	// chi-square survival with 2 dof is exp(-x/2); p is not rounded
	assert.InDelta(t, 0.001903827607695494, row.PValue, 1e-12)
	assert.Equal(t, stats.DecisionReject, row.Decision)
}

func TestChiSquare_YatesCorrection(t *testing.T) {
	partner := repeat("Yes", 30, "No", 30)
	churn := repeat("0", 20, "1", 10, "0", 10, "1", 20)

	table := mustTable(t, dataset.NewCategoricalColumn("Partner", partner))
	result, err := ChiSquare(table, dataset.NewTarget(churn), []string{"Partner"}, DefaultOptions())
	require.NoError(t, err)

	row := result.Rows[0]
	assert.Equal(t, 1, row.DegreesOfFreedom)
	assert.InDelta(t, 5.4, row.Statistic, tolerance)
	assert.InDelta(t, 0.02013675155034634, row.PValue, 1e-12)
}

func TestChiSquare_IndependentColumnFailsToReject(t *testing.T) {
	gender := repeat("Male", 20, "Female", 20)
	churn := repeat("0", 11, "1", 9, "0", 9, "1", 11)

	table := mustTable(t, dataset.NewCategoricalColumn("gender", gender))
	result, err := ChiSquare(table, dataset.NewTarget(churn), []string{"gender"}, DefaultOptions())
	require.NoError(t, err)

	row := result.Rows[0]
	assert.Greater(t, row.PValue, 0.05)
	assert.InDelta(t, 0.7518296340458492, row.PValue, 1e-12)
	assert.Equal(t, stats.DecisionFailToReject, row.Decision)
}

func TestChiSquare_RanksByPValueAndKeepsAllRows(t *testing.T) {
	churn := repeat("0", 20, "1", 20)
	table := mustTable(t,
		dataset.NewCategoricalColumn("gender", repeat("M", 10, "F", 10, "M", 10, "F", 10)),
		dataset.NewCategoricalColumn("Contract", repeat("monthly", 5, "yearly", 15, "monthly", 15, "yearly", 5)),
		dataset.NewCategoricalColumn("PhoneService", repeat("Yes", 40)),
		dataset.NewNumericColumn("SeniorCitizen", append(make([]float64, 25), 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1)),
	)
	cols := []string{"gender", "PhoneService", "Contract", "SeniorCitizen"}

	for _, threshold := range []float64{0.01, 0.05, 0.10} {
		result, err := ChiSquare(table, dataset.NewTarget(churn), cols, Options{Threshold: threshold})
		require.NoError(t, err)
		require.Equal(t, len(cols), result.Len())
		assert.Equal(t, []string{"SeniorCitizen", "Contract"}, result.Features()[:2])

		for i := 1; i < result.Len(); i++ {
			assert.LessOrEqual(t, result.Rows[i-1].PValue, result.Rows[i].PValue)
		}
		assertDecisions(t, result)
	}

	result, err := ChiSquare(table, dataset.NewTarget(churn), cols, DefaultOptions())
	require.NoError(t, err)
	byName := map[string]stats.FeatureResult{}
	for _, r := range result.Rows {
		byName[r.Feature] = r
	}
	// a single category leaves nothing to test
	assert.Equal(t, 0, byName["PhoneService"].DegreesOfFreedom)
	assert.Equal(t, 0.0, byName["PhoneService"].Statistic)
	assert.Equal(t, 1.0, byName["PhoneService"].PValue)
	// gender is perfectly balanced and ties PhoneService at p=1; input order wins
	assert.Equal(t, []string{"gender", "PhoneService"}, result.Features()[2:])
}

func TestChiSquare_SkipsMissingCells(t *testing.T) {
	table := mustTable(t, dataset.NewCategoricalColumn("c", []string{"a", "", "b", "a", "b", "a"}))
	target := dataset.NewTarget([]string{"0", "1", "1", "", "1", "0"})

	observed := crosstab(mustColumn(t, table, "c"), target)
	assert.Equal(t, [][]float64{{2, 0}, {0, 2}}, observed)
}

func TestChiSquare_Errors(t *testing.T) {
	table := mustTable(t, dataset.NewCategoricalColumn("c", []string{"a", "b"}))
	target := dataset.NewTarget([]string{"0", "1"})

	_, err := ChiSquare(table, target, nil, DefaultOptions())
	assert.True(t, core.IsInvalidInput(err))

	_, err = ChiSquare(table, target, []string{"c", "nope"}, DefaultOptions())
	assert.True(t, core.IsColumnNotFound(err))
	assert.True(t, core.IsInvalidInput(err))

	_, err = ChiSquare(table, dataset.NewTarget([]string{"0"}), []string{"c"}, DefaultOptions())
	assert.True(t, core.IsShapeMismatch(err))

	_, err = ChiSquare(table, target, []string{"c"}, Options{Threshold: -1})
	assert.True(t, core.IsInvalidInput(err))
}

func TestChiSquareIndependence_ZeroExpectedIsNaN(t *testing.T) {
	chi2, p, dof := chiSquareIndependence([][]float64{{0, 0}, {3, 4}})
	assert.True(t, math.IsNaN(chi2))
	assert.True(t, math.IsNaN(p))
	assert.Equal(t, 1, dof)
}

func mustColumn(t *testing.T, table *dataset.Table, name string) *dataset.Column {
	t.Helper()
	col, ok := table.Column(name)
	require.True(t, ok)
	return col
}
