package stats

import (
	"math"
	"testing"

	"churnstats/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	for _, threshold := range []float64{0.01, 0.05, 0.10} {
		assert.Equal(t, DecisionReject, Decide(threshold/2, threshold))
		assert.Equal(t, DecisionFailToReject, Decide(threshold, threshold), "equality does not reject")
		assert.Equal(t, DecisionFailToReject, Decide(0.5, threshold))
		assert.Equal(t, DecisionFailToReject, Decide(math.NaN(), threshold))
	}
}

func TestValidateThreshold(t *testing.T) {
	assert.NoError(t, ValidateThreshold(0.05))
	for _, bad := range []float64{0, 1, -0.1, 1.5, math.NaN()} {
		err := ValidateThreshold(bad)
		assert.True(t, core.IsInvalidInput(err), "threshold %v", bad)
	}
}

func TestParseAlternative(t *testing.T) {
	for _, s := range []string{"two-sided", "less", "greater"} {
		alt, err := ParseAlternative(s)
		require.NoError(t, err)
		assert.Equal(t, Alternative(s), alt)
	}

	alt, err := ParseAlternative("")
	require.NoError(t, err)
	assert.Equal(t, TwoSided, alt)

	_, err = ParseAlternative("both")
	assert.True(t, core.IsInvalidInput(err))
}

func TestRoundPValue(t *testing.T) {
	assert.Equal(t, 0.1234567891, RoundPValue(0.12345678912345))
	assert.Equal(t, 0.0, RoundPValue(1e-12))
	assert.True(t, math.IsNaN(RoundPValue(math.NaN())))
}

func TestSortByStatisticDesc(t *testing.T) {
	table := &ResultTable{Rows: []FeatureResult{
		{Feature: "a", Statistic: 1},
		{Feature: "nan", Statistic: math.NaN()},
		{Feature: "b", Statistic: 5},
		{Feature: "c", Statistic: 1},
		{Feature: "inf", Statistic: math.Inf(1)},
	}}
	table.SortByStatisticDesc()
	assert.Equal(t, []string{"inf", "b", "a", "c", "nan"}, table.Features())
}

func TestSortByPValueAsc(t *testing.T) {
	table := &ResultTable{Rows: []FeatureResult{
		{Feature: "nan", PValue: math.NaN()},
		{Feature: "x", PValue: 0.3},
		{Feature: "y", PValue: 0.01},
		{Feature: "z", PValue: 0.3},
	}}
	table.SortByPValueAsc()
	assert.Equal(t, []string{"y", "x", "z", "nan"}, table.Features())
	assert.Equal(t, 4, table.Len())
}
