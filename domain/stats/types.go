package stats

import (
	"math"
	"sort"
	"strconv"

	"churnstats/domain/core"

	mstats "github.com/montanaflynn/stats"
)

// TestType names a hypothesis test
type TestType string

const (
	TestANOVA     TestType = "anova"     // One-way analysis of variance
	TestChiSquare TestType = "chisquare" // Chi-square test of independence
	TestTTest     TestType = "ttest"     // Student's independent two-sample t-test
)

// Decision is the outcome of comparing a p-value against the threshold
type Decision string

const (
	DecisionReject       Decision = "Reject H0"
	DecisionFailToReject Decision = "Fail to reject H0"
)

// Alternative selects the alternative hypothesis of a t-test
type Alternative string

const (
	TwoSided Alternative = "two-sided"
	Less     Alternative = "less"
	Greater  Alternative = "greater"
)

const (
	// DefaultThreshold is the significance level used when none is given
	DefaultThreshold = 0.05

	// PValueDecimals is the rounding applied to ANOVA and t-test p-values
	PValueDecimals = 10
)

// ParseAlternative validates an alternative hypothesis name
func ParseAlternative(s string) (Alternative, error) {
	switch a := Alternative(s); a {
	case TwoSided, Less, Greater:
		return a, nil
	case "":
		return TwoSided, nil
	default:
		return "", core.NewInvalidInputError("alternative", strconv.Quote(s)+" is not one of two-sided, less, greater")
	}
}

// ValidateThreshold checks that a significance level lies in (0,1)
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold <= 0 || threshold >= 1 {
		return core.ErrBadThreshold
	}
	return nil
}

// Decide applies the rejection rule. A NaN p-value never rejects.
func Decide(pValue, threshold float64) Decision {
	if pValue < threshold {
		return DecisionReject
	}
	return DecisionFailToReject
}

// RoundPValue rounds to PValueDecimals places, leaving NaN untouched
func RoundPValue(p float64) float64 {
	rounded, err := mstats.Round(p, PValueDecimals)
	if err != nil {
		return p
	}
	return rounded
}

// FeatureResult is one row of a result table
type FeatureResult struct {
	Feature   string   `json:"feature"`
	Statistic float64  `json:"statistic"`
	PValue    float64  `json:"p_value"`
	Decision  Decision `json:"decision"`

	// DegreesOfFreedom is the chi-square dof, the t-test dof, or the ANOVA
	// numerator dof. DenominatorDF is only set for ANOVA.
	DegreesOfFreedom int `json:"degrees_of_freedom"`
	DenominatorDF    int `json:"denominator_df,omitempty"`
}

// ResultTable is the ranked output of one hypothesis test over many features
type ResultTable struct {
	Test        TestType        `json:"test"`
	Threshold   float64         `json:"threshold"`
	Alternative Alternative     `json:"alternative,omitempty"`
	Rows        []FeatureResult `json:"rows"`
}

// Len returns the number of tested features
func (t *ResultTable) Len() int {
	return len(t.Rows)
}

// Features returns the feature names in row order
func (t *ResultTable) Features() []string {
	names := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		names[i] = r.Feature
	}
	return names
}

// SortByStatisticDesc orders rows by statistic, largest first. Ties keep
// their input order and NaN statistics sink to the bottom.
func (t *ResultTable) SortByStatisticDesc() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i].Statistic, t.Rows[j].Statistic
		if math.IsNaN(a) || math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		return a > b
	})
}

// SortByPValueAsc orders rows by p-value, smallest first. Ties keep their
// input order and NaN p-values sink to the bottom.
func (t *ResultTable) SortByPValueAsc() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := t.Rows[i].PValue, t.Rows[j].PValue
		if math.IsNaN(a) || math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		return a < b
	})
}
