package coercer

import (
	"math"
	"strconv"
	"strings"

	"churnstats/domain/dataset"
)

// TypeCoercer handles deterministic coercion of raw cell text into typed values
type TypeCoercer struct {
	config CoercionConfig
	na     map[string]bool
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold float64  `json:"numeric_threshold" yaml:"numeric_threshold"` // share of non-missing values that must parse as numbers
	NAValues         []string `json:"na_values" yaml:"na_values"`                 // cell texts read as missing
}

// DefaultNAValues mirrors the tokens pandas.read_csv treats as missing
var DefaultNAValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a",
	"nan", "null",
}

// DefaultCoercionConfig returns strict defaults: a column is numeric only when
// every non-missing value parses.
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 1.0,
		NAValues:         DefaultNAValues,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	na := make(map[string]bool, len(config.NAValues))
	for _, v := range config.NAValues {
		na[v] = true
	}
	return &TypeCoercer{config: config, na: na}
}

// IsMissing reports whether raw cell text denotes a missing value
func (c *TypeCoercer) IsMissing(raw string) bool {
	return c.na[raw]
}

// ParseNumeric parses raw text as a finite-or-infinite number. Missing tokens,
// blank text and anything strconv rejects do not parse.
func (c *TypeCoercer) ParseNumeric(raw string) (float64, bool) {
	if c.IsMissing(raw) {
		return 0, false
	}
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// CoerceNumeric converts raw text to a number, yielding NaN for anything that
// does not parse
func (c *TypeCoercer) CoerceNumeric(raw string) float64 {
	if val, ok := c.ParseNumeric(raw); ok {
		return val
	}
	return math.NaN()
}

// CoerceCategorical returns the label for raw text, "" when missing
func (c *TypeCoercer) CoerceCategorical(raw string) string {
	if c.IsMissing(raw) {
		return ""
	}
	return raw
}

// AnalyzeTypeDistribution analyzes a column sample to pick its kind
func (c *TypeCoercer) AnalyzeTypeDistribution(values []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}

	for _, val := range values {
		if c.IsMissing(val) {
			continue
		}
		analysis.ValidCount++
		if _, ok := c.ParseNumeric(val); ok {
			analysis.NumericCount++
		}
	}

	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
	} else {
		// an all-missing column reads as float, as in pandas
		analysis.NumericRatio = 1
	}

	analysis.RecommendedKind = dataset.KindCategorical
	if analysis.NumericRatio >= c.config.NumericThreshold {
		analysis.RecommendedKind = dataset.KindNumeric
	}

	return analysis
}

// CoerceColumn builds a typed column from raw cell text using the inferred kind
func (c *TypeCoercer) CoerceColumn(name string, values []string) *dataset.Column {
	analysis := c.AnalyzeTypeDistribution(values)

	if analysis.RecommendedKind == dataset.KindNumeric {
		floats := make([]float64, len(values))
		for i, v := range values {
			floats[i] = c.CoerceNumeric(v)
		}
		return &dataset.Column{Name: name, Kind: dataset.KindNumeric, Floats: floats}
	}

	labels := make([]string, len(values))
	for i, v := range values {
		labels[i] = c.CoerceCategorical(v)
	}
	return &dataset.Column{Name: name, Kind: dataset.KindCategorical, Labels: labels}
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int          `json:"total_count"`
	ValidCount      int          `json:"valid_count"`
	NumericCount    int          `json:"numeric_count"`
	NumericRatio    float64      `json:"numeric_ratio"`
	RecommendedKind dataset.Kind `json:"recommended_kind"`
}
