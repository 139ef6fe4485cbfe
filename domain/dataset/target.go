package dataset

// Target is the label sequence tests are run against. Row order matches the
// feature table. An empty label marks a missing observation.
type Target struct {
	labels []string
}

// NewTarget creates a target from textual labels
func NewTarget(labels []string) *Target {
	return &Target{labels: append([]string(nil), labels...)}
}

// NewNumericTarget creates a target from numeric labels, so 0 and 1 become
// "0" and "1". NaN becomes a missing label.
func NewNumericTarget(values []float64) *Target {
	labels := make([]string, len(values))
	for i, v := range values {
		labels[i] = FormatNumber(v)
	}
	return &Target{labels: labels}
}

// TargetFromColumn reuses a table column as the target
func TargetFromColumn(c *Column) *Target {
	labels := make([]string, c.Len())
	for i := range labels {
		labels[i] = c.Key(i)
	}
	return &Target{labels: labels}
}

func (t *Target) Len() int {
	return len(t.labels)
}

func (t *Target) Label(i int) string {
	return t.labels[i]
}

func (t *Target) Missing(i int) bool {
	return t.labels[i] == ""
}

// Levels returns the distinct non-missing labels in first-seen order
func (t *Target) Levels() []string {
	seen := make(map[string]bool)
	var levels []string
	for _, l := range t.labels {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		levels = append(levels, l)
	}
	return levels
}
