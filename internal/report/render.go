package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"churnstats/domain/stats"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
)

// Format selects how a report is rendered
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatMarkdown, FormatHTML:
		return f, nil
	case "", "txt":
		return FormatText, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, markdown or html)", s)
	}
}

var titles = map[stats.TestType]string{
	stats.TestANOVA:     "ANOVA F-test",
	stats.TestChiSquare: "Chi-square test of independence",
	stats.TestTTest:     "Independent samples t-test",
}

// Headers returns the column labels for a result table, named after the
// feature-selection tables analysts already know
func Headers(t *stats.ResultTable) []string {
	switch t.Test {
	case stats.TestChiSquare:
		return []string{"Categorical Variable", "Chi2-Test", "P-Value", "Degree of Freedom"}
	case stats.TestTTest:
		return []string{"Numerical_Feature", "t-Statistic", "p values", "H0"}
	default:
		return []string{"Numerical_Feature", "F-Score", "p values", "H0"}
	}
}

// Records returns one string row per feature, aligned with Headers
func Records(t *stats.ResultTable) [][]string {
	records := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		if t.Test == stats.TestChiSquare {
			records[i] = []string{r.Feature, string(r.Decision), formatNumber(r.PValue), strconv.Itoa(r.DegreesOfFreedom)}
			continue
		}
		records[i] = []string{r.Feature, formatNumber(r.Statistic), formatNumber(r.PValue), string(r.Decision)}
	}
	return records
}

func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func caption(t *stats.ResultTable) string {
	c := fmt.Sprintf("%s (threshold %s)", titles[t.Test], strconv.FormatFloat(t.Threshold, 'g', -1, 64))
	if t.Test == stats.TestTTest {
		c += ", alternative " + string(t.Alternative)
	}
	return c
}

// Render writes r to w in the given format
func Render(w io.Writer, r *Report, format Format) error {
	var out string
	switch format {
	case FormatText:
		out = renderText(r)
	case FormatMarkdown:
		out = renderMarkdown(r)
	case FormatHTML:
		out = string(markdown.ToHTML([]byte(renderMarkdown(r)), parser.NewWithExtensions(parser.CommonExtensions), nil))
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	_, err := io.WriteString(w, out)
	return err
}

func renderText(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Report %s\nSource: %s%s\nTarget: %s\n", r.ID, r.Source, hashSuffix(r), r.Target)

	for _, t := range r.Tables {
		tbl := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(Headers(t)...).
			Rows(Records(t)...)
		fmt.Fprintf(&b, "\n%s\n%s\n", caption(t), tbl.String())
	}
	return b.String()
}

func renderMarkdown(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Hypothesis test report\n\n")
	fmt.Fprintf(&b, "- Report: `%s`\n- Source: `%s`%s\n- Target: `%s`\n- Generated: %s\n",
		r.ID, r.Source, hashSuffix(r), r.Target, r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	for _, t := range r.Tables {
		fmt.Fprintf(&b, "\n## %s\n\n", caption(t))

		headers := Headers(t)
		b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")
		for _, rec := range Records(t) {
			for i := range rec {
				rec[i] = strings.ReplaceAll(rec[i], "|", `\|`)
			}
			b.WriteString("| " + strings.Join(rec, " | ") + " |\n")
		}
	}
	return b.String()
}

func hashSuffix(r *Report) string {
	if r.DataHash != "" {
		return " (sha256 " + r.DataHash.Short() + ")"
	}
	return ""
}
