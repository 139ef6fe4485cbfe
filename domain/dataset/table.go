package dataset

import (
	"math"
	"strconv"

	"churnstats/domain/core"
)

// Kind distinguishes numeric columns from categorical ones
type Kind int

const (
	KindNumeric Kind = iota
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column is a single named, typed sequence of observations.
// Numeric columns use NaN for missing values, categorical columns use "".
type Column struct {
	Name   string
	Kind   Kind
	Floats []float64
	Labels []string
}

// NewNumericColumn creates a numeric column owning a copy of values
func NewNumericColumn(name string, values []float64) *Column {
	return &Column{
		Name:   name,
		Kind:   KindNumeric,
		Floats: append([]float64(nil), values...),
	}
}

// NewCategoricalColumn creates a categorical column owning a copy of values
func NewCategoricalColumn(name string, values []string) *Column {
	return &Column{
		Name:   name,
		Kind:   KindCategorical,
		Labels: append([]string(nil), values...),
	}
}

// Len returns the number of observations
func (c *Column) Len() int {
	if c.Kind == KindNumeric {
		return len(c.Floats)
	}
	return len(c.Labels)
}

// IsMissing reports whether observation i is missing
func (c *Column) IsMissing(i int) bool {
	if c.Kind == KindNumeric {
		return math.IsNaN(c.Floats[i])
	}
	return c.Labels[i] == ""
}

// Key renders observation i as a category label. Missing values render as "".
func (c *Column) Key(i int) string {
	if c.Kind == KindCategorical {
		return c.Labels[i]
	}
	return FormatNumber(c.Floats[i])
}

// FormatNumber renders a float the shortest way that round-trips, with
// integral values losing their decimal point. NaN renders as "".
func FormatNumber(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Table is a column-oriented, in-memory dataset. Column order is preserved.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable assembles columns into a table. All columns must share one length
// and names must be unique.
func NewTable(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}

	for i, col := range columns {
		if col == nil {
			return nil, core.NewInvalidInputError("column", "nil column")
		}
		if _, dup := t.index[col.Name]; dup {
			return nil, core.NewInvalidInputError(col.Name, "duplicate column name")
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, core.NewShapeMismatchError("column "+strconv.Quote(col.Name), col.Len(), t.rows)
		}
		t.index[col.Name] = len(t.columns)
		t.columns = append(t.columns, col)
	}

	return t, nil
}

// Rows returns the number of observations per column
func (t *Table) Rows() int {
	return t.rows
}

// Columns returns all columns in insertion order
func (t *Table) Columns() []*Column {
	return append([]*Column(nil), t.columns...)
}

// Names returns the column names in insertion order
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Column looks a column up by name
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// NumericColumns returns the numeric columns in insertion order
func (t *Table) NumericColumns() []*Column {
	return t.columnsOfKind(KindNumeric)
}

// CategoricalColumns returns the categorical columns in insertion order
func (t *Table) CategoricalColumns() []*Column {
	return t.columnsOfKind(KindCategorical)
}

func (t *Table) columnsOfKind(kind Kind) []*Column {
	var out []*Column
	for _, col := range t.columns {
		if col.Kind == kind {
			out = append(out, col)
		}
	}
	return out
}

// Without returns a table sharing this table's columns minus the named ones
func (t *Table) Without(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}

	out := &Table{index: make(map[string]int), rows: t.rows}
	for _, col := range t.columns {
		if drop[col.Name] {
			continue
		}
		out.index[col.Name] = len(out.columns)
		out.columns = append(out.columns, col)
	}
	return out
}
