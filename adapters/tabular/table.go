package tabular

import (
	"churnstats/adapters/datareadiness/coercer"
	"churnstats/domain/dataset"
)

// ToTable types every column of frame with c and assembles a dataset.Table
func ToTable(frame *Frame, c *coercer.TypeCoercer) (*dataset.Table, error) {
	columns := make([]*dataset.Column, len(frame.Headers))
	for i, name := range frame.Headers {
		columns[i] = c.CoerceColumn(name, frame.Column(i))
	}
	return dataset.NewTable(columns...)
}

// SplitTarget removes the target column from table and returns it as a Target
func SplitTarget(table *dataset.Table, targetColumn string) (*dataset.Table, *dataset.Target, bool) {
	col, ok := table.Column(targetColumn)
	if !ok {
		return nil, nil, false
	}
	return table.Without(targetColumn), dataset.TargetFromColumn(col), true
}
