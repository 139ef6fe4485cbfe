package tabular

import (
	"fmt"

	"churnstats/domain/core"
)

// Frame is a raw, untyped table: a header row plus string cells in file order
type Frame struct {
	Headers []string
	Rows    [][]string
}

// ColumnIndex returns the position of a header, or -1
func (f *Frame) ColumnIndex(name string) int {
	for i, h := range f.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// MustColumnIndex returns the position of a header or an error naming it
func (f *Frame) MustColumnIndex(name string) (int, error) {
	if i := f.ColumnIndex(name); i >= 0 {
		return i, nil
	}
	return -1, fmt.Errorf("%w in header %v", core.NewColumnNotFoundError(name), f.Headers)
}

// Column returns a copy of every cell under one header
func (f *Frame) Column(i int) []string {
	out := make([]string, len(f.Rows))
	for r, row := range f.Rows {
		out[r] = row[i]
	}
	return out
}

// Fingerprint hashes the header and every cell as read from disk
func (f *Frame) Fingerprint() core.DatasetHash {
	return core.ComputeDatasetHash(f.Headers, f.Rows)
}
