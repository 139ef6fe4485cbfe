package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex digits, enough to tell datasets apart in a report header
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// DatasetHash fingerprints the raw cells a report was computed from
type DatasetHash Hash

func (h DatasetHash) String() string { return Hash(h).String() }
func (h DatasetHash) Short() string  { return Hash(h).Short() }

// ComputeDatasetHash hashes headers and rows cell by cell. Cells are
// separated by the ASCII unit separator and rows by the record separator so
// that shifting text between neighbouring cells changes the hash.
func ComputeDatasetHash(headers []string, rows [][]string) DatasetHash {
	h := sha256.New()
	writeRecord := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				h.Write([]byte{0x1f})
			}
			h.Write([]byte(cell))
		}
		h.Write([]byte{0x1e})
	}

	writeRecord(headers)
	for _, row := range rows {
		writeRecord(row)
	}
	return DatasetHash(hex.EncodeToString(h.Sum(nil)))
}
