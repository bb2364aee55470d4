package optimize

import (
	"encoding/json"

	hwerrors "github.com/hwcatalog/hwsearch/internal/errors"
)

// CompressionType identifies the table-based layout produced by Compress.
const CompressionType = "arrayMapping"

// CompressionVersion is bumped when the table layout changes shape.
const CompressionVersion = "1.0"

// Table holds the compressed form of one index kind. Keys is sorted;
// Values holds each product code once, referenced by position from the
// parallel entries slice.
type Table struct {
	Keys   []string `json:"keys"`
	Values []string `json:"values"`
}

// Entry is one key's postings as positions into a Table's value list.
// A single posting serializes as a bare number, multiple as an array.
type Entry []int

// MarshalJSON collapses single-element entries to a bare number.
func (e Entry) MarshalJSON() ([]byte, error) {
	if len(e) == 1 {
		return json.Marshal(e[0])
	}
	return json.Marshal([]int(e))
}

// UnmarshalJSON accepts either a bare number or an array of numbers.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var single int
	if err := json.Unmarshal(data, &single); err == nil {
		*e = Entry{single}
		return nil
	}
	var many []int
	if err := json.Unmarshal(data, &many); err != nil {
		return hwerrors.New(hwerrors.ErrCodeIndexCorrupt, "invalid postings entry", err)
	}
	*e = Entry(many)
	return nil
}

// Resolve maps an entry back to product codes using the table's value
// list. Out-of-range positions are skipped rather than failing the
// whole lookup.
func (e Entry) Resolve(table Table) []string {
	codes := make([]string, 0, len(e))
	for _, pos := range e {
		if pos >= 0 && pos < len(table.Values) {
			codes = append(codes, table.Values[pos])
		}
	}
	return codes
}
