// Package index builds the raw multi-kind search index from a product
// catalog. Every kind maps normalized keys to postings of normalized
// product codes; the optimizer later compresses and fragments the result.
package index

import (
	"encoding/json"
	"fmt"
)

// Index kinds, in canonical serialization order.
const (
	KindExact    = "exact"    // full normalized codes and code variants
	KindPrefix   = "prefix"   // code prefixes of MinPrefixLength+ characters
	KindTokens   = "tokens"   // name tokens, normalized and abbreviation-expanded
	KindCategory = "category" // normalized category keys and category tokens
	KindSize     = "size"     // extracted measurements and their variants
	KindNgrams   = "ngrams"   // character n-grams of the name for fuzzy search
	KindVariants = "variants" // code and measurement variants
)

// Kinds lists every index kind in canonical order.
var Kinds = []string{
	KindExact, KindPrefix, KindTokens, KindCategory, KindSize, KindNgrams, KindVariants,
}

// Postings is the set of normalized codes indexed under one key.
// On the wire a single-element postings list collapses to a bare string,
// which is the dominant case and saves considerable space.
type Postings []string

// MarshalJSON writes a bare string for single-element postings.
func (p Postings) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(p[0])
	}
	return json.Marshal([]string(p))
}

// UnmarshalJSON accepts either a bare string or a string array.
func (p *Postings) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Postings{s}
		return nil
	}
	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("postings must be a string or string array: %w", err)
	}
	*p = Postings(arr)
	return nil
}

// Contains reports whether code is already posted.
func (p Postings) Contains(code string) bool {
	for _, c := range p {
		if c == code {
			return true
		}
	}
	return false
}

// Section is one kind's key to postings mapping.
type Section map[string]Postings

// Add appends code under key unless already present.
func (s Section) Add(key, code string) {
	if key == "" {
		return
	}
	if !s[key].Contains(code) {
		s[key] = append(s[key], code)
	}
}

// Metadata describes how and when an index was generated.
type Metadata struct {
	TotalProducts         int    `json:"totalProducts"`
	LastUpdated           string `json:"lastUpdated"`
	EnhancedNormalization bool   `json:"enhancedNormalization"`
}

// Index is the raw, uncompressed search index.
type Index struct {
	Version  string             `json:"version"`
	Metadata Metadata           `json:"metadata"`
	Indexes  map[string]Section `json:"indexes"`
	// CodeMap translates normalized codes back to the original catalog
	// codes, for expanding results against the product store.
	CodeMap map[string]string `json:"codeMap"`
}

// New returns an empty index with all kinds initialized.
func New(version string) *Index {
	idx := &Index{
		Version: version,
		Indexes: make(map[string]Section, len(Kinds)),
		CodeMap: make(map[string]string),
	}
	for _, kind := range Kinds {
		idx.Indexes[kind] = make(Section)
	}
	return idx
}

// Section returns the named kind, creating it if a loaded index lacks it.
func (idx *Index) Section(kind string) Section {
	s, ok := idx.Indexes[kind]
	if !ok {
		s = make(Section)
		idx.Indexes[kind] = s
	}
	return s
}

// KeyCount returns the number of keys in the named kind.
func (idx *Index) KeyCount(kind string) int {
	return len(idx.Indexes[kind])
}
