package catalog

import (
	"context"
	"encoding/json"
	"os"
	"sort"

	"github.com/hwcatalog/hwsearch/internal/errors"
)

// JSONStore serves products from a catalog JSON file loaded into memory.
// The file maps original product codes to product records:
//
//	{"PERFA0192": {"name": "Perforadora 192W", "category": "Herramientas"}, ...}
type JSONStore struct {
	products map[string]Product
}

var _ Store = (*JSONStore)(nil)

// OpenJSON loads a catalog file into a JSONStore.
func OpenJSON(path string) (*JSONStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeCatalogNotFound, "catalog file not found", err).
				WithDetail("path", path)
		}
		return nil, errors.Wrap(errors.ErrCodeCatalogNotFound, err)
	}
	return NewJSONStore(data, path)
}

// NewJSONStore parses catalog JSON. path is used only for error context.
func NewJSONStore(data []byte, path string) (*JSONStore, error) {
	var raw map[string]Product
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.New(errors.ErrCodeCatalogCorrupt, "catalog is not valid JSON", err).
			WithDetail("path", path)
	}

	// The map key is authoritative for the code
	for code, p := range raw {
		p.Code = code
		raw[code] = p
	}

	return &JSONStore{products: raw}, nil
}

// GetProduct returns the product for an original code, or (nil, nil) when absent.
func (s *JSONStore) GetProduct(_ context.Context, code string) (*Product, error) {
	p, ok := s.products[code]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Count returns the number of catalog entries.
func (s *JSONStore) Count(_ context.Context) (int, error) {
	return len(s.products), nil
}

// Close is a no-op for the in-memory store.
func (s *JSONStore) Close() error { return nil }

// Products returns all entries keyed by original code. The index builder
// iterates this; callers must not mutate the returned map.
func (s *JSONStore) Products() map[string]Product {
	return s.products
}

// Codes returns all original codes in sorted order, for deterministic builds.
func (s *JSONStore) Codes() []string {
	codes := make([]string, 0, len(s.products))
	for code := range s.products {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
