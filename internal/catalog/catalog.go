// Package catalog provides access to the product catalog that search
// results are expanded against. Two store implementations exist: a JSON
// file store matching the catalog format the index is built from, and a
// sqlite store for deployments that keep product data in a database.
package catalog

import "context"

// Product is one catalog entry. Code is the original (unnormalized)
// product code as it appears in the catalog.
type Product struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Category     string  `json:"category,omitempty"`
	Brand        string  `json:"brand,omitempty"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price,omitempty"`
	Featured     bool    `json:"featured,omitempty"`
	Discontinued bool    `json:"discontinued,omitempty"`
}

// Store resolves product codes to full product records.
// GetProduct returns (nil, nil) when the code is unknown; the engine
// substitutes a placeholder in that case rather than failing the search.
type Store interface {
	GetProduct(ctx context.Context, code string) (*Product, error)
	Count(ctx context.Context) (int, error)
	Close() error
}
