package catalog

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// SQLiteStore serves products from a sqlite database. Useful when the
// catalog lives in a database instead of a JSON export.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (and if needed initializes) a product database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer to prevent lock contention
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// WAL mode must be set via PRAGMA for modernc.org/sqlite
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		code         TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		category     TEXT NOT NULL DEFAULT '',
		brand        TEXT NOT NULL DEFAULT '',
		description  TEXT NOT NULL DEFAULT '',
		price        REAL NOT NULL DEFAULT 0,
		featured     INTEGER NOT NULL DEFAULT 0,
		discontinued INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// GetProduct returns the product for an original code, or (nil, nil) when absent.
func (s *SQLiteStore) GetProduct(ctx context.Context, code string) (*Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT code, name, category, brand, description, price, featured, discontinued
		FROM products WHERE code = ?`, code)

	var p Product
	var featured, discontinued int
	err := row.Scan(&p.Code, &p.Name, &p.Category, &p.Brand, &p.Description,
		&p.Price, &featured, &discontinued)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product %s: %w", code, err)
	}

	p.Featured = featured != 0
	p.Discontinued = discontinued != 0
	return &p, nil
}

// Count returns the number of catalog entries.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// Import upserts products into the database inside a single transaction.
func (s *SQLiteStore) Import(ctx context.Context, products map[string]Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (code, name, category, brand, description, price, featured, discontinued)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			brand = excluded.brand,
			description = excluded.description,
			price = excluded.price,
			featured = excluded.featured,
			discontinued = excluded.discontinued`)
	if err != nil {
		return fmt.Errorf("failed to prepare import: %w", err)
	}
	defer stmt.Close()

	for code, p := range products {
		featured, discontinued := 0, 0
		if p.Featured {
			featured = 1
		}
		if p.Discontinued {
			discontinued = 1
		}
		if _, err := stmt.ExecContext(ctx, code, p.Name, p.Category, p.Brand,
			p.Description, p.Price, featured, discontinued); err != nil {
			return fmt.Errorf("failed to import product %s: %w", code, err)
		}
	}

	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
