package telemetry

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hwcatalog/hwsearch/internal/errors"
)

// Store persists telemetry aggregates in sqlite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) a telemetry database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.InternalError("failed to open telemetry database", err)
	}
	// modernc.org/sqlite serializes through a single connection
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.InternalError("failed to configure telemetry database", err)
		}
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS query_type_counts (
    date  TEXT NOT NULL,
    type  TEXT NOT NULL,
    count INTEGER NOT NULL,
    PRIMARY KEY (date, type)
);
CREATE TABLE IF NOT EXISTS latency_counts (
    date   TEXT NOT NULL,
    bucket TEXT NOT NULL,
    count  INTEGER NOT NULL,
    PRIMARY KEY (date, bucket)
);
CREATE TABLE IF NOT EXISTS zero_result_queries (
    query     TEXT PRIMARY KEY,
    last_seen TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		return errors.InternalError("failed to initialize telemetry schema", err)
	}
	return nil
}

// SaveQueryTypeCounts accumulates per-type counts under a date key.
func (s *Store) SaveQueryTypeCounts(date string, counts map[string]int64) error {
	for qt, count := range counts {
		_, err := s.db.Exec(`
INSERT INTO query_type_counts (date, type, count) VALUES (?, ?, ?)
ON CONFLICT(date, type) DO UPDATE SET count = count + excluded.count`,
			date, qt, count)
		if err != nil {
			return errors.InternalError("failed to save query type counts", err)
		}
	}
	return nil
}

// GetQueryTypeCounts sums per-type counts over a date range, inclusive.
func (s *Store) GetQueryTypeCounts(from, to string) (map[string]int64, error) {
	rows, err := s.db.Query(`
SELECT type, SUM(count) FROM query_type_counts
WHERE date >= ? AND date <= ? GROUP BY type`, from, to)
	if err != nil {
		return nil, errors.InternalError("failed to read query type counts", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var qt string
		var count int64
		if err := rows.Scan(&qt, &count); err != nil {
			return nil, errors.InternalError("failed to scan query type counts", err)
		}
		counts[qt] = count
	}
	return counts, rows.Err()
}

// SaveLatencyCounts accumulates latency bucket counts under a date key.
func (s *Store) SaveLatencyCounts(date string, counts map[LatencyBucket]int64) error {
	for bucket, count := range counts {
		_, err := s.db.Exec(`
INSERT INTO latency_counts (date, bucket, count) VALUES (?, ?, ?)
ON CONFLICT(date, bucket) DO UPDATE SET count = count + excluded.count`,
			date, string(bucket), count)
		if err != nil {
			return errors.InternalError("failed to save latency counts", err)
		}
	}
	return nil
}

// GetLatencyCounts sums latency bucket counts over a date range.
func (s *Store) GetLatencyCounts(from, to string) (map[LatencyBucket]int64, error) {
	rows, err := s.db.Query(`
SELECT bucket, SUM(count) FROM latency_counts
WHERE date >= ? AND date <= ? GROUP BY bucket`, from, to)
	if err != nil {
		return nil, errors.InternalError("failed to read latency counts", err)
	}
	defer rows.Close()

	counts := make(map[LatencyBucket]int64)
	for rows.Next() {
		var bucket string
		var count int64
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, errors.InternalError("failed to scan latency counts", err)
		}
		counts[LatencyBucket(bucket)] = count
	}
	return counts, rows.Err()
}

// AddZeroResultQuery records a query that returned nothing.
func (s *Store) AddZeroResultQuery(query string, ts time.Time) error {
	_, err := s.db.Exec(`
INSERT INTO zero_result_queries (query, last_seen) VALUES (?, ?)
ON CONFLICT(query) DO UPDATE SET last_seen = excluded.last_seen`,
		query, ts.UTC().Format(time.RFC3339))
	if err != nil {
		return errors.InternalError("failed to save zero result query", err)
	}
	return nil
}

// GetZeroResultQueries returns the most recent zero-result queries.
func (s *Store) GetZeroResultQueries(limit int) ([]string, error) {
	rows, err := s.db.Query(`
SELECT query FROM zero_result_queries ORDER BY last_seen DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.InternalError("failed to read zero result queries", err)
	}
	defer rows.Close()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, errors.InternalError("failed to scan zero result query", err)
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
