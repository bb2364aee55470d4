package index

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/hwcatalog/hwsearch/internal/errors"
)

// Save writes the index as JSON. Map keys serialize in sorted order, so
// the same index always produces the same bytes.
func Save(idx *Index, path string) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return errors.New(errors.ErrCodeBuildFailed, "failed to encode index", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.New(errors.ErrCodeWriteFailed, "failed to create output directory", err).
				WithDetail("path", dir)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(errors.ErrCodeWriteFailed, "failed to write index", err).
			WithDetail("path", path)
	}
	return nil
}

// Load reads a raw index from disk.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeIndexNotFound, "index file not found", err).
				WithDetail("path", path).
				WithSuggestion("Run 'hwsearch build' first")
		}
		return nil, errors.Wrap(errors.ErrCodeIndexNotFound, err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, errors.New(errors.ErrCodeIndexCorrupt, "index is not valid JSON", err).
			WithDetail("path", path)
	}
	if idx.Indexes == nil {
		idx.Indexes = make(map[string]Section)
	}
	if idx.CodeMap == nil {
		idx.CodeMap = make(map[string]string)
	}
	return &idx, nil
}
