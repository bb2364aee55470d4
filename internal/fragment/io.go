package fragment

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/hwcatalog/hwsearch/internal/errors"
	"github.com/hwcatalog/hwsearch/internal/optimize"
)

// Save writes the manifest and every shard into dir, creating it if
// needed. Files are written whole; a killed run leaves no torn shard
// smaller than one write.
func Save(out *Output, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.New(errors.ErrCodeWriteFailed, "failed to create output directory", err).
			WithDetail("path", dir)
	}

	if err := writeJSON(filepath.Join(dir, MasterFileName), out.Manifest); err != nil {
		return err
	}
	for _, shard := range out.Shards {
		if err := writeJSON(filepath.Join(dir, shard.FileName), shard); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.New(errors.ErrCodeBuildFailed, "failed to encode fragment file", err).
			WithDetail("path", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(errors.ErrCodeWriteFailed, "failed to write fragment file", err).
			WithDetail("path", path)
	}
	return nil
}

// LoadManifest reads a master index from disk.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeIndexNotFound, "master index not found", err).
				WithDetail("path", path).
				WithSuggestion("Run 'hwsearch optimize' first")
		}
		return nil, errors.Wrap(errors.ErrCodeIndexNotFound, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.New(errors.ErrCodeIndexCorrupt, "master index is not valid JSON", err).
			WithDetail("path", path)
	}
	return &m, nil
}

// LoadShard reads one fragment file from disk.
func LoadShard(path string) (*Shard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeIndexNotFound, "fragment file not found", err).
				WithDetail("path", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIndexNotFound, err)
	}
	var s Shard
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.New(errors.ErrCodeIndexCorrupt, "fragment file is not valid JSON", err).
			WithDetail("path", path)
	}
	if s.Maps == nil {
		s.Maps = make(map[string]optimize.Table)
	}
	if s.Indexes == nil {
		s.Indexes = make(map[string][]optimize.Entry)
	}
	if s.CodeMap == nil {
		s.CodeMap = make(map[string]string)
	}
	s.Name = s.Metadata.Fragment
	s.FileName = filepath.Base(path)
	return &s, nil
}
