package cmd

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInit_WritesTemplate(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, ".hwsearch.yaml")

	data, err := os.ReadFile(".hwsearch.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "catalog_path")

	_, err = run(t, "config", "init")
	require.Error(t, err, "refuses to overwrite without --force")

	_, err = run(t, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigShow_JSONHasDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "config", "show", "--json")
	require.NoError(t, err)

	var cfg struct {
		Version string `json:"version"`
		Search  struct {
			Limit int `json:"limit"`
		} `json:"search"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "2.0", cfg.Version)
	assert.Equal(t, 20, cfg.Search.Limit)
}

func TestConfigShow_MergesProjectFile(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(".hwsearch.yaml", []byte("search:\n  limit: 5\n"), 0o644))

	out, err := run(t, "config", "show", "--json")
	require.NoError(t, err)

	var cfg struct {
		Search struct {
			Limit int `json:"limit"`
		} `json:"search"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, 5, cfg.Search.Limit)
}
