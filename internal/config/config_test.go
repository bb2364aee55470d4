package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_ReferenceDefaults(t *testing.T) {
	cfg := NewConfig()

	// Field weights
	assert.Equal(t, 100.0, cfg.Search.Weights.ExactCode)
	assert.Equal(t, 60.0, cfg.Search.Weights.PartialCode)
	assert.Equal(t, 50.0, cfg.Search.Weights.Name)
	assert.Equal(t, 30.0, cfg.Search.Weights.Category)
	assert.Equal(t, 80.0, cfg.Search.Weights.Measurement)
	assert.Equal(t, 40.0, cfg.Search.Weights.Brand)
	assert.Equal(t, 10.0, cfg.Search.Weights.Fuzzy)

	// Multipliers
	assert.Equal(t, 1.5, cfg.Search.Multipliers.ExactWord)
	assert.Equal(t, 1.3, cfg.Search.Multipliers.StartOfField)
	assert.Equal(t, 1.2, cfg.Search.Multipliers.MultipleTerms)
	assert.Equal(t, 1.2, cfg.Search.Multipliers.HardwareTerm)

	// Query processing
	assert.Equal(t, 2, cfg.Search.MinQueryLength)
	assert.Equal(t, 4, cfg.Search.MinFuzzyLength)
	assert.Equal(t, 0.4, cfg.Search.FuzzyThreshold)
	assert.Equal(t, 6, cfg.Search.MaxTokens)

	// Optimizer
	assert.Equal(t, 0.25, cfg.Optimize.MaxTokenFrequency)
	assert.Equal(t, 200, cfg.Optimize.MaxProductsPerKey)
	require.Len(t, cfg.Optimize.Fragments, 4)
	assert.Equal(t, FragmentRange{Name: "A-F", Start: "A", End: "F"}, cfg.Optimize.Fragments[0])
	assert.Equal(t, FragmentRange{Name: "T-Z", Start: "T", End: "Z"}, cfg.Optimize.Fragments[3])

	// Engine
	assert.Equal(t, 20, cfg.Search.Limit)
	assert.Equal(t, 0.2, cfg.Search.Threshold)
	assert.Equal(t, 300, cfg.Search.DebounceMS)

	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoConfigFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, NewConfig().Search.Weights, cfg.Search.Weights)
}

func TestLoad_ProjectFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
build:
  catalog_path: data/products.json
search:
  limit: 50
  weights:
    exact_code: 200
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hwsearch.yaml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "data/products.json", cfg.Build.CatalogPath)
	assert.Equal(t, 50, cfg.Search.Limit)
	assert.Equal(t, 200.0, cfg.Search.Weights.ExactCode)

	// Untouched values keep defaults
	assert.Equal(t, 60.0, cfg.Search.Weights.PartialCode)
	assert.Equal(t, 0.2, cfg.Search.Threshold)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := "search:\n  limit: 50\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hwsearch.yaml"), []byte(content), 0o644))

	t.Setenv("HWSEARCH_LIMIT", "5")
	t.Setenv("HWSEARCH_LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Search.Limit)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_InvalidYAMLFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hwsearch.yaml"), []byte("search: ["), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.Search.Threshold = 1.5 },
			wantErr: "threshold",
		},
		{
			name:    "zero limit",
			mutate:  func(c *Config) { c.Search.Limit = 0 },
			wantErr: "limit",
		},
		{
			name:    "no fragments",
			mutate:  func(c *Config) { c.Optimize.Fragments = nil },
			wantErr: "fragments",
		},
		{
			name: "inverted fragment range",
			mutate: func(c *Config) {
				c.Optimize.Fragments = []FragmentRange{{Name: "Z-A", Start: "Z", End: "A"}}
			},
			wantErr: "start",
		},
		{
			name:    "bad token frequency",
			mutate:  func(c *Config) { c.Optimize.MaxTokenFrequency = 2 },
			wantErr: "max_token_frequency",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".hwsearch.yaml")

	cfg := NewConfig()
	cfg.Search.Limit = 7
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Search.Limit)
	assert.Equal(t, cfg.Search.Weights, loaded.Search.Weights)
}
