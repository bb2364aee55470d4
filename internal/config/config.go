// Package config defines the hwsearch configuration: index build settings,
// optimizer and fragmentation knobs, and the scoring model used by the
// search engine. Values merge in precedence order: defaults, then a
// .hwsearch.yaml project file, then HWSEARCH_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete hwsearch configuration.
type Config struct {
	Version  string         `yaml:"version" json:"version"`
	Build    BuildConfig    `yaml:"build" json:"build"`
	Optimize OptimizeConfig `yaml:"optimize" json:"optimize"`
	Search   SearchConfig   `yaml:"search" json:"search"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// BuildConfig configures raw index generation.
type BuildConfig struct {
	// CatalogPath is the product catalog JSON file.
	CatalogPath string `yaml:"catalog_path" json:"catalog_path"`

	// OutputPath is where the raw index is written.
	OutputPath string `yaml:"output_path" json:"output_path"`

	// MinPrefixLength is the shortest code prefix indexed (default 3).
	MinPrefixLength int `yaml:"min_prefix_length" json:"min_prefix_length"`

	// TokenMinLength is the shortest name token indexed (default 3).
	TokenMinLength int `yaml:"token_min_length" json:"token_min_length"`

	// NGramSize is the character n-gram width for fuzzy matching (default 3).
	NGramSize int `yaml:"ngram_size" json:"ngram_size"`

	// Abbreviations maps catalog shorthand to full spellings. Both the
	// literal and the expanded name are indexed.
	Abbreviations map[string]string `yaml:"abbreviations" json:"abbreviations"`
}

// OptimizeConfig configures index compression and fragmentation.
type OptimizeConfig struct {
	// OutputDir receives the manifest and shard files.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// MaxTokenFrequency drops tokens present in more than this fraction
	// of all products (default 0.25).
	MaxTokenFrequency float64 `yaml:"max_token_frequency" json:"max_token_frequency"`

	// SkipHighFrequencyTokens enables the MaxTokenFrequency ceiling.
	SkipHighFrequencyTokens bool `yaml:"skip_high_frequency_tokens" json:"skip_high_frequency_tokens"`

	// MaxProductsPerKey truncates token and ngram postings (default 200).
	MaxProductsPerKey int `yaml:"max_products_per_key" json:"max_products_per_key"`

	// StopWords are dropped from the token index entirely.
	StopWords []string `yaml:"stop_words" json:"stop_words"`

	// Fragments are the alphabetic shard ranges, in order. The last range
	// is the catch-all for codes outside every range.
	Fragments []FragmentRange `yaml:"fragments" json:"fragments"`
}

// FragmentRange is one alphabetic shard boundary, inclusive on both ends.
type FragmentRange struct {
	Name  string `yaml:"name" json:"name"`
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// Weights are the base scores per match field.
type Weights struct {
	ExactCode   float64 `yaml:"exact_code" json:"exact_code"`
	PartialCode float64 `yaml:"partial_code" json:"partial_code"`
	Name        float64 `yaml:"name" json:"name"`
	Category    float64 `yaml:"category" json:"category"`
	Measurement float64 `yaml:"measurement" json:"measurement"`
	Brand       float64 `yaml:"brand" json:"brand"`
	Fuzzy       float64 `yaml:"fuzzy" json:"fuzzy"`
}

// Multipliers scale a field weight when the match has extra significance.
type Multipliers struct {
	ExactWord       float64 `yaml:"exact_word" json:"exact_word"`
	StartOfField    float64 `yaml:"start_of_field" json:"start_of_field"`
	MultipleTerms   float64 `yaml:"multiple_terms" json:"multiple_terms"`
	FeaturedProduct float64 `yaml:"featured_product" json:"featured_product"`
	HardwareTerm    float64 `yaml:"hardware_term" json:"hardware_term"`
	Discontinued    float64 `yaml:"discontinued" json:"discontinued"`
}

// SearchConfig configures query processing and scoring.
type SearchConfig struct {
	Weights     Weights     `yaml:"weights" json:"weights"`
	Multipliers Multipliers `yaml:"multipliers" json:"multipliers"`

	// HardwareTerms receive the HardwareTerm multiplier and drive query
	// classification.
	HardwareTerms []string `yaml:"hardware_terms" json:"hardware_terms"`

	// StopWords are removed from queries before matching, unless removal
	// would leave no tokens at all.
	StopWords []string `yaml:"stop_words" json:"stop_words"`

	// MinQueryLength is the shortest query that triggers a search.
	MinQueryLength int `yaml:"min_query_length" json:"min_query_length"`

	// MinFuzzyLength is the shortest normalized query eligible for the
	// fuzzy pass; individual tokens additionally need three characters.
	MinFuzzyLength int `yaml:"min_fuzzy_length" json:"min_fuzzy_length"`

	// FuzzyThreshold is the minimum n-gram coverage for a fuzzy match (0-1).
	FuzzyThreshold float64 `yaml:"fuzzy_threshold" json:"fuzzy_threshold"`

	// MaxTokens caps how many query tokens are considered.
	MaxTokens int `yaml:"max_tokens" json:"max_tokens"`

	// Limit is the default maximum number of results.
	Limit int `yaml:"limit" json:"limit"`

	// Threshold keeps only results scoring at least Threshold * topScore.
	Threshold float64 `yaml:"threshold" json:"threshold"`

	// MeasurementBoost scales measurement matches for measurement queries.
	MeasurementBoost float64 `yaml:"measurement_boost" json:"measurement_boost"`

	// DebounceMS is the quiet window for keystroke-driven search.
	DebounceMS int `yaml:"debounce_ms" json:"debounce_ms"`

	// CacheSize bounds the per-query score memoization LRU.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// NewConfig returns the reference configuration for a hardware catalog.
func NewConfig() *Config {
	return &Config{
		Version: "2.0",
		Build: BuildConfig{
			CatalogPath:     "catalog.json",
			OutputPath:      "search_index.json",
			MinPrefixLength: 3,
			TokenMinLength:  3,
			NGramSize:       3,
			Abbreviations: map[string]string{
				"fte":   "fuerte",
				"gde":   "grande",
				"pqño":  "pequeño",
				"med":   "mediano",
				"c/":    "con ",
				"s/":    "sin ",
				"autom": "automatico",
				"nac":   "nacional",
				"imp":   "importado",
				"std":   "estandar",
				"mm":    "milimetros",
				"cm":    "centimetros",
				"kg":    "kilogramos",
				"lt":    "litros",
				"ml":    "mililitros",
				"gr":    "gramos",
				"pulg":  "pulgadas",
				"kgrs":  "kilogramos",
			},
		},
		Optimize: OptimizeConfig{
			OutputDir:               "optimized",
			MaxTokenFrequency:       0.25,
			SkipHighFrequencyTokens: true,
			MaxProductsPerKey:       200,
			StopWords: []string{
				"de", "la", "el", "los", "las", "con", "para", "por", "sin", "sobre",
				"del", "al", "una", "uno", "unos", "unas",
			},
			Fragments: []FragmentRange{
				{Name: "A-F", Start: "A", End: "F"},
				{Name: "G-M", Start: "G", End: "M"},
				{Name: "N-S", Start: "N", End: "S"},
				{Name: "T-Z", Start: "T", End: "Z"},
			},
		},
		Search: SearchConfig{
			Weights: Weights{
				ExactCode:   100,
				PartialCode: 60,
				Name:        50,
				Category:    30,
				Measurement: 80,
				Brand:       40,
				Fuzzy:       10,
			},
			Multipliers: Multipliers{
				ExactWord:       1.5,
				StartOfField:    1.3,
				MultipleTerms:   1.2,
				FeaturedProduct: 1.4,
				HardwareTerm:    1.2,
				Discontinued:    0.5,
			},
			HardwareTerms: []string{
				"tornillo", "tuerca", "clavo", "abrazadera", "perno", "taladro",
				"martillo", "sierra", "pinza", "llave", "destornillador", "broca",
				"alicate", "clavija", "arandela", "codo", "conector", "manguera",
				"grifo", "valvula", "bisagra", "cerradura", "manija", "tubo",
				"cable", "cinta", "silicona", "pegamento", "sellador",
			},
			StopWords: []string{
				"de", "la", "el", "los", "las", "con", "para", "por", "en", "y",
				"a", "al", "del", "un", "una", "unos", "unas",
			},
			MinQueryLength:   2,
			MinFuzzyLength:   4,
			FuzzyThreshold:   0.4,
			MaxTokens:        6,
			Limit:            20,
			Threshold:        0.2,
			MeasurementBoost: 1.2,
			DebounceMS:       300,
			CacheSize:        512,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the effective configuration for dir: defaults, merged with
// .hwsearch.yaml or .hwsearch.yml if present, then environment overrides.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFile builds the effective configuration from an explicit YAML file.
func LoadFile(path string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .hwsearch.yaml or .hwsearch.yml.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".hwsearch.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".hwsearch.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	// No config file is fine, defaults apply
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != "" {
		c.Version = other.Version
	}

	if other.Build.CatalogPath != "" {
		c.Build.CatalogPath = other.Build.CatalogPath
	}
	if other.Build.OutputPath != "" {
		c.Build.OutputPath = other.Build.OutputPath
	}
	if other.Build.MinPrefixLength > 0 {
		c.Build.MinPrefixLength = other.Build.MinPrefixLength
	}
	if other.Build.TokenMinLength > 0 {
		c.Build.TokenMinLength = other.Build.TokenMinLength
	}
	if other.Build.NGramSize > 0 {
		c.Build.NGramSize = other.Build.NGramSize
	}
	if len(other.Build.Abbreviations) > 0 {
		c.Build.Abbreviations = other.Build.Abbreviations
	}

	if other.Optimize.OutputDir != "" {
		c.Optimize.OutputDir = other.Optimize.OutputDir
	}
	if other.Optimize.MaxTokenFrequency > 0 {
		c.Optimize.MaxTokenFrequency = other.Optimize.MaxTokenFrequency
	}
	if other.Optimize.MaxProductsPerKey > 0 {
		c.Optimize.MaxProductsPerKey = other.Optimize.MaxProductsPerKey
	}
	if len(other.Optimize.StopWords) > 0 {
		c.Optimize.StopWords = other.Optimize.StopWords
	}
	if len(other.Optimize.Fragments) > 0 {
		c.Optimize.Fragments = other.Optimize.Fragments
	}

	mergeWeights(&c.Search.Weights, &other.Search.Weights)
	mergeMultipliers(&c.Search.Multipliers, &other.Search.Multipliers)
	if len(other.Search.HardwareTerms) > 0 {
		c.Search.HardwareTerms = other.Search.HardwareTerms
	}
	if len(other.Search.StopWords) > 0 {
		c.Search.StopWords = other.Search.StopWords
	}
	if other.Search.MinQueryLength > 0 {
		c.Search.MinQueryLength = other.Search.MinQueryLength
	}
	if other.Search.MinFuzzyLength > 0 {
		c.Search.MinFuzzyLength = other.Search.MinFuzzyLength
	}
	if other.Search.FuzzyThreshold > 0 {
		c.Search.FuzzyThreshold = other.Search.FuzzyThreshold
	}
	if other.Search.MaxTokens > 0 {
		c.Search.MaxTokens = other.Search.MaxTokens
	}
	if other.Search.Limit > 0 {
		c.Search.Limit = other.Search.Limit
	}
	if other.Search.Threshold > 0 {
		c.Search.Threshold = other.Search.Threshold
	}
	if other.Search.MeasurementBoost > 0 {
		c.Search.MeasurementBoost = other.Search.MeasurementBoost
	}
	if other.Search.DebounceMS > 0 {
		c.Search.DebounceMS = other.Search.DebounceMS
	}
	if other.Search.CacheSize > 0 {
		c.Search.CacheSize = other.Search.CacheSize
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}
}

func mergeWeights(dst, src *Weights) {
	if src.ExactCode > 0 {
		dst.ExactCode = src.ExactCode
	}
	if src.PartialCode > 0 {
		dst.PartialCode = src.PartialCode
	}
	if src.Name > 0 {
		dst.Name = src.Name
	}
	if src.Category > 0 {
		dst.Category = src.Category
	}
	if src.Measurement > 0 {
		dst.Measurement = src.Measurement
	}
	if src.Brand > 0 {
		dst.Brand = src.Brand
	}
	if src.Fuzzy > 0 {
		dst.Fuzzy = src.Fuzzy
	}
}

func mergeMultipliers(dst, src *Multipliers) {
	if src.ExactWord > 0 {
		dst.ExactWord = src.ExactWord
	}
	if src.StartOfField > 0 {
		dst.StartOfField = src.StartOfField
	}
	if src.MultipleTerms > 0 {
		dst.MultipleTerms = src.MultipleTerms
	}
	if src.FeaturedProduct > 0 {
		dst.FeaturedProduct = src.FeaturedProduct
	}
	if src.HardwareTerm > 0 {
		dst.HardwareTerm = src.HardwareTerm
	}
	if src.Discontinued > 0 {
		dst.Discontinued = src.Discontinued
	}
}

// applyEnvOverrides applies HWSEARCH_* environment variables, the highest
// precedence configuration source.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("HWSEARCH_CATALOG"); v != "" {
		c.Build.CatalogPath = v
	}
	if v := os.Getenv("HWSEARCH_OUTPUT"); v != "" {
		c.Build.OutputPath = v
	}
	if v := os.Getenv("HWSEARCH_INDEX_DIR"); v != "" {
		c.Optimize.OutputDir = v
	}
	if v := os.Getenv("HWSEARCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.Limit = n
		}
	}
	if v := os.Getenv("HWSEARCH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			c.Search.Threshold = f
		}
	}
	if v := os.Getenv("HWSEARCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("HWSEARCH_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

// Validate checks the configuration for values that would produce a broken
// index or nonsensical scoring.
func (c *Config) Validate() error {
	if c.Build.MinPrefixLength < 1 {
		return fmt.Errorf("build.min_prefix_length must be positive, got %d", c.Build.MinPrefixLength)
	}
	if c.Build.NGramSize < 2 {
		return fmt.Errorf("build.ngram_size must be at least 2, got %d", c.Build.NGramSize)
	}

	if c.Optimize.MaxTokenFrequency <= 0 || c.Optimize.MaxTokenFrequency > 1 {
		return fmt.Errorf("optimize.max_token_frequency must be in (0, 1], got %f", c.Optimize.MaxTokenFrequency)
	}
	if c.Optimize.MaxProductsPerKey < 1 {
		return fmt.Errorf("optimize.max_products_per_key must be positive, got %d", c.Optimize.MaxProductsPerKey)
	}
	if len(c.Optimize.Fragments) == 0 {
		return fmt.Errorf("optimize.fragments must not be empty")
	}
	for _, f := range c.Optimize.Fragments {
		if f.Name == "" || len(f.Start) != 1 || len(f.End) != 1 {
			return fmt.Errorf("optimize.fragments entry %q must have a name and single-letter bounds", f.Name)
		}
		if f.Start > f.End {
			return fmt.Errorf("optimize.fragments entry %q has start %q after end %q", f.Name, f.Start, f.End)
		}
	}

	if c.Search.MinQueryLength < 1 {
		return fmt.Errorf("search.min_query_length must be positive, got %d", c.Search.MinQueryLength)
	}
	if c.Search.FuzzyThreshold < 0 || c.Search.FuzzyThreshold > 1 {
		return fmt.Errorf("search.fuzzy_threshold must be between 0 and 1, got %f", c.Search.FuzzyThreshold)
	}
	if c.Search.Threshold < 0 || c.Search.Threshold > 1 {
		return fmt.Errorf("search.threshold must be between 0 and 1, got %f", c.Search.Threshold)
	}
	if c.Search.Limit < 1 {
		return fmt.Errorf("search.limit must be positive, got %d", c.Search.Limit)
	}
	if c.Search.CacheSize < 1 {
		return fmt.Errorf("search.cache_size must be positive, got %d", c.Search.CacheSize)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
