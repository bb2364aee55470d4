package index

import (
	"log/slog"
	"time"

	"github.com/hwcatalog/hwsearch/internal/catalog"
	"github.com/hwcatalog/hwsearch/internal/config"
	"github.com/hwcatalog/hwsearch/internal/normalize"
)

// Builder turns a product catalog into a raw search index.
type Builder struct {
	cfg      *config.Config
	expander *normalize.Expander
	logger   *slog.Logger
	now      func() time.Time
}

// BuilderOption customizes a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the builder's logger.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) { b.logger = logger }
}

// WithClock overrides the timestamp source. Two builds of the same catalog
// with the same clock produce byte-identical artifacts.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a Builder using cfg's build settings.
func NewBuilder(cfg *config.Config, opts ...BuilderOption) *Builder {
	b := &Builder{
		cfg:      cfg,
		expander: normalize.NewExpander(cfg.Build.Abbreviations),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build indexes every product and returns the raw index. Products are
// processed in sorted code order so postings order is deterministic.
func (b *Builder) Build(store *catalog.JSONStore) *Index {
	start := b.now()
	products := store.Products()
	idx := New(b.cfg.Version)
	idx.Metadata = Metadata{
		TotalProducts:         len(products),
		LastUpdated:           start.UTC().Format(time.RFC3339),
		EnhancedNormalization: true,
	}

	for _, code := range store.Codes() {
		b.indexProduct(idx, code, products[code])
	}

	b.logger.Info("index built",
		slog.Int("products", len(products)),
		slog.Int("exact_keys", idx.KeyCount(KindExact)),
		slog.Int("prefix_keys", idx.KeyCount(KindPrefix)),
		slog.Int("token_keys", idx.KeyCount(KindTokens)),
		slog.Int("ngram_keys", idx.KeyCount(KindNgrams)),
		slog.Duration("elapsed", time.Since(start)))

	return idx
}

// indexProduct adds one product to every index kind.
func (b *Builder) indexProduct(idx *Index, originalCode string, product catalog.Product) {
	normCode := normalize.Code(originalCode)
	if normCode == "" {
		return
	}
	codeVariants := normalize.CodeVariants(originalCode)

	normName := normalize.Text(product.Name)
	expandedName := b.expander.Expand(normName)

	measures := normalize.ExtractMeasurements(product.Name)
	var measureVariants []string
	for _, m := range measures {
		measureVariants = append(measureVariants, normalize.MeasurementVariants(m)...)
	}

	// Exact: canonical code plus every variant resolves to the code
	exact := idx.Section(KindExact)
	for _, variant := range codeVariants {
		exact.Add(variant, normCode)
	}

	// Prefixes of the canonical code and its variants
	prefix := idx.Section(KindPrefix)
	b.indexPrefixes(prefix, normCode, normCode)
	for _, variant := range codeVariants[1:] {
		b.indexPrefixes(prefix, variant, normCode)
	}

	// Name tokens from both the normalized and the expanded name
	tokens := idx.Section(KindTokens)
	for _, token := range normalize.Tokenize(normName, b.cfg.Build.TokenMinLength) {
		tokens.Add(token, normCode)
	}
	for _, token := range normalize.Tokenize(expandedName, b.cfg.Build.TokenMinLength) {
		tokens.Add(token, normCode)
	}

	// Category key plus its individual tokens
	if product.Category != "" {
		category := idx.Section(KindCategory)
		category.Add(normalize.Category(product.Category), normCode)
		for _, token := range normalize.Tokenize(product.Category, b.cfg.Build.TokenMinLength) {
			category.Add(token, normCode)
		}
	}

	// Measurements and their spelled-out variants
	size := idx.Section(KindSize)
	for _, m := range measures {
		size.Add(m, normCode)
	}
	for _, v := range measureVariants {
		size.Add(v, normCode)
	}

	// Character n-grams of both name forms, for fuzzy matching
	ngrams := idx.Section(KindNgrams)
	for _, g := range normalize.NGrams(normName, b.cfg.Build.NGramSize) {
		ngrams.Add(g, normCode)
	}
	for _, g := range normalize.NGrams(expandedName, b.cfg.Build.NGramSize) {
		ngrams.Add(g, normCode)
	}

	// Variants kind carries code and measurement variants together
	variants := idx.Section(KindVariants)
	for _, variant := range codeVariants {
		variants.Add(variant, normCode)
	}
	for _, v := range measureVariants {
		variants.Add(v, normCode)
	}

	idx.CodeMap[normCode] = originalCode
}

// indexPrefixes posts every prefix of key of at least MinPrefixLength
// characters under the given code.
func (b *Builder) indexPrefixes(section Section, key, normCode string) {
	min := b.cfg.Build.MinPrefixLength
	for i := min; i <= len(key); i++ {
		section.Add(key[:i], normCode)
	}
}
