package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwcatalog/hwsearch/internal/catalog"
	"github.com/hwcatalog/hwsearch/internal/config"
)

const builderCatalog = `{
	"PERFA0192": {"name": "Perforadora Industrial 192W", "category": "Herramientas Electricas"},
	"BROCA8MM": {"name": "Broca de pared 08 mm", "category": "Accesorios"},
	"MART12": {"name": "Martillo fte carpintero", "category": "Herramientas Manuales"}
}`

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	store, err := catalog.NewJSONStore([]byte(builderCatalog), "catalog.json")
	require.NoError(t, err)

	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	b := NewBuilder(config.NewConfig(), WithClock(func() time.Time { return fixed }))
	return b.Build(store)
}

func TestBuild_ExactIncludesCodeVariants(t *testing.T) {
	idx := buildTestIndex(t)
	exact := idx.Section(KindExact)

	// Canonical code and every variant resolve to the canonical code
	for _, key := range []string{"PERFA0192", "PERFA192", "PERFA 0192", "PERFA-0192"} {
		require.Contains(t, exact, key, "exact should contain %q", key)
		assert.Equal(t, Postings{"PERFA0192"}, exact[key])
	}
}

func TestBuild_PrefixesStartAtMinLength(t *testing.T) {
	idx := buildTestIndex(t)
	prefix := idx.Section(KindPrefix)

	assert.NotContains(t, prefix, "PE", "two-letter prefixes are not indexed")
	for _, key := range []string{"PER", "PERF", "PERFA", "PERFA0", "PERFA01", "PERFA019", "PERFA0192"} {
		assert.True(t, prefix[key].Contains("PERFA0192"), "prefix %q should post PERFA0192", key)
	}

	// Variant prefixes also resolve to the canonical code
	assert.True(t, prefix["PERFA1"].Contains("PERFA0192"), "zero-dropped variant prefix")
}

func TestBuild_TokensIncludeExpandedAbbreviations(t *testing.T) {
	idx := buildTestIndex(t)
	tokens := idx.Section(KindTokens)

	assert.True(t, tokens["broca"].Contains("BROCA8MM"))
	assert.True(t, tokens["pared"].Contains("BROCA8MM"))

	// "fte" expands to "fuerte"; both spellings are indexed
	assert.True(t, tokens["fte"].Contains("MART12"))
	assert.True(t, tokens["fuerte"].Contains("MART12"))
}

func TestBuild_CategoryKeyAndTokens(t *testing.T) {
	idx := buildTestIndex(t)
	category := idx.Section(KindCategory)

	assert.True(t, category["herramientas_electricas"].Contains("PERFA0192"))
	assert.True(t, category["herramientas"].Contains("PERFA0192"))
	assert.True(t, category["electricas"].Contains("PERFA0192"))
}

func TestBuild_SizeIncludesMeasurementVariants(t *testing.T) {
	idx := buildTestIndex(t)
	size := idx.Section(KindSize)

	for _, key := range []string{"8mm", "08mm", "8 mm", "8milimetros"} {
		assert.True(t, size[key].Contains("BROCA8MM"), "size %q should post BROCA8MM", key)
	}
}

func TestBuild_NgramsCoverName(t *testing.T) {
	idx := buildTestIndex(t)
	ngrams := idx.Section(KindNgrams)

	for _, g := range []string{"bro", "roc", "oca"} {
		assert.True(t, ngrams[g].Contains("BROCA8MM"), "ngram %q should post BROCA8MM", g)
	}
}

func TestBuild_CodeMapTranslatesToOriginal(t *testing.T) {
	idx := buildTestIndex(t)

	assert.Equal(t, "PERFA0192", idx.CodeMap["PERFA0192"])
	assert.Equal(t, "MART12", idx.CodeMap["MART12"])
	assert.Len(t, idx.CodeMap, 3)
}

func TestBuild_Metadata(t *testing.T) {
	idx := buildTestIndex(t)

	assert.Equal(t, "2.0", idx.Version)
	assert.Equal(t, 3, idx.Metadata.TotalProducts)
	assert.Equal(t, "2026-08-01T12:00:00Z", idx.Metadata.LastUpdated)
	assert.True(t, idx.Metadata.EnhancedNormalization)
}

func TestBuild_DeterministicBytes(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.json")
	pathB := filepath.Join(dir, "b.json")

	require.NoError(t, Save(buildTestIndex(t), pathA))
	require.NoError(t, Save(buildTestIndex(t), pathB))

	a, err := os.ReadFile(pathA)
	require.NoError(t, err)
	b, err := os.ReadFile(pathB)
	require.NoError(t, err)
	assert.Equal(t, a, b, "same catalog and clock must produce identical bytes")
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search_index.json")
	idx := buildTestIndex(t)

	require.NoError(t, Save(idx, path))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, idx.Version, loaded.Version)
	assert.Equal(t, idx.CodeMap, loaded.CodeMap)
	assert.Equal(t, idx.Section(KindExact), loaded.Section(KindExact))
	assert.Equal(t, idx.Section(KindTokens), loaded.Section(KindTokens))
}

func TestPostings_JSONCollapse(t *testing.T) {
	tests := []struct {
		name     string
		postings Postings
		wire     string
	}{
		{name: "single collapses to string", postings: Postings{"PERFA0192"}, wire: `"PERFA0192"`},
		{name: "multiple stay an array", postings: Postings{"A1", "B2"}, wire: `["A1","B2"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.postings)
			require.NoError(t, err)
			assert.Equal(t, tt.wire, string(data))

			var back Postings
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.postings, back)
		})
	}
}
