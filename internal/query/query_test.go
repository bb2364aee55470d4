package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwcatalog/hwsearch/internal/config"
	"github.com/hwcatalog/hwsearch/internal/errors"
)

func newProcessor() *Processor {
	return NewProcessor(config.NewConfig().Search)
}

func TestProcessRejectsShortQueries(t *testing.T) {
	p := newProcessor()

	for _, raw := range []string{"", "a", "  ", "!"} {
		_, err := p.Process(raw)
		require.Error(t, err, "query %q", raw)
		assert.Equal(t, errors.ErrCodeQueryTooShort, errors.GetCode(err))
	}
}

func TestProcessCodeQuery(t *testing.T) {
	p := newProcessor()

	q, err := p.Process("PERFA0192")
	require.NoError(t, err)

	assert.Equal(t, TypeCode, q.Type)
	assert.True(t, q.IsCode())
	assert.Contains(t, q.PossibleCodes, "PERFA0192")
	assert.Equal(t, "perfa0192", q.Normalized)
}

func TestProcessCodeWithHyphen(t *testing.T) {
	p := newProcessor()

	// Normalization converts the hyphen to a space, the two-letter half
	// is below the token minimum, and the digits alone are not a code
	// shape. Nothing survives as a candidate.
	q, err := p.Process("CR-150")
	require.NoError(t, err)

	assert.Equal(t, "cr 150", q.Normalized)
	assert.Empty(t, q.PossibleCodes)
}

func TestProcessMeasurementQuery(t *testing.T) {
	p := newProcessor()

	// "8mm" is digits-then-letters, so it never reads as a code candidate.
	q, err := p.Process("8mm")
	require.NoError(t, err)

	assert.Equal(t, TypeMeasurement, q.Type)
	assert.True(t, q.IsMeasurement())
	assert.Contains(t, q.Measurements, "8mm")
}

func TestProcessWordQueryClassifiesAsCode(t *testing.T) {
	p := newProcessor()

	// A plain word of four or more letters is a code candidate, and any
	// leading candidate that long makes the whole query a code query.
	// Hardware terms are still recorded for scoring.
	q, err := p.Process("martillo grande")
	require.NoError(t, err)

	assert.Equal(t, TypeCode, q.Type)
	assert.Equal(t, []string{"martillo"}, q.HardwareTerms)
}

func TestProcessHardwareQuery(t *testing.T) {
	cfg := config.NewConfig().Search
	cfg.HardwareTerms = append(cfg.HardwareTerms, "pvc")
	p := NewProcessor(cfg)

	// Three letters is too short for the code classification, so the
	// hardware term carries it.
	q, err := p.Process("pvc")
	require.NoError(t, err)

	assert.Equal(t, TypeHardware, q.Type)
	assert.Equal(t, []string{"pvc"}, q.HardwareTerms)
}

func TestProcessStopWordFiltering(t *testing.T) {
	p := newProcessor()

	q, err := p.Process("tubo de cobre para agua")
	require.NoError(t, err)

	assert.NotContains(t, q.Tokens, "para")
	assert.Contains(t, q.Tokens, "tubo")
	assert.Contains(t, q.Tokens, "cobre")
	assert.Contains(t, q.Tokens, "agua")
}

func TestProcessAllStopWordsFallsBackToWholeQuery(t *testing.T) {
	p := newProcessor()

	q, err := p.Process("para los")
	require.NoError(t, err)

	assert.Equal(t, []string{"para los"}, q.Tokens)
}

func TestProcessMaxTokens(t *testing.T) {
	cfg := config.NewConfig().Search
	cfg.MaxTokens = 3
	p := NewProcessor(cfg)

	q, err := p.Process("tornillo acero inoxidable cabeza plana galvanizado")
	require.NoError(t, err)

	assert.Len(t, q.Tokens, 3)
}

func TestExtractCodesDedupes(t *testing.T) {
	p := newProcessor()

	q, err := p.Process("perfa0192 perfa0192")
	require.NoError(t, err)

	assert.Equal(t, []string{"PERFA0192"}, q.PossibleCodes)
}

func TestClassifyShortCodeCandidate(t *testing.T) {
	p := newProcessor()

	// "ca1" is a letters+digits shape, so it still classifies as a code
	// despite being short.
	q, err := p.Process("ca1")
	require.NoError(t, err)
	assert.Equal(t, TypeCode, q.Type)
}

func TestProcessGeneralQuery(t *testing.T) {
	p := newProcessor()

	// Only short alphabetic candidates, no measurements, no hardware
	// terms: nothing stronger than general applies.
	q, err := p.Process("sol mar")
	require.NoError(t, err)

	assert.Equal(t, TypeGeneral, q.Type)
}
