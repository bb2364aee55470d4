package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwcatalog/hwsearch/internal/config"
	"github.com/hwcatalog/hwsearch/internal/fragment"
	"github.com/hwcatalog/hwsearch/internal/index"
	"github.com/hwcatalog/hwsearch/internal/optimize"
	"github.com/hwcatalog/hwsearch/internal/query"
)

// makeShard compresses raw sections into a shard for scoring tests.
func makeShard(sections map[string]index.Section) *fragment.Shard {
	shard := &fragment.Shard{
		Maps:    make(map[string]optimize.Table),
		Indexes: make(map[string][]optimize.Entry),
		CodeMap: make(map[string]string),
	}
	for kind, section := range sections {
		table, entries := optimize.Compress(section)
		shard.Maps[kind] = table
		shard.Indexes[kind] = entries
	}
	return shard
}

func analyzed(t *testing.T, cfg config.SearchConfig, raw string) *query.Query {
	t.Helper()
	q, err := query.NewProcessor(cfg).Process(raw)
	require.NoError(t, err)
	return q
}

func TestScoreExactBeatsPartial(t *testing.T) {
	cfg := config.NewConfig().Search
	shard := makeShard(map[string]index.Section{
		index.KindExact:  {"MART22": {"MART22"}},
		index.KindPrefix: {"MART22": {"MART22", "MART23"}},
	})

	sc := newScorer(cfg)
	sc.scoreShard(shard, analyzed(t, cfg, "mart22"), true)
	results := sc.finalize(0, 0)

	require.Len(t, results, 2)
	assert.Equal(t, "MART22", results[0].Code)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Contains(t, results[0].MatchTypes, "exact_code")
	assert.Contains(t, results[0].MatchTypes, "partial_code")
	// The sibling code only matched the prefix.
	assert.Equal(t, []string{"partial_code"}, results[1].MatchTypes)
}

func TestScorePrefixStartBoost(t *testing.T) {
	cfg := config.NewConfig().Search
	// Both products carry the candidate as a prefix key, but only one
	// actually starts with it.
	shard := makeShard(map[string]index.Section{
		index.KindPrefix: {"TUB": {"TUBO33", "XTUB1"}},
	})

	sc := newScorer(cfg)
	sc.scoreShard(shard, analyzed(t, cfg, "tub"), true)
	results := sc.finalize(0, 0)

	require.Len(t, results, 2)
	assert.Equal(t, "TUBO33", results[0].Code)
	assert.InDelta(t, cfg.Weights.PartialCode*cfg.Multipliers.StartOfField, results[0].Score, 0.001)
	assert.InDelta(t, cfg.Weights.PartialCode, results[1].Score, 0.001)
}

func TestScoreHardwareTermMultiplier(t *testing.T) {
	cfg := config.NewConfig().Search
	shard := makeShard(map[string]index.Section{
		index.KindTokens: {
			"martillo": {"MART22"},
			"cuaderno": {"CUAD01"},
		},
	})

	sc := newScorer(cfg)
	sc.scoreShard(shard, analyzed(t, cfg, "martillo"), true)
	sc2 := newScorer(cfg)
	sc2.scoreShard(shard, analyzed(t, cfg, "cuaderno"), true)

	hardware := sc.finalize(0, 0)[0].Score
	plain := sc2.finalize(0, 0)[0].Score
	assert.InDelta(t, cfg.Weights.Name*cfg.Multipliers.HardwareTerm, hardware, 0.001)
	assert.InDelta(t, cfg.Weights.Name, plain, 0.001)
}

func TestScoreMeasurementBoost(t *testing.T) {
	cfg := config.NewConfig().Search
	shard := makeShard(map[string]index.Section{
		index.KindSize: {"8mm": {"PERFA0192"}},
	})

	sc := newScorer(cfg)
	sc.scoreShard(shard, analyzed(t, cfg, "8mm"), true)
	results := sc.finalize(0, 0)

	require.Len(t, results, 1)
	assert.InDelta(t, cfg.Weights.Measurement*cfg.MeasurementBoost, results[0].Score, 0.001)
}

func TestScoreMonotonicity(t *testing.T) {
	cfg := config.NewConfig().Search
	q := analyzed(t, cfg, "tubo pvc")

	base := makeShard(map[string]index.Section{
		index.KindTokens: {"tubo": {"TUBO33"}},
	})
	richer := makeShard(map[string]index.Section{
		index.KindTokens:   {"tubo": {"TUBO33"}},
		index.KindCategory: {"tubo": {"TUBO33"}},
	})

	sc := newScorer(cfg)
	sc.scoreShard(base, q, true)
	low := sc.finalize(0, 0)[0].Score

	sc2 := newScorer(cfg)
	sc2.scoreShard(richer, q, true)
	high := sc2.finalize(0, 0)[0].Score

	assert.Greater(t, high, low)
}

func TestScoreFuzzySkippedForCodeQueries(t *testing.T) {
	cfg := config.NewConfig().Search
	shard := makeShard(map[string]index.Section{
		index.KindNgrams: {"mar": {"MART22"}},
	})

	// "martillo" classifies as a code query, so the n-gram pass is off.
	sc := newScorer(cfg)
	sc.scoreShard(shard, analyzed(t, cfg, "martillo"), true)
	assert.Empty(t, sc.finalize(0, 0))

	// A measurement query keeps fuzzy enabled.
	qm := analyzed(t, cfg, "mar 8mm")
	require.False(t, qm.IsCode())
	sc2 := newScorer(cfg)
	sc2.scoreShard(shard, qm, true)
	assert.NotEmpty(t, sc2.finalize(0, 0))
}

func TestScoreFragmentationPenalty(t *testing.T) {
	cfg := config.NewConfig().Search
	q := analyzed(t, cfg, "8mm")

	// Five identical measurement matches trigger the penalty.
	sc := newScorer(cfg)
	for i := 0; i < 5; i++ {
		sc.score("PERFA0192", q, lookup{base: 10, matchType: matchMeasurement, term: "8mm"})
	}
	penalized := sc.finalize(0, 0)[0].Score

	perMatch := 10 * cfg.MeasurementBoost
	raw := perMatch * 5
	assert.Less(t, penalized, raw)
	// The floor keeps the penalty from exceeding 30 percent.
	assert.GreaterOrEqual(t, penalized, raw*0.7)
}

func TestFinalizeThresholdAndLimit(t *testing.T) {
	cfg := config.NewConfig().Search
	q := analyzed(t, cfg, "tubo pvc")

	sc := newScorer(cfg)
	sc.score("STRONG1", q, lookup{base: 100, matchType: matchExactCode, term: "x"})
	sc.score("MID1", q, lookup{base: 50, matchType: matchName, term: "x"})
	sc.score("WEAK1", q, lookup{base: 5, matchType: matchName, term: "x"})

	results := sc.finalize(0.2, 10)
	codes := make([]string, 0, len(results))
	for _, r := range results {
		codes = append(codes, r.Code)
	}
	assert.Equal(t, []string{"STRONG1", "MID1"}, codes)

	limited := newScorer(cfg)
	limited.score("STRONG1", q, lookup{base: 100, matchType: matchExactCode, term: "x"})
	limited.score("MID1", q, lookup{base: 90, matchType: matchName, term: "x"})
	assert.Len(t, limited.finalize(0, 1), 1)
}

func TestFinalizeFuzzyOnlyStricterThreshold(t *testing.T) {
	cfg := config.NewConfig().Search
	q := analyzed(t, cfg, "tubo pvc")

	sc := newScorer(cfg)
	sc.score("STRONG1", q, lookup{base: 100, matchType: matchExactCode, term: "x"})
	// 25 points passes the standard 20 percent cutoff but a fuzzy-only
	// result needs 30 percent.
	sc.score("FUZZY1", q, lookup{base: 25, matchType: matchFuzzy, term: "tub", sourceToken: "tub"})
	sc.score("NAMED1", q, lookup{base: 25, matchType: matchName, term: "x"})

	results := sc.finalize(0.2, 0)
	codes := make([]string, 0, len(results))
	for _, r := range results {
		codes = append(codes, r.Code)
	}
	assert.Contains(t, codes, "NAMED1")
	assert.NotContains(t, codes, "FUZZY1")
}
