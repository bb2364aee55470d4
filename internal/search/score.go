package search

import (
	"math"
	"sort"
	"strings"

	"github.com/hwcatalog/hwsearch/internal/config"
	"github.com/hwcatalog/hwsearch/internal/fragment"
	"github.com/hwcatalog/hwsearch/internal/index"
	"github.com/hwcatalog/hwsearch/internal/query"
)

// Match type names, serialized into results.
const (
	matchExactCode   = "exact_code"
	matchPartialCode = "partial_code"
	matchName        = "name"
	matchCategory    = "category"
	matchMeasurement = "measurement"
	matchFuzzy       = "fuzzy"
)

// minPrefixLookup is the shortest candidate code worth a prefix lookup.
const minPrefixLookup = 3

// stopwordFuzzyFactor penalizes n-grams that occur inside a stop word.
const stopwordFuzzyFactor = 0.2

// fuzzyOnlyThreshold is the stricter topScore fraction required of
// results whose only match kind is fuzzy.
const fuzzyOnlyThreshold = 0.3

type record struct {
	code       string
	score      float64
	matchTypes map[string]bool
	order      []string
	matches    []Match
}

// scorer accumulates per-product scores across shards for one query.
type scorer struct {
	cfg      config.SearchConfig
	hardware map[string]bool
	records  map[string]*record
}

func newScorer(cfg config.SearchConfig) *scorer {
	s := &scorer{
		cfg:      cfg,
		hardware: make(map[string]bool, len(cfg.HardwareTerms)),
		records:  make(map[string]*record),
	}
	for _, t := range cfg.HardwareTerms {
		s.hardware[t] = true
	}
	return s
}

type lookup struct {
	base        float64
	matchType   string
	term        string
	hardware    bool
	sourceToken string
}

// scoreShard runs every lookup pass for one shard. Scores accumulate
// into the shared record set, so products found in several shards keep
// a single combined record.
func (s *scorer) scoreShard(shard *fragment.Shard, q *query.Query, fuzzy bool) {
	for _, code := range q.PossibleCodes {
		s.apply(shard, index.KindExact, code, q, lookup{
			base:      s.cfg.Weights.ExactCode,
			matchType: matchExactCode,
			term:      code,
		})
		if len(code) >= minPrefixLookup {
			s.apply(shard, index.KindPrefix, code, q, lookup{
				base:      s.cfg.Weights.PartialCode,
				matchType: matchPartialCode,
				term:      code,
			})
		}
	}

	for _, token := range q.Tokens {
		s.apply(shard, index.KindTokens, token, q, lookup{
			base:      s.cfg.Weights.Name,
			matchType: matchName,
			term:      token,
			hardware:  s.hardware[token],
		})
		s.apply(shard, index.KindCategory, token, q, lookup{
			base:      s.cfg.Weights.Category,
			matchType: matchCategory,
			term:      token,
		})
	}

	for _, measure := range q.Measurements {
		s.apply(shard, index.KindSize, measure, q, lookup{
			base:      s.cfg.Weights.Measurement,
			matchType: matchMeasurement,
			term:      measure,
		})
	}

	if fuzzy && !q.IsCode() && len(q.Normalized) >= s.cfg.MinFuzzyLength {
		for _, token := range q.Tokens {
			if len(token) < 3 {
				continue
			}
			for i := 0; i+3 <= len(token); i++ {
				ngram := token[i : i+3]
				s.apply(shard, index.KindNgrams, ngram, q, lookup{
					base:        s.cfg.Weights.Fuzzy,
					matchType:   matchFuzzy,
					term:        ngram,
					sourceToken: token,
				})
			}
		}
	}
}

func (s *scorer) apply(shard *fragment.Shard, kind, key string, q *query.Query, l lookup) {
	for _, code := range shard.Lookup(kind, key) {
		s.score(code, q, l)
	}
}

func (s *scorer) score(code string, q *query.Query, l lookup) {
	rec, ok := s.records[code]
	if !ok {
		rec = &record{code: code, matchTypes: make(map[string]bool)}
		s.records[code] = rec
	}

	score := l.base

	if l.hardware {
		score *= s.cfg.Multipliers.HardwareTerm
	}
	// A product already matched on something else earns a coincidence
	// bonus on each further match, but only for multi-token queries.
	if len(q.Tokens) > 1 && len(rec.matchTypes) > 0 {
		score *= s.cfg.Multipliers.MultipleTerms
	}

	switch l.matchType {
	case matchPartialCode:
		if strings.HasPrefix(code, strings.ToUpper(l.term)) {
			score *= s.cfg.Multipliers.StartOfField
		}
	case matchMeasurement:
		if q.IsMeasurement() {
			score *= s.cfg.MeasurementBoost
		}
	case matchFuzzy:
		if l.sourceToken != "" {
			if s.isStopwordNgram(l.term) {
				score *= stopwordFuzzyFactor
			} else {
				coverage := float64(len(l.term)) / float64(len(l.sourceToken))
				score *= 0.5 + coverage*0.5
			}
		}
	}

	rec.score += score
	if !rec.matchTypes[l.matchType] {
		rec.matchTypes[l.matchType] = true
		rec.order = append(rec.order, l.matchType)
	}
	rec.matches = append(rec.matches, Match{Type: l.matchType, Term: l.term, Score: score})
}

func (s *scorer) isStopwordNgram(ngram string) bool {
	for _, w := range s.cfg.StopWords {
		if strings.Contains(w, ngram) {
			return true
		}
	}
	return false
}

// finalize applies the fragmentation penalty, ranks, filters against
// the relevance threshold and truncates to limit.
func (s *scorer) finalize(threshold float64, limit int) []Result {
	results := make([]Result, 0, len(s.records))
	for _, rec := range s.records {
		score := rec.score
		// Many weak matches must not outrank a few strong ones. The
		// penalty grows with the log of the match count, floored at 0.7.
		if len(rec.matches) > 3 {
			factor := 1 - math.Log(float64(len(rec.matches)))/10
			score *= math.Max(0.7, factor)
		}
		results = append(results, Result{
			Code:       rec.code,
			Score:      score,
			MatchTypes: rec.order,
			Matches:    rec.matches,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Code < results[j].Code
	})

	if len(results) > 0 && threshold > 0 {
		top := results[0].Score
		kept := results[:0]
		for _, r := range results {
			min := top * threshold
			if len(r.MatchTypes) == 1 && r.MatchTypes[0] == matchFuzzy {
				min = top * fuzzyOnlyThreshold
			}
			if r.Score >= min {
				kept = append(kept, r)
			}
		}
		results = kept
	}

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
