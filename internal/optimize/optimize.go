// Package optimize shrinks a raw search index for delivery: selective
// pruning of low-value keys, then structural compression of each kind
// into a sorted key table, a deduplicated value table, and integer
// postings entries.
package optimize

import (
	"log/slog"
	"sort"

	"github.com/hwcatalog/hwsearch/internal/config"
	"github.com/hwcatalog/hwsearch/internal/index"
)

// Pruner removes index keys that cost more space than they earn.
type Pruner struct {
	cfg    config.OptimizeConfig
	logger *slog.Logger
}

// NewPruner creates a Pruner with the given optimizer settings.
func NewPruner(cfg config.OptimizeConfig, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{cfg: cfg, logger: logger}
}

// Prune mutates idx in place:
//   - token keys that are stop words, or that appear in more than
//     MaxTokenFrequency of all products, are dropped entirely;
//   - token and ngram postings are truncated to MaxProductsPerKey.
//
// Exact, prefix, category, size, and variants kinds are never pruned;
// they are the precision side of the index.
func (p *Pruner) Prune(idx *index.Index) {
	stopWords := make(map[string]bool, len(p.cfg.StopWords))
	for _, w := range p.cfg.StopWords {
		stopWords[w] = true
	}

	total := idx.Metadata.TotalProducts
	tokens := idx.Section(index.KindTokens)

	var removed []string
	for token, postings := range tokens {
		frequency := 0.0
		if total > 0 {
			frequency = float64(len(postings)) / float64(total)
		}
		if stopWords[token] ||
			(p.cfg.SkipHighFrequencyTokens && frequency > p.cfg.MaxTokenFrequency) {
			removed = append(removed, token)
		}
	}
	for _, token := range removed {
		delete(tokens, token)
	}

	truncated := p.truncate(tokens) + p.truncate(idx.Section(index.KindNgrams))

	p.logger.Info("index pruned",
		slog.Int("tokens_removed", len(removed)),
		slog.Int("postings_truncated", truncated))
}

// truncate caps each postings list at MaxProductsPerKey, keeping the
// earliest-indexed products.
func (p *Pruner) truncate(section index.Section) int {
	n := 0
	for key, postings := range section {
		if len(postings) > p.cfg.MaxProductsPerKey {
			section[key] = postings[:p.cfg.MaxProductsPerKey]
			n++
		}
	}
	return n
}

// Compress converts a section to its table form. Keys come out sorted;
// the value table is ordered by first appearance during that sorted key
// walk, so compression is deterministic.
func Compress(section index.Section) (Table, []Entry) {
	keys := make([]string, 0, len(section))
	for key := range section {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	table := Table{Keys: keys, Values: nil}
	valueIndex := make(map[string]int)
	entries := make([]Entry, 0, len(keys))

	for _, key := range keys {
		postings := section[key]
		entry := make(Entry, 0, len(postings))
		for _, code := range postings {
			idx, ok := valueIndex[code]
			if !ok {
				idx = len(table.Values)
				valueIndex[code] = idx
				table.Values = append(table.Values, code)
			}
			entry = append(entry, idx)
		}
		entries = append(entries, entry)
	}

	return table, entries
}
