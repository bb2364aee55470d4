// Package fragment splits a pruned index into alphabetic shards, each
// compressed independently, plus a master manifest that tells clients
// which shard covers which code range.
package fragment

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/hwcatalog/hwsearch/internal/config"
	"github.com/hwcatalog/hwsearch/internal/index"
	"github.com/hwcatalog/hwsearch/internal/optimize"
)

// FragmentationType identifies the first-letter sharding scheme.
const FragmentationType = "alphabet"

// Fragmenter assigns products to shards by the first character of their
// normalized code.
type Fragmenter struct {
	ranges []config.FragmentRange
	logger *slog.Logger
}

// NewFragmenter creates a Fragmenter over the given ranges. The last
// range is the catch-all: codes whose first character falls outside
// every range land there.
func NewFragmenter(ranges []config.FragmentRange, logger *slog.Logger) *Fragmenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fragmenter{ranges: ranges, logger: logger}
}

// shardFor returns the range index for a normalized code.
func (f *Fragmenter) shardFor(code string) int {
	if code == "" {
		return len(f.ranges) - 1
	}
	first := strings.ToLower(code[:1])
	for i, r := range f.ranges {
		if first >= strings.ToLower(r.Start) && first <= strings.ToLower(r.End) {
			return i
		}
	}
	return len(f.ranges) - 1
}

// Fragment splits idx into one compressed shard per configured range.
// Keys whose postings are empty within a shard are omitted from it, so
// every shard stands alone.
func (f *Fragmenter) Fragment(idx *index.Index) *Output {
	shards := make([]*Shard, len(f.ranges))
	memberships := make([]map[string]bool, len(f.ranges))
	for i, r := range f.ranges {
		shards[i] = &Shard{
			Name:     r.Name,
			FileName: ShardFileName(r.Name),
			Version:  idx.Version,
			Metadata: ShardMetadata{
				TotalProducts:         idx.Metadata.TotalProducts,
				LastUpdated:           idx.Metadata.LastUpdated,
				EnhancedNormalization: idx.Metadata.EnhancedNormalization,
				Fragment:              r.Name,
				FragmentType:          FragmentationType,
				CompressionType:       optimize.CompressionType,
				CompressionVersion:    optimize.CompressionVersion,
			},
			Maps:    make(map[string]optimize.Table, len(index.Kinds)),
			Indexes: make(map[string][]optimize.Entry, len(index.Kinds)),
			CodeMap: make(map[string]string),
		}
		memberships[i] = make(map[string]bool)
	}

	for norm, original := range idx.CodeMap {
		i := f.shardFor(norm)
		shards[i].CodeMap[norm] = original
		memberships[i][norm] = true
	}

	for _, kind := range index.Kinds {
		section := idx.Section(kind)
		local := make([]index.Section, len(shards))
		for i := range local {
			local[i] = make(index.Section)
		}
		for key, postings := range section {
			for i, members := range memberships {
				kept := filterPostings(postings, members)
				if len(kept) > 0 {
					local[i][key] = kept
				}
			}
		}
		for i, shard := range shards {
			table, entries := optimize.Compress(local[i])
			shard.Maps[kind] = table
			shard.Indexes[kind] = entries
		}
	}

	for _, shard := range shards {
		f.logger.Info("fragment assembled",
			slog.String("fragment", shard.Name),
			slog.Int("products", len(shard.CodeMap)),
			slog.Int("exact_keys", len(shard.Maps[index.KindExact].Keys)))
	}

	return &Output{Shards: shards, Manifest: f.manifest(idx)}
}

// filterPostings keeps postings that belong to the member set,
// preserving their order.
func filterPostings(postings index.Postings, members map[string]bool) index.Postings {
	var kept index.Postings
	for _, code := range postings {
		if members[code] {
			kept = append(kept, code)
		}
	}
	return kept
}

// manifest builds the master index clients fetch first.
func (f *Fragmenter) manifest(idx *index.Index) *Manifest {
	m := &Manifest{
		Version: idx.Version,
		Metadata: ManifestMetadata{
			TotalProducts:      idx.Metadata.TotalProducts,
			LastUpdated:        idx.Metadata.LastUpdated,
			Fragmented:         true,
			FragmentationType:  FragmentationType,
			CompressionType:    optimize.CompressionType,
			CompressionVersion: optimize.CompressionVersion,
			HasCodeMap:         true,
		},
	}
	for _, r := range f.ranges {
		m.Fragments = append(m.Fragments, Info{
			Name:  r.Name,
			File:  ShardFileName(r.Name),
			Start: strings.ToLower(r.Start),
			End:   strings.ToLower(r.End),
		})
	}
	return m
}

// ShardFileName derives the on-disk name for a fragment, for example
// "A-F" becomes "index_a_f.json".
func ShardFileName(name string) string {
	clean := strings.ReplaceAll(strings.ToLower(name), "-", "_")
	return "index_" + clean + ".json"
}

// Lookup resolves a key in one kind of a shard to product codes. The
// key table is sorted, so this is a binary search.
func (s *Shard) Lookup(kind, key string) []string {
	table, ok := s.Maps[kind]
	if !ok {
		return nil
	}
	i := sort.SearchStrings(table.Keys, key)
	if i >= len(table.Keys) || table.Keys[i] != key {
		return nil
	}
	entries := s.Indexes[kind]
	if i >= len(entries) {
		return nil
	}
	return entries[i].Resolve(table)
}
