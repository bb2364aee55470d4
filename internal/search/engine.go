// Package search is the query-time engine: it selects and loads the
// shards a query needs, scores products across every loaded shard, and
// expands the survivors with catalog data.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hwcatalog/hwsearch/internal/catalog"
	"github.com/hwcatalog/hwsearch/internal/config"
	"github.com/hwcatalog/hwsearch/internal/errors"
	"github.com/hwcatalog/hwsearch/internal/fragment"
	"github.com/hwcatalog/hwsearch/internal/query"
)

// PlaceholderName marks results whose product record could not be
// loaded from the catalog.
const PlaceholderName = "Producto no encontrado"

// EventSink receives fire-and-forget usage events. Implementations
// must never panic; the engine does not check errors from them.
type EventSink interface {
	Track(name string, payload map[string]any)
}

// Options tune a single search call. The zero value uses the engine's
// configured defaults with fuzzy matching enabled.
type Options struct {
	// Limit caps the number of results; 0 means the configured default.
	Limit int
	// Threshold overrides the relevance cutoff; negative disables it,
	// 0 means the configured default.
	Threshold float64
	// DisableFuzzy turns off the n-gram pass.
	DisableFuzzy bool
	// IncludeAnalysis attaches the analyzed query and per-match detail
	// to the response.
	IncludeAnalysis bool
}

// Match records one scored lookup for explainability.
type Match struct {
	Type  string  `json:"type"`
	Term  string  `json:"term"`
	Score float64 `json:"score"`
}

// Result is one ranked product.
type Result struct {
	// Code is the canonical (normalized) product code.
	Code string `json:"code"`
	// OriginalCode is the catalog's own code for the product.
	OriginalCode string           `json:"originalCode"`
	Score        float64          `json:"score"`
	MatchTypes   []string         `json:"matchTypes"`
	Matches      []Match          `json:"matches,omitempty"`
	Product      *catalog.Product `json:"product,omitempty"`
}

// Response is the outcome of one search.
type Response struct {
	Results           []Result      `json:"results"`
	Query             string        `json:"query"`
	FragmentsSearched []string      `json:"fragmentsSearched"`
	Elapsed           time.Duration `json:"elapsed"`
	// Superseded reports that a newer query arrived while this one was
	// loading shards; Results is empty in that case.
	Superseded bool         `json:"superseded,omitempty"`
	Analysis   *query.Query `json:"analysis,omitempty"`
}

type cacheEntry struct {
	results   []Result
	fragments []string
}

// Engine answers queries over a fragmented index. Shards are fetched
// on demand and stay resident for the lifetime of the engine; a bounded
// LRU memoizes results per query.
type Engine struct {
	cfg       config.SearchConfig
	source    FragmentSource
	store     catalog.Store
	processor *query.Processor
	logger    *slog.Logger
	sink      EventSink

	mu       sync.RWMutex
	manifest *fragment.Manifest
	shards   map[string]*fragment.Shard

	version atomic.Int64
	cache   *lru.Cache[string, cacheEntry]
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithEventSink sets the usage event sink.
func WithEventSink(sink EventSink) Option {
	return func(e *Engine) { e.sink = sink }
}

// NewEngine creates an Engine over a fragment source and a product
// store. The store may be nil; results then carry only codes.
func NewEngine(cfg config.SearchConfig, source FragmentSource, store catalog.Store, opts ...Option) (*Engine, error) {
	size := cfg.CacheSize
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, errors.InternalError("failed to create result cache", err)
	}

	e := &Engine{
		cfg:       cfg,
		source:    source,
		store:     store,
		processor: query.NewProcessor(cfg),
		logger:    slog.Default(),
		shards:    make(map[string]*fragment.Shard),
		cache:     cache,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Initialize fetches the manifest. Search does this lazily, but calling
// it up front surfaces a missing index before the first query.
func (e *Engine) Initialize(ctx context.Context) error {
	_, err := e.getManifest(ctx)
	return err
}

func (e *Engine) getManifest(ctx context.Context) (*fragment.Manifest, error) {
	e.mu.RLock()
	m := e.manifest
	e.mu.RUnlock()
	if m != nil {
		return m, nil
	}

	m, err := e.source.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	if e.manifest == nil {
		e.manifest = m
	}
	m = e.manifest
	e.mu.Unlock()

	e.logger.Info("manifest loaded",
		slog.String("version", m.Version),
		slog.Int("fragments", len(m.Fragments)))
	return m, nil
}

// Search runs one query. A newer Search call supersedes any still in
// flight: the older call returns with Superseded set instead of merging
// stale shard data into its result set.
func (e *Engine) Search(ctx context.Context, raw string, opts Options) (*Response, error) {
	start := time.Now()
	ver := e.version.Add(1)

	q, err := e.processor.Process(raw)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = e.cfg.Limit
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = e.cfg.Threshold
	} else if threshold < 0 {
		threshold = 0
	}
	fuzzy := !opts.DisableFuzzy

	key := fmt.Sprintf("%s|%d|%.3f|%t", q.Normalized, limit, threshold, fuzzy)
	if entry, ok := e.cache.Get(key); ok {
		resp := e.respond(q, entry.results, entry.fragments, start, opts)
		e.track(q, resp, true)
		return resp, nil
	}

	manifest, err := e.getManifest(ctx)
	if err != nil {
		return nil, err
	}

	wanted := e.selectFragments(manifest, q)
	shards, err := e.loadFragments(ctx, manifest, wanted)
	if err != nil {
		return nil, err
	}

	if e.version.Load() != ver {
		return &Response{Query: q.Normalized, Superseded: true, Elapsed: time.Since(start)}, nil
	}

	sc := newScorer(e.cfg)
	for _, shard := range shards {
		sc.scoreShard(shard, q, fuzzy)
	}
	ranked := sc.finalize(threshold, limit)

	results := e.expand(ctx, ranked)
	e.cache.Add(key, cacheEntry{results: results, fragments: wanted})

	resp := e.respond(q, results, wanted, start, opts)
	e.track(q, resp, false)
	return resp, nil
}

func (e *Engine) respond(q *query.Query, results []Result, fragments []string, start time.Time, opts Options) *Response {
	// Cached entries keep full match detail; strip it per response so
	// the same entry serves calls with and without analysis.
	if !opts.IncludeAnalysis {
		stripped := make([]Result, len(results))
		for i, r := range results {
			r.Matches = nil
			stripped[i] = r
		}
		results = stripped
	}
	resp := &Response{
		Results:           results,
		Query:             q.Normalized,
		FragmentsSearched: fragments,
		Elapsed:           time.Since(start),
	}
	if opts.IncludeAnalysis {
		resp.Analysis = q
	}
	return resp
}

func (e *Engine) track(q *query.Query, resp *Response, cached bool) {
	if e.sink == nil {
		return
	}
	e.sink.Track("search", map[string]any{
		"query":      q.Normalized,
		"query_type": string(q.Type),
		"results":    len(resp.Results),
		"zero":       len(resp.Results) == 0,
		"cached":     cached,
		"elapsed_ms": resp.Elapsed.Milliseconds(),
	})
}

// selectFragments applies the per-type shard policy:
//
//	code        : the shard covering each candidate code
//	measurement : the default shard plus the shard covering the first
//	              measurement's leading character
//	hardware    : only the default shard
//	general     : the default shard, plus the first token's shard when
//	              the query has three or more tokens
//
// The default shard is the manifest's first fragment.
func (e *Engine) selectFragments(manifest *fragment.Manifest, q *query.Query) []string {
	if len(manifest.Fragments) == 0 {
		return nil
	}
	def := manifest.Fragments[0].Name

	var names []string
	switch q.Type {
	case query.TypeCode:
		for _, code := range q.PossibleCodes {
			names = append(names, fragmentFor(manifest, code))
		}
	case query.TypeMeasurement:
		names = append(names, def, fragmentFor(manifest, q.Measurements[0]))
	case query.TypeHardware:
		names = append(names, def)
	default:
		names = append(names, def)
		if len(q.Tokens) >= 3 {
			names = append(names, fragmentFor(manifest, q.Tokens[0]))
		}
	}

	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// fragmentFor maps a term's first character onto a manifest range. The
// last fragment is the catch-all.
func fragmentFor(manifest *fragment.Manifest, term string) string {
	last := manifest.Fragments[len(manifest.Fragments)-1].Name
	if term == "" {
		return last
	}
	first := strings.ToLower(term[:1])
	for _, f := range manifest.Fragments {
		if first >= f.Start && first <= f.End {
			return f.Name
		}
	}
	return last
}

// loadFragments ensures the wanted shards are resident, fetching the
// missing ones concurrently. A shard that fails to load is logged and
// skipped; the query degrades to the shards that did load.
func (e *Engine) loadFragments(ctx context.Context, manifest *fragment.Manifest, wanted []string) ([]*fragment.Shard, error) {
	files := make(map[string]string, len(manifest.Fragments))
	for _, f := range manifest.Fragments {
		files[f.Name] = f.File
	}

	var missing []string
	e.mu.RLock()
	for _, name := range wanted {
		if _, ok := e.shards[name]; !ok {
			missing = append(missing, name)
		}
	}
	e.mu.RUnlock()

	if len(missing) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		fetched := make([]*fragment.Shard, len(missing))
		for i, name := range missing {
			file, ok := files[name]
			if !ok {
				e.logger.Warn("fragment not in manifest", slog.String("fragment", name))
				continue
			}
			g.Go(func() error {
				shard, err := e.source.Shard(gctx, file)
				if err != nil {
					e.logger.Warn("fragment load failed, continuing without it",
						slog.String("fragment", name),
						slog.String("error", err.Error()))
					return nil
				}
				shard.Name = name
				fetched[i] = shard
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		e.mu.Lock()
		for _, shard := range fetched {
			if shard != nil {
				e.shards[shard.Name] = shard
			}
		}
		e.mu.Unlock()
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	shards := make([]*fragment.Shard, 0, len(wanted))
	for _, name := range wanted {
		if shard, ok := e.shards[name]; ok {
			shards = append(shards, shard)
		}
	}
	return shards, nil
}

// expand attaches catalog records to the ranked results. The original
// code comes from the owning shard's code map, located by the code's
// first character; when that shard is not resident the normalized code
// is kept as is. A product that cannot be loaded gets a placeholder
// record rather than dropping the result.
func (e *Engine) expand(ctx context.Context, ranked []Result) []Result {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Result, 0, len(ranked))
	for _, r := range ranked {
		r.OriginalCode = r.Code
		if e.manifest != nil && len(e.manifest.Fragments) > 0 {
			if shard, ok := e.shards[fragmentFor(e.manifest, r.Code)]; ok {
				if original, ok := shard.CodeMap[r.Code]; ok {
					r.OriginalCode = original
				}
			}
		}

		if e.store != nil {
			product, err := e.store.GetProduct(ctx, r.OriginalCode)
			if err != nil {
				e.logger.Warn("product expansion failed",
					slog.String("code", r.OriginalCode),
					slog.String("error", err.Error()))
			}
			if product == nil {
				product = &catalog.Product{Code: r.OriginalCode, Name: PlaceholderName}
			}
			r.Product = product
		}
		out = append(out, r)
	}
	return out
}

// ResidentFragments lists the shards currently held in memory, sorted.
func (e *Engine) ResidentFragments() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.shards))
	for name := range e.shards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
