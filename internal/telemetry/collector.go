// Package telemetry aggregates search usage locally: query type counts,
// latency buckets and recent zero-result queries. Nothing is reported
// anywhere; aggregates can be flushed to a sqlite store for later
// inspection with the stats tooling.
package telemetry

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LatencyBucket is a coarse latency histogram bucket.
type LatencyBucket string

const (
	BucketP10   LatencyBucket = "p10"   // <10ms
	BucketP50   LatencyBucket = "p50"   // 10-50ms
	BucketP100  LatencyBucket = "p100"  // 50-100ms
	BucketP500  LatencyBucket = "p500"  // 100-500ms
	BucketP1000 LatencyBucket = "p1000" // >=500ms
)

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	ms := d.Milliseconds()
	switch {
	case ms < 10:
		return BucketP10
	case ms < 50:
		return BucketP50
	case ms < 100:
		return BucketP100
	case ms < 500:
		return BucketP500
	default:
		return BucketP1000
	}
}

// Event is one recorded search.
type Event struct {
	Query       string
	QueryType   string
	ResultCount int
	Cached      bool
	Latency     time.Duration
	Timestamp   time.Time
}

// zeroResultCapacity bounds the recent zero-result query list.
const zeroResultCapacity = 128

// Stats is a point-in-time aggregate snapshot.
type Stats struct {
	TotalQueries      int64
	QueryTypes        map[string]int64
	Latency           map[LatencyBucket]int64
	CacheHits         int64
	ZeroResultQueries []string
}

// Collector aggregates search events in memory. It satisfies the
// engine's event sink interface and is safe for concurrent use.
type Collector struct {
	mu          sync.Mutex
	total       int64
	cacheHits   int64
	queryTypes  map[string]int64
	latency     map[LatencyBucket]int64
	zeroResults *lru.Cache[string, time.Time]
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	zero, _ := lru.New[string, time.Time](zeroResultCapacity)
	return &Collector{
		queryTypes:  make(map[string]int64),
		latency:     make(map[LatencyBucket]int64),
		zeroResults: zero,
	}
}

// Record aggregates one event.
func (c *Collector) Record(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total++
	if e.QueryType != "" {
		c.queryTypes[e.QueryType]++
	}
	c.latency[LatencyToBucket(e.Latency)]++
	if e.Cached {
		c.cacheHits++
	}
	if e.ResultCount == 0 && e.Query != "" {
		ts := e.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		c.zeroResults.Add(e.Query, ts)
	}
}

// Track adapts the engine's fire-and-forget event payloads. Unknown
// event names and missing fields are ignored.
func (c *Collector) Track(name string, payload map[string]any) {
	if name != "search" {
		return
	}
	e := Event{Timestamp: time.Now()}
	if v, ok := payload["query_type"].(string); ok {
		e.QueryType = v
	}
	if v, ok := payload["query"].(string); ok {
		e.Query = v
	}
	if v, ok := payload["results"].(int); ok {
		e.ResultCount = v
	}
	if v, ok := payload["cached"].(bool); ok {
		e.Cached = v
	}
	if v, ok := payload["elapsed_ms"].(int64); ok {
		e.Latency = time.Duration(v) * time.Millisecond
	}
	c.Record(e)
}

// Snapshot returns a copy of the current aggregates.
func (c *Collector) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		TotalQueries: c.total,
		CacheHits:    c.cacheHits,
		QueryTypes:   make(map[string]int64, len(c.queryTypes)),
		Latency:      make(map[LatencyBucket]int64, len(c.latency)),
	}
	for k, v := range c.queryTypes {
		s.QueryTypes[k] = v
	}
	for k, v := range c.latency {
		s.Latency[k] = v
	}
	s.ZeroResultQueries = c.zeroResults.Keys()
	return s
}

// Flush persists the current aggregates under the given date key and
// resets the in-memory counters.
func (c *Collector) Flush(store *Store, date string) error {
	c.mu.Lock()
	snapshot := Stats{
		QueryTypes: c.queryTypes,
		Latency:    c.latency,
	}
	zero := make(map[string]time.Time, c.zeroResults.Len())
	for _, q := range c.zeroResults.Keys() {
		if ts, ok := c.zeroResults.Peek(q); ok {
			zero[q] = ts
		}
	}
	c.queryTypes = make(map[string]int64)
	c.latency = make(map[LatencyBucket]int64)
	c.zeroResults.Purge()
	c.total = 0
	c.cacheHits = 0
	c.mu.Unlock()

	if err := store.SaveQueryTypeCounts(date, snapshot.QueryTypes); err != nil {
		return err
	}
	if err := store.SaveLatencyCounts(date, snapshot.Latency); err != nil {
		return err
	}
	for q, ts := range zero {
		if err := store.AddZeroResultQuery(q, ts); err != nil {
			return err
		}
	}
	return nil
}
