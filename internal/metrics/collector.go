package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/mediadex/mediadex/internal/domain/catalog"
)

// PopularQueryTableSize bounds the most-frequent-query table.
const PopularQueryTableSize = 100

// QueryCount is one row of the popular-query table.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Snapshot is a point-in-time copy of the search counters.
type Snapshot struct {
	SearchCount     int64                 `json:"search_count"`
	AvgLatencyMs    float64               `json:"avg_latency_ms"`
	CacheHits       int64                 `json:"cache_hits"`
	CacheMisses     int64                 `json:"cache_misses"`
	AdapterFailures map[catalog.Tag]int64 `json:"adapter_failures"`
	PopularQueries  []QueryCount          `json:"popular_queries"`
}

// Collector keeps process-wide search counters and feeds the Prometheus
// vectors. It never blocks or fails the search path.
type Collector struct {
	mu              sync.Mutex
	searchCount     int64
	totalLatency    time.Duration
	cacheHits       int64
	cacheMisses     int64
	adapterFailures map[catalog.Tag]int64
	queryCounts     map[string]int64
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		adapterFailures: make(map[catalog.Tag]int64),
		queryCounts:     make(map[string]int64),
	}
}

// RecordSearch observes one completed search.
func (c *Collector) RecordSearch(query string, latency time.Duration, cacheHit bool) {
	label := "miss"
	if cacheHit {
		label = "hit"
	}
	SearchDuration.WithLabelValues(label).Observe(latency.Seconds())
	SearchesTotal.WithLabelValues(label).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.searchCount++
	c.totalLatency += latency
	if cacheHit {
		c.cacheHits++
	} else {
		c.cacheMisses++
	}
	c.recordQueryLocked(query)
}

// RecordAdapterFailure observes one failed catalog branch.
func (c *Collector) RecordAdapterFailure(tag catalog.Tag) {
	AdapterFailuresTotal.WithLabelValues(string(tag)).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.adapterFailures[tag]++
}

// Snapshot returns a copy of the counters. Popular queries come back sorted
// by frequency descending.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		SearchCount:     c.searchCount,
		CacheHits:       c.cacheHits,
		CacheMisses:     c.cacheMisses,
		AdapterFailures: make(map[catalog.Tag]int64, len(c.adapterFailures)),
	}
	if c.searchCount > 0 {
		snap.AvgLatencyMs = float64(c.totalLatency.Milliseconds()) / float64(c.searchCount)
	}
	for tag, n := range c.adapterFailures {
		snap.AdapterFailures[tag] = n
	}

	snap.PopularQueries = make([]QueryCount, 0, len(c.queryCounts))
	for q, n := range c.queryCounts {
		snap.PopularQueries = append(snap.PopularQueries, QueryCount{Query: q, Count: n})
	}
	sort.Slice(snap.PopularQueries, func(i, j int) bool {
		a, b := snap.PopularQueries[i], snap.PopularQueries[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Query < b.Query
	})
	return snap
}

// recordQueryLocked bumps the query's count, evicting the least-frequent row
// when the table is full.
func (c *Collector) recordQueryLocked(query string) {
	if query == "" {
		return
	}
	if _, ok := c.queryCounts[query]; !ok && len(c.queryCounts) >= PopularQueryTableSize {
		var victim string
		var low int64 = -1
		for q, n := range c.queryCounts {
			if low < 0 || n < low {
				victim, low = q, n
			}
		}
		delete(c.queryCounts, victim)
	}
	c.queryCounts[query]++
}
