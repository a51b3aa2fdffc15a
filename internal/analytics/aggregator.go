package analytics

import (
	"sort"
	"sync"
	"time"
)

// maxLatencySamples bounds the latency window used for percentiles.
const maxLatencySamples = 10000

type AggregatedStats struct {
	TotalSearches     int64        `json:"total_searches"`
	PrefixLookups     int64        `json:"prefix_lookups"`
	CacheHits         int64        `json:"cache_hits"`
	CacheMisses       int64        `json:"cache_misses"`
	ZeroResultCount   int64        `json:"zero_result_count"`
	UnresolvedCount   int64        `json:"unresolved_count"`
	FallbackTerms     int64        `json:"fallback_terms"`
	AvgLatencyMicros  float64      `json:"avg_latency_us"`
	P50LatencyMicros  int64        `json:"p50_latency_us"`
	P95LatencyMicros  int64        `json:"p95_latency_us"`
	P99LatencyMicros  int64        `json:"p99_latency_us"`
	TopQueries        []QueryCount `json:"top_queries"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
	QueriesPerMinute  float64      `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator keeps running totals over search events in memory.
type Aggregator struct {
	mu                sync.RWMutex
	totalSearches     int64
	prefixLookups     int64
	cacheHits         int64
	cacheMisses       int64
	zeroResults       int64
	unresolved        int64
	fallbackTerms     int64
	latencies         []int64
	next              int
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	startTime         time.Time
	now               func() time.Time
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:         make([]int64, 0, 1024),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		startTime:         time.Now(),
		now:               time.Now,
	}
}

func (a *Aggregator) Record(event SearchEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if event.Type == EventPrefix {
		a.prefixLookups++
		return
	}

	a.totalSearches++
	if event.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	if event.TotalHits == 0 {
		a.zeroResults++
		a.zeroResultQueries[event.Query]++
	}
	if event.Outcome == "unresolved" {
		a.unresolved++
	}
	a.fallbackTerms += int64(event.Fallbacks)
	a.queryCounts[event.Query]++

	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, event.LatencyMicros)
	} else {
		a.latencies[a.next] = event.LatencyMicros
		a.next = (a.next + 1) % maxLatencySamples
	}
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:   a.totalSearches,
		PrefixLookups:   a.prefixLookups,
		CacheHits:       a.cacheHits,
		CacheMisses:     a.cacheMisses,
		ZeroResultCount: a.zeroResults,
		UnresolvedCount: a.unresolved,
		FallbackTerms:   a.fallbackTerms,
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMicros = float64(sum) / float64(len(sorted))
		stats.P50LatencyMicros = percentile(sorted, 50)
		stats.P95LatencyMicros = percentile(sorted, 95)
		stats.P99LatencyMicros = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, 10)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, 10)
	elapsed := a.now().Sub(a.startTime).Minutes()
	if elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count, then query text so equal counts list stably.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
