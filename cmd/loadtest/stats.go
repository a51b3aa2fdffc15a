package main

import (
	"fmt"
	"io"
	"math"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Stats accumulates request outcomes across workers.
type Stats struct {
	total   atomic.Int64
	success atomic.Int64
	errors  atomic.Int64

	mu        sync.Mutex
	latencies []time.Duration
	statuses  map[int]int64
	outcomes  map[string]int64
}

func NewStats() *Stats {
	return &Stats{
		latencies: make([]time.Duration, 0, 100000),
		statuses:  make(map[int]int64),
		outcomes:  make(map[string]int64),
	}
}

// Record stores one request. outcome is the search outcome reported by the
// service, or empty for prefix lookups and failed requests.
func (s *Stats) Record(latency time.Duration, status int, outcome string, err error) {
	s.total.Add(1)
	if err != nil {
		s.errors.Add(1)
		return
	}
	if status >= 200 && status < 300 {
		s.success.Add(1)
	} else {
		s.errors.Add(1)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latencies = append(s.latencies, latency)
	s.statuses[status]++
	if outcome != "" {
		s.outcomes[outcome]++
	}
}

// Report writes the summary to w and reports whether any request completed.
func (s *Stats) Report(w io.Writer, elapsed time.Duration) bool {
	total := s.total.Load()
	errs := s.errors.Load()

	fmt.Fprintln(w, "=== Results ===")
	fmt.Fprintf(w, "Total Requests:  %d\n", total)
	fmt.Fprintf(w, "Successful:      %d\n", s.success.Load())
	fmt.Fprintf(w, "Errors:          %d\n", errs)
	if total > 0 && elapsed > 0 {
		fmt.Fprintf(w, "Error Rate:      %.2f%%\n", float64(errs)/float64(total)*100)
		fmt.Fprintf(w, "Requests/sec:    %.2f\n", float64(total)/elapsed.Seconds())
	}

	s.mu.Lock()
	latencies := slices.Clone(s.latencies)
	statuses := make(map[int]int64, len(s.statuses))
	for k, v := range s.statuses {
		statuses[k] = v
	}
	outcomes := make(map[string]int64, len(s.outcomes))
	for k, v := range s.outcomes {
		outcomes[k] = v
	}
	s.mu.Unlock()

	if len(latencies) > 0 {
		slices.Sort(latencies)
		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		avg := sum / time.Duration(len(latencies))
		var sq float64
		for _, l := range latencies {
			d := float64(l - avg)
			sq += d * d
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Latency ===")
		fmt.Fprintf(w, "Min:    %s\n", latencies[0])
		fmt.Fprintf(w, "Avg:    %s\n", avg)
		fmt.Fprintf(w, "P50:    %s\n", percentile(latencies, 50))
		fmt.Fprintf(w, "P95:    %s\n", percentile(latencies, 95))
		fmt.Fprintf(w, "P99:    %s\n", percentile(latencies, 99))
		fmt.Fprintf(w, "Max:    %s\n", latencies[len(latencies)-1])
		fmt.Fprintf(w, "StdDev: %s\n", time.Duration(math.Sqrt(sq/float64(len(latencies)))))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Status Codes ===")
	codes := make([]int, 0, len(statuses))
	for code := range statuses {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  %d: %d\n", code, statuses[code])
	}

	if len(outcomes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Search Outcomes ===")
		names := make([]string, 0, len(outcomes))
		for name := range outcomes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %-12s %d\n", name, outcomes[name])
		}
	}
	return total > 0
}

// percentile expects sorted input.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	return sorted[max(0, min(idx, len(sorted)-1))]
}
