package analytics

import "time"

type EventType string

const (
	EventSearch EventType = "search"
	EventPrefix EventType = "prefix"
)

// SearchEvent describes one query answered by the engine. For prefix
// lookups Query holds the prefix and TotalHits the number of terms found.
type SearchEvent struct {
	Type          EventType `json:"type"`
	Query         string    `json:"query"`
	Outcome       string    `json:"outcome,omitempty"`
	Terms         []string  `json:"terms,omitempty"`
	Fallbacks     int       `json:"fallbacks"`
	TotalHits     int       `json:"total_hits"`
	Returned      int       `json:"returned"`
	LatencyMicros int64     `json:"latency_us"`
	CacheHit      bool      `json:"cache_hit"`
	Timestamp     time.Time `json:"timestamp"`
	RequestID     string    `json:"request_id,omitempty"`
}
