package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Handler struct {
	aggregator *Aggregator
	collector  *Collector
	store      *SnapshotStore
	logger     *slog.Logger
}

// NewHandler serves live stats from aggregator. collector and store may be
// nil.
func NewHandler(aggregator *Aggregator, collector *Collector, store *SnapshotStore) *Handler {
	return &Handler{
		aggregator: aggregator,
		collector:  collector,
		store:      store,
		logger:     slog.Default().With("component", "analytics-handler"),
	}
}

type statsResponse struct {
	AggregatedStats
	DroppedEvents int64 `json:"dropped_events"`
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{AggregatedStats: h.aggregator.Stats()}
	if h.collector != nil {
		resp.DroppedEvents = h.collector.Dropped()
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Snapshot returns the last persisted snapshot.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "analytics snapshots are disabled"})
		return
	}
	stats, err := h.store.LatestSnapshot(r.Context())
	if err != nil {
		h.logger.Error("loading analytics snapshot failed", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "snapshot unavailable"})
		return
	}
	if stats == nil {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no snapshot saved yet"})
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write analytics response", "error", err)
	}
}
