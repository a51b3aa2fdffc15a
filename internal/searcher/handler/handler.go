// Package handler serves the search HTTP API over a built index.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/searcher/coordinator"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/tracing"
)

// Handler answers queries once an index has been installed with SetIndex.
// Until then search endpoints return 503.
type Handler struct {
	index        atomic.Pointer[coordinator.Coordinator]
	cache        *cache.QueryCache
	collector    *analytics.Collector
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	slowQuery    time.Duration
	logger       *slog.Logger
}

// New builds a Handler. queryCache, collector and m may be nil.
func New(cfg config.SearchConfig, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics) *Handler {
	return &Handler{
		cache:        queryCache,
		collector:    collector,
		metrics:      m,
		defaultLimit: cfg.DefaultLimit,
		maxResults:   cfg.MaxResults,
		slowQuery:    cfg.SlowQueryThreshold,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// SetIndex installs c as the index being served.
func (h *Handler) SetIndex(c *coordinator.Coordinator) {
	h.index.Store(c)
}

// Ready reports the number of documents served, 0 before SetIndex.
func (h *Handler) Ready() int {
	if c := h.index.Load(); c != nil {
		return c.DocCount()
	}
	return 0
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/terms", h.Terms)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := tracing.Start(r.Context(), "search", middleware.GetRequestID(r.Context()))
	defer span.Report(h.logger, h.slowQuery)
	log := logger.FromContext(ctx)

	idx := h.index.Load()
	if idx == nil {
		h.writeError(w, apperrors.New(apperrors.ErrIndexNotReady, http.StatusServiceUnavailable, "index is still building"))
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}
	limit, err := h.parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	span.SetAttr("query", query, "limit", limit)
	resp, cacheHit, err := h.cache.GetOrCompute(ctx, idx.Fingerprint(), query, limit, func() (*coordinator.Response, error) {
		_, qspan := tracing.Child(ctx, "query")
		defer qspan.End()
		resp := idx.Query(query)
		qspan.SetAttr("outcome", resp.Outcome, "total_hits", resp.TotalHits)
		return resp.Page(limit), nil
	})
	span.SetAttr("cache_hit", cacheHit)
	if err != nil {
		log.Error("search failed", "query", query, "error", err)
		h.writeError(w, err)
		return
	}

	latency := time.Since(start)
	h.observeSearch(resp, cacheHit, latency)
	log.Info("search completed",
		"query", query,
		"outcome", resp.Outcome,
		"total_hits", resp.TotalHits,
		"returned", len(resp.Results),
		"fallbacks", resp.Fallbacks(),
		"cache_hit", cacheHit,
		"latency", latency,
	)

	if h.collector != nil {
		terms := make([]string, 0, len(resp.Terms))
		for _, t := range resp.Terms {
			terms = append(terms, t.Term)
		}
		h.collector.Track(analytics.SearchEvent{
			Type:          analytics.EventSearch,
			Query:         query,
			Outcome:       string(resp.Outcome),
			Terms:         terms,
			Fallbacks:     resp.Fallbacks(),
			TotalHits:     resp.TotalHits,
			Returned:      len(resp.Results),
			LatencyMicros: latency.Microseconds(),
			CacheHit:      cacheHit,
			Timestamp:     time.Now().UTC(),
			RequestID:     middleware.GetRequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}

type termsResponse struct {
	Prefix string   `json:"prefix"`
	Count  int      `json:"count"`
	Terms  []string `json:"terms"`
}

// Terms lists vocabulary terms starting with the prefix parameter. A blank
// prefix lists nothing.
func (h *Handler) Terms(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	idx := h.index.Load()
	if idx == nil {
		h.writeError(w, apperrors.New(apperrors.ErrIndexNotReady, http.StatusServiceUnavailable, "index is still building"))
		return
	}
	prefix := r.URL.Query().Get("prefix")

	terms := idx.PrefixSearch(prefix)
	if h.metrics != nil {
		h.metrics.PrefixQueriesTotal.Inc()
	}
	if h.collector != nil {
		h.collector.Track(analytics.SearchEvent{
			Type:          analytics.EventPrefix,
			Query:         prefix,
			TotalHits:     len(terms),
			Returned:      len(terms),
			LatencyMicros: time.Since(start).Microseconds(),
			Timestamp:     time.Now().UTC(),
			RequestID:     middleware.GetRequestID(r.Context()),
		})
	}
	h.writeJSON(w, http.StatusOK, termsResponse{Prefix: prefix, Count: len(terms), Terms: terms})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	idx := h.index.Load()
	if idx == nil {
		h.writeError(w, apperrors.New(apperrors.ErrIndexNotReady, http.StatusServiceUnavailable, "index is still building"))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{
		"documents":       idx.DocCount(),
		"vocabulary_size": idx.VocabularySize(),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats := h.cache.Stats()
	if !stats.Enabled {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	total := stats.Hits + stats.Misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(stats.Hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     stats.Hits,
		"misses":   stats.Misses,
		"errors":   stats.Errors,
		"total":    total,
		"hit_rate": strconv.FormatFloat(hitRate, 'f', 1, 64) + "%",
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if !h.cache.Stats().Enabled {
		h.writeError(w, apperrors.New(apperrors.ErrCacheUnavailable, http.StatusServiceUnavailable, "caching is disabled"))
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("cache invalidation failed", "error", err)
		h.writeError(w, apperrors.New(apperrors.ErrCacheUnavailable, http.StatusInternalServerError, "cache invalidation failed"))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

// parseLimit applies the default for an empty value and caps at maxResults.
func (h *Handler) parseLimit(raw string) (int, error) {
	if raw == "" {
		return h.defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "limit must be a positive integer")
	}
	return min(limit, h.maxResults), nil
}

func (h *Handler) observeSearch(resp *coordinator.Response, cacheHit bool, latency time.Duration) {
	if h.metrics == nil {
		return
	}
	status := "disabled"
	if h.cache != nil {
		if cacheHit {
			status = "hit"
			h.metrics.CacheHitsTotal.Inc()
		} else {
			status = "miss"
			h.metrics.CacheMissesTotal.Inc()
		}
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(string(resp.Outcome)).Inc()
	h.metrics.SearchLatency.WithLabelValues(status).Observe(latency.Seconds())
	h.metrics.SearchResultsCount.Observe(float64(len(resp.Results)))
	h.metrics.FallbackTermsTotal.Add(float64(resp.Fallbacks()))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	message := "internal error"
	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		message = appErr.Message
	}
	h.writeJSON(w, apperrors.HTTPStatusCode(err), map[string]string{"error": message})
}
