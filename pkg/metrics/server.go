package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// IndexStatus is the last index build as recorded in the collectors.
type IndexStatus struct {
	Built      bool    `json:"built"`
	Documents  int     `json:"documents"`
	Vocabulary int     `json:"vocabulary"`
	BuildSecs  float64 `json:"build_seconds"`
}

// Status reads the index gauges. Built turns true once a build has been
// observed, which also covers an empty corpus.
func (m *Metrics) Status() IndexStatus {
	var s IndexStatus
	var out dto.Metric
	if err := m.IndexBuildDuration.Write(&out); err == nil && out.GetHistogram().GetSampleCount() > 0 {
		s.Built = true
		s.BuildSecs = out.GetHistogram().GetSampleSum()
	}
	s.Documents = gaugeValue(m.IndexedDocuments)
	s.Vocabulary = gaugeValue(m.VocabularySize)
	return s
}

func gaugeValue(g prometheus.Gauge) int {
	var out dto.Metric
	if err := g.Write(&out); err != nil {
		return 0
	}
	return int(out.GetGauge().GetValue())
}

// ServeMux exposes the collectors gathered by g on /metrics and the
// index build status on /index. /index answers 503 until a build lands.
func (m *Metrics) ServeMux(g prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /index", func(w http.ResponseWriter, r *http.Request) {
		s := m.Status()
		w.Header().Set("Content-Type", "application/json")
		if !s.Built {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(s)
	})
	return mux
}

// Serve runs the metrics sidecar for processes with no HTTP surface of
// their own, such as the interactive prompt. It returns once ctx is done
// and the server has drained.
func (m *Metrics) Serve(ctx context.Context, port int, g prometheus.Gatherer) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      m.ServeMux(g),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("metrics sidecar listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics sidecar: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
