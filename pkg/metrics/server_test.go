package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestIndexEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	mux := m.ServeMux(reg)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("before build: status = %d, want 503", rec.Code)
	}

	m.IndexedDocuments.Set(3)
	m.VocabularySize.Set(7)
	m.IndexBuildDuration.Observe(0.25)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("after build: status = %d", rec.Code)
	}
	var s IndexStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatal(err)
	}
	want := IndexStatus{Built: true, Documents: 3, Vocabulary: 7, BuildSecs: 0.25}
	if s != want {
		t.Errorf("status = %+v, want %+v", s, want)
	}
}

func TestStatusEmptyCorpusIsBuilt(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.IndexBuildDuration.Observe(0.01)
	if s := m.Status(); !s.Built || s.Documents != 0 {
		t.Errorf("status = %+v", s)
	}
}

func TestMetricsEndpointUsesGatherer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.PrefixQueriesTotal.Inc()

	rec := httptest.NewRecorder()
	m.ServeMux(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "tse_prefix_queries_total 1") {
		t.Errorf("scrape missing prefix counter:\n%s", rec.Body.String())
	}
}
