package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/ingestion/source"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/metrics"
)

func testEngine(m *metrics.Metrics) *Engine {
	cfg := config.Default()
	return NewEngine(cfg.Indexer, cfg.Tokenizer, m)
}

func TestBuildFromDirectory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"ml.html":     "<html><head><title>Machine Learning</title></head><body><p>Deep learning uses data.</p><script>data()</script></body></html>",
		"science.txt": "Data science is the study of data.",
		"ignored.md":  "# data data data",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	c, stats, err := testEngine(m).Build(context.Background(), source.NewDir(dir, []string{".txt", ".html"}))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if stats.Documents != 2 || stats.Skipped != 0 {
		t.Errorf("stats = %+v", stats)
	}

	got := c.Search("data")
	if len(got) != 2 {
		t.Fatalf("Search(data) = %v", got)
	}
	if got[0].DocumentID != "science.txt" || got[0].Score != 2 || got[0].Title != "science.txt" {
		t.Errorf("first result = %+v", got[0])
	}
	if got[1].DocumentID != "ml.html" || got[1].Score != 1 || got[1].Title != "Machine Learning" {
		t.Errorf("second result = %+v", got[1])
	}

	if v := testutil.ToFloat64(m.DocsIndexedTotal); v != 2 {
		t.Errorf("docs_indexed_total = %v", v)
	}
	if v := testutil.ToFloat64(m.VocabularySize); int(v) != stats.Vocabulary || v == 0 {
		t.Errorf("vocabulary gauge = %v, stats = %d", v, stats.Vocabulary)
	}
}

func TestBuildSkipsInvalidAndDuplicates(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	src := source.Static{
		{ID: "a", Raw: []byte("alpha")},
		{ID: "", Raw: []byte("no id")},
		{ID: "a", Raw: []byte("alpha again")},
		{ID: "broken", ReadErr: errors.New("io error")},
		{ID: "b", Raw: []byte("alpha beta")},
	}
	c, stats, err := testEngine(m).Build(context.Background(), src)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if stats.Documents != 3 || stats.Skipped != 2 || stats.Unreadable != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if got := c.Search("alpha"); len(got) != 2 || got[0].Score != 1 {
		t.Errorf("Search(alpha) = %v", got)
	}
	if c.Title("broken") != ingestion.UnreadableTitle {
		t.Errorf("Title(broken) = %q", c.Title("broken"))
	}
	if v := testutil.ToFloat64(m.DocsSkippedTotal.WithLabelValues("duplicate")); v != 1 {
		t.Errorf("skipped{duplicate} = %v", v)
	}
	if v := testutil.ToFloat64(m.DocsSkippedTotal.WithLabelValues("invalid")); v != 1 {
		t.Errorf("skipped{invalid} = %v", v)
	}
}

func TestBuildIsDeterministicAcrossWorkerCounts(t *testing.T) {
	docs := make(source.Static, 0, 40)
	for i := 0; i < 40; i++ {
		docs = append(docs, ingestion.Document{
			ID:  fmt.Sprintf("doc-%02d", i),
			Raw: []byte(fmt.Sprintf("shared term%d common", i%5)),
		})
	}
	var previous []string
	for _, workers := range []int{1, 4, 16} {
		cfg := config.Default()
		cfg.Indexer.ParseWorkers = workers
		c, _, err := NewEngine(cfg.Indexer, cfg.Tokenizer, nil).Build(context.Background(), docs)
		if err != nil {
			t.Fatal(err)
		}
		ids := make([]string, 0)
		for _, r := range c.Search("shared common") {
			ids = append(ids, r.DocumentID)
		}
		if previous != nil && !slices.Equal(previous, ids) {
			t.Errorf("workers=%d changed result order", workers)
		}
		previous = ids
	}
	if len(previous) != 40 || previous[0] != "doc-00" {
		t.Errorf("unexpected results %v", previous)
	}
}

func TestBuildSourceFailure(t *testing.T) {
	_, _, err := testEngine(nil).Build(context.Background(), source.NewDir(filepath.Join(t.TempDir(), "missing"), []string{".txt"}))
	if !errors.Is(err, apperrors.ErrSourceUnavailable) {
		t.Errorf("err = %v", err)
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := source.Static{{ID: "a", Raw: []byte("x")}}
	if _, _, err := testEngine(nil).Build(ctx, src); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBuildStemmingOption(t *testing.T) {
	cfg := config.Default()
	cfg.Tokenizer.Stem = true
	src := source.Static{{ID: "a", Raw: []byte("searches searching")}}
	c, _, err := NewEngine(cfg.Indexer, cfg.Tokenizer, nil).Build(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Search("search"); len(got) != 1 || got[0].Score != 2 {
		t.Errorf("Search(search) = %v", got)
	}
}
