// Package indexer runs an index build: it loads documents from a source,
// extracts and tokenises them concurrently, commits them to the index in
// source order, and hands back the frozen search coordinator.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/ingestion/extract"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/ingestion/source"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/searcher/coordinator"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/metrics"
)

// BuildStats summarises one build.
type BuildStats struct {
	Documents  int
	Skipped    int
	Unreadable int
	Vocabulary int
	Duration   time.Duration
}

type Engine struct {
	cfg       config.IndexerConfig
	parser    coordinator.Parser
	tokenizer coordinator.Tokenizer
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewEngine wires the default extractor and a tokenizer configured by tok.
// m may be nil.
func NewEngine(cfg config.IndexerConfig, tok config.TokenizerConfig, m *metrics.Metrics) *Engine {
	return &Engine{
		cfg:    cfg,
		parser: extract.New(),
		tokenizer: tokenizer.New(tokenizer.Options{
			MinTermLength: tok.MinTermLength,
			Stem:          tok.Stem,
		}),
		metrics: m,
		logger:  slog.Default().With("component", "indexer"),
	}
}

// Build indexes every valid document of src and returns the frozen
// coordinator. Invalid documents are skipped and unreadable ones indexed
// with a placeholder title; neither aborts the build.
func (e *Engine) Build(ctx context.Context, src source.Source) (*coordinator.Coordinator, BuildStats, error) {
	start := time.Now()
	var stats BuildStats

	docs, err := src.Load(ctx)
	if err != nil {
		return nil, stats, fmt.Errorf("loading documents from %s: %w", src.Name(), err)
	}

	valid := make([]ingestion.Document, 0, len(docs))
	for i := range docs {
		if err := validator.ValidateDocument(&docs[i], e.cfg.MaxDocumentBytes); err != nil {
			e.logger.Warn("document skipped", "doc_id", docs[i].ID, "error", err)
			e.skipped("invalid")
			stats.Skipped++
			continue
		}
		if docs[i].ReadErr != nil {
			stats.Unreadable++
		}
		valid = append(valid, docs[i])
	}

	builder := coordinator.NewBuilder(e.parser, e.tokenizer)
	prepared := make([]coordinator.Prepared, len(valid))

	g, gctx := errgroup.WithContext(ctx)
	workers := e.cfg.ParseWorkers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)
	for i := range valid {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			prepared[i] = builder.Prepare(valid[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, fmt.Errorf("extracting documents: %w", err)
	}

	for _, p := range prepared {
		if err := builder.Commit(p); err != nil {
			if errors.Is(err, apperrors.ErrDuplicateDocument) {
				e.logger.Warn("duplicate document skipped", "doc_id", p.DocID)
				e.skipped("duplicate")
				stats.Skipped++
				continue
			}
			return nil, stats, fmt.Errorf("committing documents: %w", err)
		}
		stats.Documents++
	}

	c := builder.Build()
	stats.Vocabulary = c.VocabularySize()
	stats.Duration = time.Since(start)

	if e.metrics != nil {
		e.metrics.DocsIndexedTotal.Add(float64(stats.Documents))
		e.metrics.IndexedDocuments.Set(float64(c.DocCount()))
		e.metrics.VocabularySize.Set(float64(stats.Vocabulary))
		e.metrics.IndexBuildDuration.Observe(stats.Duration.Seconds())
	}
	e.logger.Info("index successfully built",
		"source", src.Name(),
		"documents", stats.Documents,
		"skipped", stats.Skipped,
		"unreadable", stats.Unreadable,
		"total_unique_terms", stats.Vocabulary,
		"duration", stats.Duration,
	)
	return c, stats, nil
}

func (e *Engine) skipped(reason string) {
	if e.metrics != nil {
		e.metrics.DocsSkippedTotal.WithLabelValues(reason).Inc()
	}
}
