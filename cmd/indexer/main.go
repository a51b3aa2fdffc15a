// Command indexer builds the index from the configured document source,
// reports what was indexed and skipped, and optionally flushes cached search
// results in Redis so searchers stop serving answers from a stale corpus.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/ingestion/source"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/redis"
)

type report struct {
	Source     string `json:"source"`
	Documents  int    `json:"documents"`
	Skipped    int    `json:"skipped"`
	Unreadable int    `json:"unreadable_titles"`
	Vocabulary int    `json:"vocabulary_size"`
	DurationMS int64  `json:"duration_ms"`
	Invalidate int64  `json:"cache_keys_deleted,omitempty"`
}

func main() {
	configPath := flag.StringP("config", "c", "configs/development.yaml", "path to config file")
	dataDir := flag.StringP("data", "d", "", "index the files of this directory")
	extensions := flag.StringSlice("ext", nil, "file extensions to index")
	stem := flag.Bool("stem", false, "apply suffix stemming")
	invalidate := flag.Bool("invalidate-cache", false, "flush cached search results after a successful build")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Source.Kind = "dir"
		cfg.Source.DataDir = *dataDir
	}
	if len(*extensions) > 0 {
		cfg.Source.Extensions = *extensions
	}
	if flag.CommandLine.Changed("stem") {
		cfg.Tokenizer.Stem = *stem
	}

	logger.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, closeSource, err := source.Open(ctx, cfg.Source, cfg.Postgres)
	if err != nil {
		slog.Error("failed to open document source", "error", err)
		os.Exit(1)
	}
	defer closeSource()

	m := metrics.New(prometheus.NewRegistry())
	_, stats, err := indexer.NewEngine(cfg.Indexer, cfg.Tokenizer, m).Build(ctx, src)
	if err != nil {
		slog.Error("index build failed", "error", err)
		os.Exit(1)
	}

	rep := report{
		Source:     cfg.Source.Kind,
		Documents:  stats.Documents,
		Skipped:    stats.Skipped,
		Unreadable: stats.Unreadable,
		Vocabulary: stats.Vocabulary,
		DurationMS: stats.Duration.Milliseconds(),
	}

	if *invalidate {
		client, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Error("redis unavailable, cache not invalidated", "error", err)
			os.Exit(1)
		}
		deleted, err := cache.New(client, cfg.Redis).Invalidate(ctx)
		client.Close()
		if err != nil {
			slog.Error("cache invalidation failed", "error", err)
			os.Exit(1)
		}
		rep.Invalidate = deleted
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(rep)
		return
	}
	fmt.Printf("Indexed %d documents (%d skipped, %d without a readable title), %d unique terms in %dms.\n",
		rep.Documents, rep.Skipped, rep.Unreadable, rep.Vocabulary, rep.DurationMS)
	if *invalidate {
		fmt.Printf("Flushed %d cached search results.\n", rep.Invalidate)
	}
}
