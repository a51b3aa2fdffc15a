// Command searchengine builds an index from a document source and answers
// queries typed on stdin.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/cli"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/ingestion/source"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/metrics"
)

func main() {
	configPath := flag.StringP("config", "c", "", "path to config file")
	dataDir := flag.StringP("data", "d", "", "index the files of this directory")
	extensions := flag.StringSlice("ext", nil, "file extensions to index, e.g. .txt,.html,.md")
	limit := flag.IntP("limit", "n", 0, "maximum results printed per query (0 prints all)")
	stem := flag.Bool("stem", false, "apply suffix stemming to documents and queries")
	serveMetrics := flag.Bool("metrics", false, "serve Prometheus metrics while the prompt runs")
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		// The prompt blocks on stdin, so a signal ends the process here.
		fmt.Println()
		slog.Info("interrupted")
		os.Exit(130)
	}()

	m := metrics.New(prometheus.DefaultRegisterer)
	if *serveMetrics {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Port, prometheus.DefaultGatherer); err != nil {
				slog.Error("metrics sidecar stopped", "error", err)
			}
		}()
	}

	src, closeSource, err := source.Open(ctx, cfg.Source, cfg.Postgres)
	if err != nil {
		slog.Error("failed to open document source", "error", err)
		os.Exit(1)
	}
	defer closeSource()

	fmt.Println("Building search index...")
	idx, stats, err := indexer.NewEngine(cfg.Indexer, cfg.Tokenizer, m).Build(ctx, src)
	if err != nil {
		slog.Error("index build failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Index successfully built: %d documents, %d unique terms.\n\n", stats.Documents, stats.Vocabulary)

	agg := analytics.NewAggregator()
	collector := analytics.NewCollector(agg, nil, cfg.Analytics)
	collector.Start(ctx)

	err = cli.New(idx, collector, *limit).Run(ctx, os.Stdin, os.Stdout)
	collector.Close()
	s := agg.Stats()
	slog.Info("session finished",
		"searches", s.TotalSearches,
		"prefix_lookups", s.PrefixLookups,
		"zero_results", s.ZeroResultCount,
	)
	if err != nil && ctx.Err() == nil {
		slog.Error("prompt failed", "error", err)
		os.Exit(1)
	}
}
