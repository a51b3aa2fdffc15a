package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/ingestion/source"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/ratelimit"
	pkgredis "github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/redis"
)

func main() {
	configPath := flag.StringP("config", "c", "configs/development.yaml", "path to config file")
	dataDir := flag.StringP("data", "d", "", "index the files of this directory")
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

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "source", cfg.Source.Kind)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)

	var redisClient *pkgredis.Client
	var queryCache *cache.QueryCache
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis)
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var publisher analytics.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		publisher = producer
		slog.Info("analytics publishing enabled", "topic", cfg.Kafka.Topics.AnalyticsEvents)
	}
	aggregator := analytics.NewAggregator()
	collector := analytics.NewCollector(aggregator, publisher, cfg.Analytics)
	collector.Start(ctx)

	var snapshots *analytics.SnapshotStore
	if cfg.Analytics.SnapshotInterval > 0 {
		pg, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Warn("postgres unavailable, analytics snapshots disabled", "error", err)
		} else {
			defer pg.Close()
			snapshots = analytics.NewSnapshotStore(pg.DB)
			if err := snapshots.EnsureSchema(ctx); err != nil {
				slog.Warn("analytics snapshots disabled", "error", err)
				snapshots = nil
			} else {
				snapshots.StartPeriodicSave(ctx, aggregator, cfg.Analytics.SnapshotInterval)
			}
		}
	}

	h := handler.New(cfg.Search, queryCache, collector, m)
	analyticsH := analytics.NewHandler(aggregator, collector, snapshots)

	checker := health.NewChecker()
	checker.Register("index", health.IndexCheck(h.Ready))
	if redisClient != nil {
		checker.Register("redis", health.PingCheck(redisClient.Ping))
	} else {
		checker.Register("redis", health.PingCheck(nil))
	}

	mux := http.NewServeMux()
	h.Routes(mux)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /api/v1/analytics/snapshot", analyticsH.Snapshot)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", metrics.Handler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.RequestTimeout)(chain)
	if cfg.Server.RateLimit > 0 {
		limiter := ratelimit.New(cfg.Server.RateLimit, time.Minute)
		go limiter.RunCleanup(5*time.Minute, ctx.Done())
		chain = middleware.RateLimit(limiter)(chain)
	}
	chain = middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins))(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// The listener comes up first; readiness flips once the index is built.
	go func() {
		src, closeSource, err := source.Open(ctx, cfg.Source, cfg.Postgres)
		if err != nil {
			slog.Error("failed to open document source", "error", err)
			stop()
			return
		}
		defer closeSource()
		idx, _, err := indexer.NewEngine(cfg.Indexer, cfg.Tokenizer, m).Build(ctx, src)
		if err != nil {
			slog.Error("index build failed", "error", err)
			stop()
			return
		}
		h.SetIndex(idx)
		slog.Info("search index ready", "documents", idx.DocCount(), "vocabulary", idx.VocabularySize())
	}()

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	collector.Close()
	slog.Info("search service stopped")
}
