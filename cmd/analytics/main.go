// Command analytics aggregates search events published by searcher
// instances to Kafka and serves the fleet-wide view at GET /api/v1/analytics.
//
// Usage:
//
//	go run ./cmd/analytics [--config configs/development.yaml] [--port 8082]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/postgres"
)

func main() {
	configPath := flag.StringP("config", "c", "configs/development.yaml", "path to config file")
	port := flag.IntP("port", "p", 8082, "HTTP port")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if !cfg.Kafka.Enabled {
		slog.Error("kafka is disabled in config; the analytics service has nothing to consume")
		os.Exit(1)
	}
	slog.Info("starting analytics service",
		"port", *port,
		"topic", cfg.Kafka.Topics.AnalyticsEvents,
		"group", cfg.Kafka.ConsumerGroup,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	aggregator := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, analytics.HandleMessage(aggregator))

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(ctx); err != nil {
			slog.Error("consumer error", "error", err)
		}
	}()

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

	h := analytics.NewHandler(aggregator, nil, snapshots)
	checker := health.NewChecker()
	checker.Register("consumer", func(context.Context) health.ComponentHealth {
		select {
		case <-consumerDone:
			return health.ComponentHealth{Status: health.StatusDown, Message: "consumer stopped"}
		default:
			return health.ComponentHealth{Status: health.StatusUp}
		}
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", h.Stats)
	mux.HandleFunc("GET /api/v1/analytics/snapshot", h.Snapshot)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", metrics.Handler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.RequestTimeout)(chain)
	chain = middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins))(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	<-consumerDone
	slog.Info("analytics service stopped")
}
