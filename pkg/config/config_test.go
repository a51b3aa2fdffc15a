package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Source.Kind != "dir" || cfg.Source.DataDir != "data" {
		t.Errorf("source = %+v", cfg.Source)
	}
	if !slices.Equal(cfg.Source.Extensions, []string{".txt", ".html"}) {
		t.Errorf("extensions = %v", cfg.Source.Extensions)
	}
	if cfg.Redis.Enabled || cfg.Kafka.Enabled {
		t.Error("redis and kafka should be disabled by default")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
source:
  dataDir: /srv/pages
  extensions: [".md"]
redis:
  enabled: true
  cacheTTL: 5m
search:
  defaultLimit: 5
  maxResults: 50
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TSE_LOGGING_LEVEL", "debug")
	t.Setenv("TSE_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TSE_ANALYTICS_SNAPSHOT_INTERVAL", "1m")
	t.Setenv("TSE_KAFKA_CONSUMER_GROUP", "analytics-it")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Source.DataDir != "/srv/pages" || !slices.Equal(cfg.Source.Extensions, []string{".md"}) {
		t.Errorf("source = %+v", cfg.Source)
	}
	if !cfg.Redis.Enabled || cfg.Redis.CacheTTL != 5*time.Minute {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Search.DefaultLimit != 5 || cfg.Search.MaxResults != 50 || cfg.Search.SlowQueryThreshold != 250*time.Millisecond {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level = %q", cfg.Logging.Level)
	}
	if !cfg.Kafka.Enabled || len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.ConsumerGroup != "analytics-it" {
		t.Errorf("kafka = %+v", cfg.Kafka)
	}
	if cfg.Analytics.SnapshotInterval != time.Minute || cfg.Analytics.BatchSize != 100 {
		t.Errorf("analytics = %+v", cfg.Analytics)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("unset fields should keep defaults, port = %d", cfg.Server.Port)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown source", "source:\n  kind: ftp\n", "unknown source kind"},
		{"workers", "indexer:\n  parseWorkers: 0\n", "parseWorkers"},
		{"limits", "search:\n  defaultLimit: 20\n  maxResults: 10\n", "search limits"},
		{"bad yaml", "source: [", "parsing config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	want := "host=db port=5433 user=u password=p dbname=d sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN() = %q", got)
	}
}
