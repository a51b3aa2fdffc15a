// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Indexer, Source, Postgres, Kafka, Redis, Search, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Indexer   IndexerConfig   `yaml:"indexer"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Source    SourceConfig    `yaml:"source"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Search    SearchConfig    `yaml:"search"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	// RateLimit is requests per minute per client address; 0 disables it.
	RateLimit   int      `yaml:"rateLimit"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

// IndexerConfig controls the build pipeline.
type IndexerConfig struct {
	// ParseWorkers bounds concurrent document extraction. Commits to the
	// index are always serial.
	ParseWorkers     int   `yaml:"parseWorkers"`
	MaxDocumentBytes int64 `yaml:"maxDocumentBytes"`
}

// TokenizerConfig controls term normalisation.
type TokenizerConfig struct {
	MinTermLength int  `yaml:"minTermLength"`
	Stem          bool `yaml:"stem"`
}

// SourceConfig selects where documents are loaded from: "dir" or "postgres".
type SourceConfig struct {
	Kind       string   `yaml:"kind"`
	DataDir    string   `yaml:"dataDir"`
	Extensions []string `yaml:"extensions"`
	Table      string   `yaml:"table"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings. Analytics publishing is
// skipped when Enabled is false.
type KafkaConfig struct {
	Enabled       bool        `yaml:"enabled"`
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	AnalyticsEvents string `yaml:"analyticsEvents"`
}

// RedisConfig holds Redis connection and caching parameters. The query
// cache is skipped when Enabled is false.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// SearchConfig controls result limits.
// SearchConfig bounds result pages. Searches slower than SlowQueryThreshold
// have their trace logged at warn level; 0 disables slow query logging.
type SearchConfig struct {
	MaxResults         int           `yaml:"maxResults"`
	DefaultLimit       int           `yaml:"defaultLimit"`
	SlowQueryThreshold time.Duration `yaml:"slowQueryThreshold"`
}

// AnalyticsConfig sizes the search event pipeline. Snapshots of the
// aggregated stats are written to PostgreSQL when SnapshotInterval is set.
type AnalyticsConfig struct {
	BufferSize       int           `yaml:"bufferSize"`
	BatchSize        int           `yaml:"batchSize"`
	FlushInterval    time.Duration `yaml:"flushInterval"`
	SnapshotInterval time.Duration `yaml:"snapshotInterval"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config with defaults suitable for local use.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RequestTimeout:  5 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Indexer: IndexerConfig{
			ParseWorkers:     4,
			MaxDocumentBytes: 16 << 20,
		},
		Tokenizer: TokenizerConfig{
			MinTermLength: 1,
		},
		Source: SourceConfig{
			Kind:       "dir",
			DataDir:    "data",
			Extensions: []string{".txt", ".html"},
			Table:      "documents",
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "searchengine",
			User:            "searchengine",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "search-analytics-aggregator",
			Topics: KafkaTopics{
				AnalyticsEvents: "search-analytics",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Search: SearchConfig{
			MaxResults:         100,
			DefaultLimit:       10,
			SlowQueryThreshold: 250 * time.Millisecond,
		},
		Analytics: AnalyticsConfig{
			BufferSize:    10000,
			BatchSize:     100,
			FlushInterval: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// Validate rejects settings the services cannot start with.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case "dir":
		if c.Source.DataDir == "" {
			return fmt.Errorf("config: source.dataDir is required for dir source")
		}
	case "postgres":
		if c.Source.Table == "" {
			return fmt.Errorf("config: source.table is required for postgres source")
		}
	default:
		return fmt.Errorf("config: unknown source kind %q", c.Source.Kind)
	}
	if c.Indexer.ParseWorkers < 1 {
		return fmt.Errorf("config: indexer.parseWorkers must be positive, got %d", c.Indexer.ParseWorkers)
	}
	if c.Search.DefaultLimit < 1 || c.Search.MaxResults < c.Search.DefaultLimit {
		return fmt.Errorf("config: search limits invalid (default %d, max %d)",
			c.Search.DefaultLimit, c.Search.MaxResults)
	}
	return nil
}

// applyEnvOverrides reads TSE_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TSE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TSE_SOURCE_KIND"); v != "" {
		cfg.Source.Kind = v
	}
	if v := os.Getenv("TSE_SOURCE_DATA_DIR"); v != "" {
		cfg.Source.DataDir = v
	}
	if v := os.Getenv("TSE_SOURCE_EXTENSIONS"); v != "" {
		cfg.Source.Extensions = strings.Split(v, ",")
	}
	if v := os.Getenv("TSE_INDEXER_PARSE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.ParseWorkers = n
		}
	}
	if v := os.Getenv("TSE_TOKENIZER_STEM"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tokenizer.Stem = b
		}
	}
	if v := os.Getenv("TSE_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("TSE_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("TSE_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("TSE_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("TSE_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("TSE_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("TSE_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
		cfg.Kafka.Enabled = true
	}
	if v := os.Getenv("TSE_KAFKA_CONSUMER_GROUP"); v != "" {
		cfg.Kafka.ConsumerGroup = v
	}
	if v := os.Getenv("TSE_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("TSE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("TSE_ANALYTICS_SNAPSHOT_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Analytics.SnapshotInterval = d
		}
	}
	if v := os.Getenv("TSE_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TSE_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
