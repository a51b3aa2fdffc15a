// Package source loads the documents an index is built from: files in a
// directory, rows of a PostgreSQL table, or a fixed in-memory set.
package source

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/postgres"
)

// Source yields every document of one build, in a stable order.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]ingestion.Document, error)
}

// Open builds the Source selected by cfg.Kind. The returned close func
// releases any connection the source holds.
func Open(ctx context.Context, cfg config.SourceConfig, pg config.PostgresConfig) (Source, func() error, error) {
	switch cfg.Kind {
	case "dir":
		return NewDir(cfg.DataDir, cfg.Extensions), func() error { return nil }, nil
	case "postgres":
		client, err := postgres.New(ctx, pg)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres source: %w", err)
		}
		return NewPostgres(client, cfg.Table), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

// Static serves a fixed list of documents.
type Static []ingestion.Document

func (s Static) Name() string { return "static" }

func (s Static) Load(ctx context.Context) ([]ingestion.Document, error) {
	out := make([]ingestion.Document, len(s))
	copy(out, s)
	return out, nil
}
