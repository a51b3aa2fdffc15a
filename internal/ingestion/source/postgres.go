package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/postgres"
)

// Postgres loads documents from a table shaped as:
//
//	CREATE TABLE documents (
//	    id           TEXT PRIMARY KEY,
//	    title        TEXT NOT NULL DEFAULT '',
//	    content_type TEXT NOT NULL DEFAULT 'txt',
//	    body         BYTEA NOT NULL
//	);
//
// content_type is a file extension without the dot and selects the parser.
type Postgres struct {
	db     *postgres.Client
	table  string
	logger *slog.Logger
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func NewPostgres(db *postgres.Client, table string) *Postgres {
	return &Postgres{
		db:     db,
		table:  table,
		logger: slog.Default().With("component", "source", "table", table),
	}
}

func (p *Postgres) Name() string { return "postgres:" + p.table }

func (p *Postgres) Load(ctx context.Context) ([]ingestion.Document, error) {
	if !tableName.MatchString(p.table) {
		return nil, fmt.Errorf("invalid table name %q: %w", p.table, apperrors.ErrInvalidInput)
	}
	query := fmt.Sprintf(`SELECT id, title, content_type, body FROM %s ORDER BY id`, p.table)
	rows, err := p.db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w: %w", apperrors.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	docs := make([]ingestion.Document, 0)
	for rows.Next() {
		var (
			id, title   string
			contentType sql.NullString
			body        []byte
		)
		if err := rows.Scan(&id, &title, &contentType, &body); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docs = append(docs, ingestion.Document{
			ID:    id,
			Title: title,
			Name:  id + "." + extOrDefault(contentType),
			Raw:   body,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}
	p.logger.Info("documents loaded", "count", len(docs))
	return docs, nil
}

func extOrDefault(ct sql.NullString) string {
	if !ct.Valid || ct.String == "" {
		return "txt"
	}
	return ct.String
}
