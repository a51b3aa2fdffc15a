package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/errors"
)

// Dir loads the regular files of one directory whose extension is in the
// allowed set. Files are returned sorted by name and identified by it.
type Dir struct {
	path   string
	exts   map[string]struct{}
	logger *slog.Logger
}

func NewDir(path string, extensions []string) *Dir {
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = struct{}{}
	}
	return &Dir{
		path:   path,
		exts:   exts,
		logger: slog.Default().With("component", "source", "dir", path),
	}
}

func (d *Dir) Name() string { return "dir:" + d.path }

// Load never fails on a single file: a file that cannot be read becomes a
// Document carrying ReadErr. Only an unreadable directory is an error.
func (d *Dir) Load(ctx context.Context) ([]ingestion.Document, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("reading data directory %s: %w: %w", d.path, apperrors.ErrSourceUnavailable, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := d.exts[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	docs := make([]ingestion.Document, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc := ingestion.Document{ID: name, Name: name}
		raw, err := os.ReadFile(filepath.Join(d.path, name))
		if err != nil {
			d.logger.Warn("document unreadable", "file", name, "error", err)
			doc.ReadErr = err
		} else {
			doc.Raw = raw
		}
		docs = append(docs, doc)
	}
	d.logger.Info("documents listed", "count", len(docs))
	return docs, nil
}
