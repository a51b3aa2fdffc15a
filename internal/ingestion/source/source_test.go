package source

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/errors"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDirLoadFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.txt":     "bravo",
		"a.HTML":    "<title>Alpha</title>",
		"c.md":      "# skipped",
		"notes.pdf": "binary",
	})
	if err := os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	docs, err := NewDir(dir, []string{".txt", "html"}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	if want := []string{"a.HTML", "b.txt"}; !slices.Equal(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
	if string(docs[1].Raw) != "bravo" || docs[1].Name != "b.txt" {
		t.Errorf("doc = %+v", docs[1])
	}
}

func TestDirLoadUnreadableFile(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced")
	}
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"locked.txt": "secret", "open.txt": "fine"})
	if err := os.Chmod(filepath.Join(dir, "locked.txt"), 0o000); err != nil {
		t.Fatal(err)
	}

	docs, err := NewDir(dir, []string{".txt"}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(docs) != 2 || docs[0].ReadErr == nil || docs[1].ReadErr != nil {
		t.Errorf("docs = %+v", docs)
	}
}

func TestDirLoadMissingDirectory(t *testing.T) {
	_, err := NewDir(filepath.Join(t.TempDir(), "absent"), []string{".txt"}).Load(context.Background())
	if !errors.Is(err, apperrors.ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestStaticCopies(t *testing.T) {
	s := Static{{ID: "one"}, {ID: "two"}}
	docs, err := s.Load(context.Background())
	if err != nil || len(docs) != 2 {
		t.Fatalf("Load() = %v, %v", docs, err)
	}
	docs[0].ID = "changed"
	if s[0].ID != "one" {
		t.Error("Load should not expose the backing slice")
	}
}

func TestOpen(t *testing.T) {
	src, closeFn, err := Open(context.Background(), config.SourceConfig{Kind: "dir", DataDir: "pages"}, config.PostgresConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	if src.Name() != "dir:pages" {
		t.Errorf("Name() = %q", src.Name())
	}
	if _, _, err := Open(context.Background(), config.SourceConfig{Kind: "s3"}, config.PostgresConfig{}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestPostgresRejectsBadTableName(t *testing.T) {
	p := NewPostgres(nil, "documents; DROP TABLE x")
	if _, err := p.Load(context.Background()); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestExtOrDefault(t *testing.T) {
	doc := ingestion.Document{ID: "row", Name: "row." + extOrDefault(sql.NullString{})}
	if doc.Ext() != ".txt" {
		t.Errorf("Ext() = %q", doc.Ext())
	}
	if got := extOrDefault(sql.NullString{String: "html", Valid: true}); got != "html" {
		t.Errorf("extOrDefault(html) = %q", got)
	}
}
