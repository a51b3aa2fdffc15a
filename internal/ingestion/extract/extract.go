// Package extract turns raw document bytes into a title and the visible,
// human-readable text to be tokenised. HTML is parsed with x/net/html and
// Markdown with goldmark; everything else is treated as plain text.
//
// Extraction never fails. Content that cannot be parsed yields the
// placeholder title and empty text so an index build is never aborted by a
// single bad document.
package extract

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/ingestion"
)

// Func extracts a title and visible text from raw content. An empty title
// means the content carries none.
type Func func(raw []byte) (title string, text string, err error)

// Extractor dispatches on file extension.
type Extractor struct {
	byExt  map[string]Func
	logger *slog.Logger
}

// New returns an Extractor that knows HTML, Markdown and plain text.
func New() *Extractor {
	e := &Extractor{
		byExt:  make(map[string]Func),
		logger: slog.Default().With("component", "extractor"),
	}
	e.Register(HTML, ".html", ".htm", ".xhtml")
	e.Register(Markdown, ".md", ".markdown")
	e.Register(PlainText, ".txt", ".text")
	return e
}

// Register maps extensions (with leading dot) to fn, replacing any previous
// mapping.
func (e *Extractor) Register(fn Func, exts ...string) {
	for _, ext := range exts {
		e.byExt[strings.ToLower(ext)] = fn
	}
}

// Parse picks a parser from the extension of name. Unknown extensions are
// read as plain text.
func (e *Extractor) Parse(name string, raw []byte) (string, string) {
	fn, ok := e.byExt[strings.ToLower(filepath.Ext(name))]
	if !ok {
		fn = PlainText
	}
	title, text, err := fn(raw)
	if err != nil {
		e.logger.Warn("document could not be parsed",
			"name", name,
			"error", err,
		)
		return ingestion.UnreadableTitle, ""
	}
	return strings.TrimSpace(title), text
}

// PlainText returns the content as text with no title. Invalid UTF-8
// sequences are dropped.
func PlainText(raw []byte) (string, string, error) {
	return "", collapse(strings.ToValidUTF8(string(raw), "")), nil
}

// collapse joins whitespace-separated fields with single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func joinChunks(chunks [][]byte) string {
	return collapse(string(bytes.Join(chunks, []byte(" "))))
}
