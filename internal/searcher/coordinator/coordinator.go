// Package coordinator ties the document parser and tokenizer to the inverted
// index. A Builder ingests documents once; Build freezes it into a
// Coordinator that answers queries and is safe for concurrent readers.
package coordinator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/errors"
)

// Parser extracts a title and visible text from raw document content. It
// must not fail; unusable content yields an empty or placeholder result.
type Parser interface {
	Parse(name string, raw []byte) (title string, text string)
}

// Tokenizer turns text into normalised, stop-word filtered terms.
type Tokenizer interface {
	Terms(text string) []string
}

// Prepared is a parsed and tokenised document ready to be committed.
type Prepared struct {
	DocID  string
	Title  string
	Tokens []string
}

type Builder struct {
	parser    Parser
	tokenizer Tokenizer
	index     *index.InvertedIndex
	titles    map[string]string
	digest    hash.Hash
	frozen    bool
	logger    *slog.Logger
}

func NewBuilder(parser Parser, tok Tokenizer) *Builder {
	return &Builder{
		parser:    parser,
		tokenizer: tok,
		index:     index.NewInvertedIndex(),
		titles:    make(map[string]string),
		digest:    sha256.New(),
		logger:    slog.Default().With("component", "coordinator"),
	}
}

// Prepare parses and tokenises doc. It does not touch the index and may be
// called from several goroutines at once.
func (b *Builder) Prepare(doc ingestion.Document) Prepared {
	if doc.ReadErr != nil {
		return Prepared{DocID: doc.ID, Title: ingestion.UnreadableTitle}
	}
	name := doc.Name
	if name == "" {
		name = doc.ID
	}
	title, text := b.parser.Parse(name, doc.Raw)
	if title == "" {
		title = doc.Title
	}
	if title == "" {
		title = doc.ID
	}
	return Prepared{
		DocID:  doc.ID,
		Title:  title,
		Tokens: b.tokenizer.Terms(text),
	}
}

// Commit adds a prepared document to the index. Commits must not run
// concurrently with each other.
func (b *Builder) Commit(p Prepared) error {
	if b.frozen {
		return apperrors.ErrIndexFrozen
	}
	if p.DocID == "" {
		return fmt.Errorf("committing document: %w", apperrors.ErrInvalidInput)
	}
	if _, exists := b.titles[p.DocID]; exists {
		return fmt.Errorf("committing %q: %w", p.DocID, apperrors.ErrDuplicateDocument)
	}
	b.titles[p.DocID] = p.Title
	b.index.AddDocument(p.DocID, p.Tokens)
	b.hashDocument(p)
	b.logger.Debug("document indexed",
		"doc_id", p.DocID,
		"token_count", len(p.Tokens),
		"vocabulary", b.index.TermCount(),
	)
	return nil
}

// Add prepares and commits doc in one step.
func (b *Builder) Add(doc ingestion.Document) error {
	if b.frozen {
		return apperrors.ErrIndexFrozen
	}
	return b.Commit(b.Prepare(doc))
}

// Build freezes the builder and returns the read-only Coordinator. Further
// Add or Commit calls fail with ErrIndexFrozen.
func (b *Builder) Build() *Coordinator {
	b.frozen = true
	c := &Coordinator{
		tokenizer: b.tokenizer,
		index:     b.index,
		titles:    b.titles,
		build:     hex.EncodeToString(b.digest.Sum(nil)[:8]),
		logger:    b.logger,
	}
	b.logger.Info("index built",
		"documents", c.DocCount(),
		"vocabulary", c.VocabularySize(),
		"build", c.build,
	)
	return c
}

// hashDocument folds a committed document into the build fingerprint.
// Fields are NUL-separated so adjacent values cannot run together.
func (b *Builder) hashDocument(p Prepared) {
	b.digest.Write([]byte(p.DocID))
	b.digest.Write([]byte{0})
	b.digest.Write([]byte(p.Title))
	b.digest.Write([]byte{0})
	for _, tok := range p.Tokens {
		b.digest.Write([]byte(tok))
		b.digest.Write([]byte{0})
	}
	b.digest.Write([]byte{1})
}
