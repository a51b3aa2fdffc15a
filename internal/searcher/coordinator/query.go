package coordinator

import (
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/indexer/tokenizer"
)

// Outcome classifies how a query ended. Only OutcomeMatched carries results;
// the others exist so callers can word their messages.
type Outcome string

const (
	OutcomeEmptyQuery Outcome = "empty_query"
	OutcomeUnresolved Outcome = "unresolved"
	OutcomeNoMatch    Outcome = "no_match"
	OutcomeMatched    Outcome = "matched"
)

// Result is one user-facing search row.
type Result struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Score      int    `json:"score"`
}

// Resolution records which vocabulary term a query token was mapped to.
type Resolution struct {
	Token    string `json:"token"`
	Term     string `json:"term"`
	Fallback bool   `json:"fallback"`
}

type Response struct {
	Query     string       `json:"query"`
	Outcome   Outcome      `json:"outcome"`
	Tokens    []string     `json:"tokens"`
	Terms     []Resolution `json:"terms"`
	TotalHits int          `json:"total_hits"`
	Results   []Result     `json:"results"`
}

// Page returns a copy of r holding at most limit results. TotalHits keeps
// the full match count. A limit below one keeps every result.
func (r *Response) Page(limit int) *Response {
	out := *r
	if limit > 0 && len(r.Results) > limit {
		out.Results = r.Results[:limit:limit]
	}
	return &out
}

// Fallbacks counts tokens that were replaced by a prefix match.
func (r *Response) Fallbacks() int {
	n := 0
	for _, res := range r.Terms {
		if res.Fallback {
			n++
		}
	}
	return n
}

// Coordinator answers queries over a frozen index. It holds no locks; none
// of its methods mutate state.
type Coordinator struct {
	tokenizer Tokenizer
	index     *index.InvertedIndex
	titles    map[string]string
	build     string
	logger    *slog.Logger
}

// Fingerprint identifies the indexed content: documents, titles and tokens in
// commit order. Two builds over the same corpus and tokenizer settings
// share it; any change to them yields a different value.
func (c *Coordinator) Fingerprint() string {
	return c.build
}

// Search runs a conjunctive query and returns rows in descending score
// order. Empty and unresolvable queries return an empty slice.
func (c *Coordinator) Search(query string) []Result {
	return c.Query(query).Results
}

// Query is Search with the tokenisation and term resolution reported.
func (c *Coordinator) Query(query string) *Response {
	resp := &Response{
		Query:   query,
		Tokens:  c.tokenizer.Terms(query),
		Terms:   []Resolution{},
		Results: []Result{},
	}
	if len(resp.Tokens) == 0 {
		resp.Outcome = OutcomeEmptyQuery
		return resp
	}

	resolved, ok := c.Resolve(resp.Tokens)
	if !ok {
		resp.Outcome = OutcomeUnresolved
		c.logger.Debug("query term unresolved", "query", query, "tokens", resp.Tokens)
		return resp
	}
	resp.Terms = resolved

	terms := make([]string, 0, len(resolved))
	for _, r := range resolved {
		terms = append(terms, r.Term)
	}
	for _, doc := range c.index.Search(terms) {
		resp.Results = append(resp.Results, Result{
			DocumentID: doc.DocID,
			Title:      c.Title(doc.DocID),
			Score:      doc.Score,
		})
	}
	resp.TotalHits = len(resp.Results)
	if len(resp.Results) == 0 {
		resp.Outcome = OutcomeNoMatch
	} else {
		resp.Outcome = OutcomeMatched
	}
	return resp
}

// Resolve maps every token to a vocabulary term: the token itself when it
// is indexed, otherwise the first term in rune order that has the token as
// a prefix. If any token has neither, ok is false.
func (c *Coordinator) Resolve(tokens []string) ([]Resolution, bool) {
	resolved := make([]Resolution, 0, len(tokens))
	for _, token := range tokens {
		if c.index.Contains(token) {
			resolved = append(resolved, Resolution{Token: token, Term: token})
			continue
		}
		term, found := c.index.FirstWithPrefix(token)
		if !found {
			return nil, false
		}
		resolved = append(resolved, Resolution{Token: token, Term: term, Fallback: true})
	}
	return resolved, true
}

// PrefixSearch lists vocabulary terms starting with prefix after trimming
// and lowercasing it. An empty prefix returns nothing rather than the whole
// vocabulary.
func (c *Coordinator) PrefixSearch(prefix string) []string {
	prefix = tokenizer.Normalize(prefix)
	if prefix == "" {
		return []string{}
	}
	return c.index.TermsWithPrefix(prefix)
}

// Title returns the recorded title of docID, or docID itself.
func (c *Coordinator) Title(docID string) string {
	if title, ok := c.titles[docID]; ok && title != "" {
		return title
	}
	return docID
}

// VocabularySize is the number of distinct indexed terms.
func (c *Coordinator) VocabularySize() int {
	return c.index.TermCount()
}

func (c *Coordinator) DocCount() int {
	return c.index.DocCount()
}

// Postings exposes the posting list of an exact term.
func (c *Coordinator) Postings(term string) index.PostingList {
	return c.index.Postings(term)
}
