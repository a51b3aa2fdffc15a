// Package index holds the in-memory inverted index: a term to posting-set
// map kept in lockstep with a trie of the same terms.
package index

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/indexer/trie"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/searcher/ranker"
)

// InvertedIndex maps each term to the documents containing it and how often.
// Every key of the posting map is present in the trie and vice versa.
//
// The index is built by a single goroutine and read-only afterwards; it does
// no locking of its own.
type InvertedIndex struct {
	postings map[string]map[string]int
	terms    *trie.Trie
	docSeq   map[string]int
}

func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{
		postings: make(map[string]map[string]int),
		terms:    trie.New(),
		docSeq:   make(map[string]int),
	}
}

// AddDocument counts every token against docID. Adding the same docID twice
// accumulates counts rather than replacing them.
func (x *InvertedIndex) AddDocument(docID string, tokens []string) {
	if _, seen := x.docSeq[docID]; !seen {
		x.docSeq[docID] = len(x.docSeq)
	}
	for _, token := range tokens {
		if token == "" {
			continue
		}
		docs, exists := x.postings[token]
		if !exists {
			x.terms.Insert(token)
			docs = make(map[string]int)
			x.postings[token] = docs
		}
		docs[docID]++
	}
}

// Search runs a conjunctive query. Only documents present under every term
// are scored; a document's score is the sum of its frequency for each query
// term, repeated terms included. A term missing from the index empties the
// whole result.
func (x *InvertedIndex) Search(terms []string) []ranker.ScoredDoc {
	if len(terms) == 0 {
		return []ranker.ScoredDoc{}
	}
	lists := make([]map[string]int, 0, len(terms))
	for _, term := range terms {
		docs, exists := x.postings[term]
		if !exists {
			return []ranker.ScoredDoc{}
		}
		lists = append(lists, docs)
	}

	candidates := intersect(lists)
	if len(candidates) == 0 {
		return []ranker.ScoredDoc{}
	}
	scores := make(map[string]int, len(candidates))
	for _, docs := range lists {
		for docID := range candidates {
			scores[docID] += docs[docID]
		}
	}
	return ranker.Rank(scores, x.sequence, 0)
}

// Contains reports whether term is a key of the index.
func (x *InvertedIndex) Contains(term string) bool {
	_, exists := x.postings[term]
	return exists
}

// Postings returns the posting list for term ordered by ingestion sequence.
func (x *InvertedIndex) Postings(term string) PostingList {
	docs, exists := x.postings[term]
	if !exists {
		return nil
	}
	result := make(PostingList, 0, len(docs))
	for docID, freq := range docs {
		result = append(result, Posting{DocID: docID, Frequency: freq})
	}
	sort.Slice(result, func(i, j int) bool {
		return x.docSeq[result[i].DocID] < x.docSeq[result[j].DocID]
	})
	return result
}

// TermsWithPrefix delegates to the term trie.
func (x *InvertedIndex) TermsWithPrefix(prefix string) []string {
	return x.terms.WithPrefix(prefix)
}

// FirstWithPrefix returns the first vocabulary term starting with prefix in
// rune order.
func (x *InvertedIndex) FirstWithPrefix(prefix string) (string, bool) {
	return x.terms.First(prefix)
}

// HasTerm checks the trie directly.
func (x *InvertedIndex) HasTerm(term string) bool {
	return x.terms.Contains(term)
}

func (x *InvertedIndex) TermCount() int {
	return len(x.postings)
}

func (x *InvertedIndex) DocCount() int {
	return len(x.docSeq)
}

func (x *InvertedIndex) sequence(docID string) int {
	return x.docSeq[docID]
}

// intersect returns the documents present in every list, starting from the
// smallest one.
func intersect(lists []map[string]int) map[string]struct{} {
	smallest := 0
	for i, docs := range lists {
		if len(docs) < len(lists[smallest]) {
			smallest = i
		}
	}
	candidates := make(map[string]struct{}, len(lists[smallest]))
	for docID := range lists[smallest] {
		candidates[docID] = struct{}{}
	}
	for i, docs := range lists {
		if i == smallest {
			continue
		}
		for docID := range candidates {
			if _, ok := docs[docID]; !ok {
				delete(candidates, docID)
			}
		}
		if len(candidates) == 0 {
			break
		}
	}
	return candidates
}
