package index

import (
	"fmt"
	"slices"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/searcher/ranker"
)

func newTestIndex() *InvertedIndex {
	x := NewInvertedIndex()
	x.AddDocument("d1", []string{"data", "data", "analysis"})
	x.AddDocument("d2", []string{"data", "science"})
	return x
}

func TestSearchSingleTerm(t *testing.T) {
	x := newTestIndex()
	got := x.Search([]string{"data"})
	want := []ranker.ScoredDoc{{DocID: "d1", Score: 2}, {DocID: "d2", Score: 1}}
	if !slices.Equal(got, want) {
		t.Errorf("Search(data) = %v, want %v", got, want)
	}
}

func TestSearchIntersectsBeforeScoring(t *testing.T) {
	x := newTestIndex()
	got := x.Search([]string{"data", "science"})
	want := []ranker.ScoredDoc{{DocID: "d2", Score: 2}}
	if !slices.Equal(got, want) {
		t.Errorf("Search(data science) = %v, want %v", got, want)
	}

	got = x.Search([]string{"analysis", "science"})
	if len(got) != 0 {
		t.Errorf("Search(analysis science) = %v, want empty", got)
	}
}

func TestSearchMissingTermShortCircuits(t *testing.T) {
	x := NewInvertedIndex()
	x.AddDocument("d1", []string{"deep", "learning"})
	if got := x.Search([]string{"deep", "quantum"}); len(got) != 0 {
		t.Errorf("Search(deep quantum) = %v, want empty", got)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	x := newTestIndex()
	got := x.Search(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("Search(nil) = %#v, want empty slice", got)
	}
}

func TestSearchRepeatedTermCountsTwice(t *testing.T) {
	x := newTestIndex()
	got := x.Search([]string{"data", "data"})
	want := []ranker.ScoredDoc{{DocID: "d1", Score: 4}, {DocID: "d2", Score: 2}}
	if !slices.Equal(got, want) {
		t.Errorf("Search(data data) = %v, want %v", got, want)
	}
}

func TestSearchTieBreakFollowsIngestionOrder(t *testing.T) {
	x := NewInvertedIndex()
	x.AddDocument("zz", []string{"go"})
	x.AddDocument("aa", []string{"go"})
	x.AddDocument("mm", []string{"go"})
	got := x.Search([]string{"go"})
	ids := make([]string, 0, len(got))
	for _, d := range got {
		ids = append(ids, d.DocID)
	}
	if want := []string{"zz", "aa", "mm"}; !slices.Equal(ids, want) {
		t.Errorf("tie order = %v, want %v", ids, want)
	}
}

// Score of every returned document equals the sum of its per-term
// frequencies, and the returned set equals the intersection of the
// per-term posting sets.
func TestSearchProperties(t *testing.T) {
	vocab := []string{"alpha", "beta", "gamma", "delta"}
	x := NewInvertedIndex()
	for d := 0; d < 12; d++ {
		tokens := make([]string, 0)
		for i, term := range vocab {
			for n := 0; n < (d+i)%3; n++ {
				tokens = append(tokens, term)
			}
		}
		x.AddDocument(fmt.Sprintf("doc-%02d", d), tokens)
	}

	queries := [][]string{
		{"alpha"},
		{"alpha", "beta"},
		{"beta", "gamma", "delta"},
		{"alpha", "beta", "gamma", "delta"},
	}
	for _, q := range queries {
		expected := map[string]int{}
		first := true
		for _, term := range q {
			set := map[string]int{}
			for _, p := range x.Postings(term) {
				set[p.DocID] = p.Frequency
			}
			if first {
				for id, f := range set {
					expected[id] = f
				}
				first = false
				continue
			}
			for id := range expected {
				f, ok := set[id]
				if !ok {
					delete(expected, id)
					continue
				}
				expected[id] += f
			}
		}

		got := x.Search(q)
		if len(got) != len(expected) {
			t.Fatalf("Search(%v) returned %d docs, want %d", q, len(got), len(expected))
		}
		for i, d := range got {
			if expected[d.DocID] != d.Score {
				t.Errorf("Search(%v) %s score = %d, want %d", q, d.DocID, d.Score, expected[d.DocID])
			}
			if i > 0 && got[i-1].Score < d.Score {
				t.Errorf("Search(%v) not in descending order at %d", q, i)
			}
		}
	}
}

func TestTrieInLockstep(t *testing.T) {
	x := newTestIndex()
	x.AddDocument("d3", []string{"data", "analytics"})

	vocab := x.TermsWithPrefix("")
	if len(vocab) != x.TermCount() {
		t.Fatalf("trie holds %d terms, index holds %d", len(vocab), x.TermCount())
	}
	for _, term := range vocab {
		if !x.Contains(term) {
			t.Errorf("trie term %q missing from postings", term)
		}
		if !x.HasTerm(term) {
			t.Errorf("HasTerm(%q) = false", term)
		}
	}
	if got, ok := x.FirstWithPrefix("analy"); !ok || got != "analysis" {
		t.Errorf("FirstWithPrefix(analy) = %q, %v", got, ok)
	}
}

func TestPostings(t *testing.T) {
	x := newTestIndex()
	got := x.Postings("data")
	want := PostingList{{DocID: "d1", Frequency: 2}, {DocID: "d2", Frequency: 1}}
	if !slices.Equal(got, want) {
		t.Errorf("Postings(data) = %v, want %v", got, want)
	}
	if !slices.Equal(got.DocIDs(), []string{"d1", "d2"}) {
		t.Errorf("DocIDs() = %v", got.DocIDs())
	}
	if x.Postings("missing") != nil {
		t.Error("expected nil postings for unknown term")
	}
}

func TestReAddAccumulates(t *testing.T) {
	x := NewInvertedIndex()
	x.AddDocument("d1", []string{"go"})
	x.AddDocument("d1", []string{"go"})
	if got := x.Postings("go"); len(got) != 1 || got[0].Frequency != 2 {
		t.Errorf("Postings(go) = %v", got)
	}
	if x.DocCount() != 1 {
		t.Errorf("DocCount() = %d, want 1", x.DocCount())
	}
}

func TestEmptyDocumentIsCounted(t *testing.T) {
	x := NewInvertedIndex()
	x.AddDocument("empty", nil)
	if x.DocCount() != 1 || x.TermCount() != 0 {
		t.Errorf("DocCount=%d TermCount=%d", x.DocCount(), x.TermCount())
	}
}
