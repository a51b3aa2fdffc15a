// Package cli is the interactive query loop of the searchengine binary.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/searcher/coordinator"
)

const (
	prompt         = "Enter search query: "
	prefixCommand  = "prefix "
	msgExit        = "Exiting search engine."
	msgNoPrefix    = "No terms found with that prefix."
	msgEmptyQuery  = "Empty query. Please enter a valid search."
	msgNoMatch     = "No matching documents found."
	msgPrefixTitle = "Trie Prefix Matches:"
	msgResultTitle = "Search Results:"
)

// Searcher is what the loop queries.
type Searcher interface {
	Query(query string) *coordinator.Response
	PrefixSearch(prefix string) []string
}

type REPL struct {
	searcher  Searcher
	collector *analytics.Collector
	limit     int
}

// New returns a REPL over s. limit caps printed rows; 0 prints all.
// collector may be nil.
func New(s Searcher, collector *analytics.Collector, limit int) *REPL {
	return &REPL{
		searcher:  s,
		collector: collector,
		limit:     limit,
	}
}

// Run reads commands from in until "exit", end of input or ctx is done.
func (r *REPL) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	w := bufio.NewWriter(out)
	defer w.Flush()

	fmt.Fprintln(w, "Search Engine Ready.")
	fmt.Fprintln(w, "Type a query OR:")
	fmt.Fprintln(w, "  prefix <text>   -> list indexed terms starting with <text>")
	fmt.Fprintln(w, "  exit            -> quit the program")
	fmt.Fprintln(w)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(w, prompt)
		if err := w.Flush(); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}
		if !scanner.Scan() {
			fmt.Fprintln(w)
			fmt.Fprintln(w, msgExit)
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			return nil
		}
		if !r.handle(w, strings.TrimSpace(scanner.Text())) {
			fmt.Fprintln(w, msgExit)
			return nil
		}
	}
}

// handle executes one line and reports whether the loop should continue.
func (r *REPL) handle(w io.Writer, line string) bool {
	lower := strings.ToLower(line)
	switch {
	case lower == "exit":
		return false
	case strings.HasPrefix(lower, prefixCommand):
		r.prefix(w, line[len(prefixCommand):])
	case line == "":
		fmt.Fprintln(w, msgEmptyQuery)
		fmt.Fprintln(w)
	default:
		r.search(w, line)
	}
	return true
}

func (r *REPL) prefix(w io.Writer, prefix string) {
	start := time.Now()
	matches := r.searcher.PrefixSearch(prefix)
	r.track(analytics.SearchEvent{
		Type:          analytics.EventPrefix,
		Query:         strings.TrimSpace(prefix),
		TotalHits:     len(matches),
		Returned:      len(matches),
		LatencyMicros: time.Since(start).Microseconds(),
	})
	if len(matches) == 0 {
		fmt.Fprintln(w, msgNoPrefix)
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintln(w, msgPrefixTitle)
	for _, term := range matches {
		fmt.Fprintf(w, "- %s\n", term)
	}
	fmt.Fprintln(w)
}

func (r *REPL) search(w io.Writer, query string) {
	start := time.Now()
	resp := r.searcher.Query(query)
	page := resp.Page(r.limit)
	r.track(analytics.SearchEvent{
		Type:          analytics.EventSearch,
		Query:         query,
		Outcome:       string(resp.Outcome),
		Fallbacks:     resp.Fallbacks(),
		TotalHits:     resp.TotalHits,
		Returned:      len(page.Results),
		LatencyMicros: time.Since(start).Microseconds(),
	})

	switch resp.Outcome {
	case coordinator.OutcomeEmptyQuery:
		fmt.Fprintln(w, msgEmptyQuery)
		fmt.Fprintln(w)
		return
	case coordinator.OutcomeUnresolved, coordinator.OutcomeNoMatch:
		fmt.Fprintln(w, msgNoMatch)
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintln(w)
	if resp.Fallbacks() > 0 {
		fmt.Fprintf(w, "Showing results for: %s\n", substitutions(resp.Terms))
	}
	fmt.Fprintln(w, msgResultTitle)
	for _, res := range page.Results {
		fmt.Fprintf(w, "- %s | %s | Score = %d\n", res.DocumentID, res.Title, res.Score)
	}
	if len(page.Results) < resp.TotalHits {
		fmt.Fprintf(w, "(%d of %d matching documents shown)\n", len(page.Results), resp.TotalHits)
	}
	fmt.Fprintln(w)
}

// substitutions renders the resolved query, marking replaced tokens.
func substitutions(terms []coordinator.Resolution) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		if t.Fallback {
			parts = append(parts, fmt.Sprintf("%s (from %q)", t.Term, t.Token))
			continue
		}
		parts = append(parts, t.Term)
	}
	return strings.Join(parts, " ")
}

func (r *REPL) track(event analytics.SearchEvent) {
	if r.collector == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	r.collector.Track(event)
}
