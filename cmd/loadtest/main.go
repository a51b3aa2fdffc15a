// Command loadtest drives a running searcher with a mix of searches and
// prefix lookups and prints latency and outcome statistics.
//
// Without --queries the workload is seeded from the service's own
// vocabulary through /api/v1/terms, including truncated terms that exercise
// prefix fallback.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	PrefixEvery int
	Queries     []string
}

func main() {
	baseURL := flag.StringP("url", "u", "http://localhost:8080", "base URL of the search service")
	concurrency := flag.IntP("concurrency", "n", 10, "number of concurrent workers")
	duration := flag.DurationP("duration", "t", 30*time.Second, "test duration")
	queriesFile := flag.String("queries", "", "file with one query per line")
	prefixEvery := flag.Int("prefix-every", 5, "send a prefix lookup every N requests per worker (0 disables)")
	flag.Parse()

	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        *concurrency * 2,
			MaxIdleConnsPerHost: *concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	var queries []string
	var err error
	if *queriesFile != "" {
		queries, err = readQueries(*queriesFile)
	} else {
		queries, err = seedQueries(context.Background(), client, *baseURL)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "preparing queries: %v\n", err)
		os.Exit(1)
	}
	if len(queries) == 0 {
		fmt.Fprintln(os.Stderr, "no queries to send; is the index empty?")
		os.Exit(1)
	}

	cfg := Config{
		BaseURL:     strings.TrimRight(*baseURL, "/"),
		Concurrency: *concurrency,
		Duration:    *duration,
		PrefixEvery: *prefixEvery,
		Queries:     queries,
	}

	fmt.Println("=== Search Engine Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Queries:     %d unique\n", len(cfg.Queries))
	fmt.Println()

	start := time.Now()
	stats := run(cfg, client)
	if !stats.Report(os.Stdout, time.Since(start)) {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the service running?")
		os.Exit(1)
	}
}

func run(cfg Config, client *http.Client) *Stats {
	stats := NewStats()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Concurrency; w++ {
		g.Go(func() error {
			for i := w; ctx.Err() == nil; i++ {
				q := cfg.Queries[i%len(cfg.Queries)]
				if cfg.PrefixEvery > 0 && i%cfg.PrefixEvery == 0 {
					send(ctx, client, stats, cfg.BaseURL+"/api/v1/terms?prefix="+url.QueryEscape(prefixOf(q)), false)
					continue
				}
				send(ctx, client, stats, cfg.BaseURL+"/api/v1/search?limit=10&q="+url.QueryEscape(q), true)
			}
			return nil
		})
	}
	g.Wait()
	return stats
}

func send(ctx context.Context, client *http.Client, stats *Stats, target string, search bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		stats.Record(0, 0, "", err)
		return
	}
	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)
	if err != nil {
		if ctx.Err() == nil {
			stats.Record(latency, 0, "", err)
		}
		return
	}
	defer resp.Body.Close()

	var outcome string
	if search && resp.StatusCode == http.StatusOK {
		var body struct {
			Outcome string `json:"outcome"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) == nil {
			outcome = body.Outcome
		}
	}
	io.Copy(io.Discard, resp.Body)
	stats.Record(latency, resp.StatusCode, outcome, nil)
}

// seedQueries builds a workload from the served vocabulary: single terms,
// adjacent term pairs and truncated terms.
func seedQueries(ctx context.Context, client *http.Client, baseURL string) ([]string, error) {
	var terms []string
	for c := 'a'; c <= 'z'; c++ {
		target := fmt.Sprintf("%s/api/v1/terms?prefix=%c", strings.TrimRight(baseURL, "/"), c)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching vocabulary: %w", err)
		}
		var body struct {
			Terms []string `json:"terms"`
		}
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetching vocabulary: status %d", resp.StatusCode)
		}
		if err != nil {
			return nil, fmt.Errorf("decoding vocabulary: %w", err)
		}
		terms = append(terms, body.Terms...)
	}
	return buildQueries(terms, 500), nil
}

func buildQueries(terms []string, limit int) []string {
	queries := make([]string, 0, limit)
	for i, term := range terms {
		if len(queries) >= limit {
			break
		}
		queries = append(queries, term)
		if i+1 < len(terms) {
			queries = append(queries, term+" "+terms[i+1])
		}
		if r := []rune(term); len(r) > 4 {
			queries = append(queries, string(r[:len(r)-2]))
		}
	}
	if len(queries) > limit {
		queries = queries[:limit]
	}
	return queries
}

// prefixOf returns the first two runes of the first word of q.
func prefixOf(q string) string {
	fields := strings.Fields(q)
	if len(fields) == 0 {
		return q
	}
	r := []rune(fields[0])
	return string(r[:min(2, len(r))])
}

func readQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening queries file: %w", err)
	}
	defer f.Close()
	var queries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			queries = append(queries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading queries file: %w", err)
	}
	return queries, nil
}
