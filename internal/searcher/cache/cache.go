// Package cache keeps recent search responses in Redis so repeated queries
// skip tokenisation and intersection. A nil *QueryCache is valid and caches
// nothing, which is how the server runs without Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/internal/searcher/coordinator"
	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/config"
	pkgredis "github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/redis"
)

const keyPrefix = "search:"

// Store is the subset of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type QueryCache struct {
	store  Store
	cfg    config.RedisConfig
	group  singleflight.Group
	guard  *guard
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
	errors atomic.Int64
}

// New returns a cache over store. A nil store yields a nil cache.
func New(store Store, cfg config.RedisConfig) *QueryCache {
	if store == nil {
		return nil
	}
	return &QueryCache{
		store:  store,
		cfg:    cfg,
		guard:  newGuard(5, 30*time.Second),
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get looks up the response cached for query and limit under the index
// identified by build.
func (c *QueryCache) Get(ctx context.Context, build, query string, limit int) (*coordinator.Response, bool) {
	if c == nil {
		return nil, false
	}
	if !c.guard.allow() {
		c.misses.Add(1)
		return nil, false
	}
	key := buildKey(build, query, limit)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if pkgredis.IsNilError(err) {
			c.guard.success()
			c.misses.Add(1)
			return nil, false
		}
		c.failed("get", key, err)
		c.misses.Add(1)
		return nil, false
	}
	c.guard.success()
	var resp coordinator.Response
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", query, "key", key)
	return &resp, true
}

func (c *QueryCache) Set(ctx context.Context, build, query string, limit int, resp *coordinator.Response) {
	if c == nil || !c.guard.allow() {
		return
	}
	key := buildKey(build, query, limit)
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.failed("set", key, err)
		return
	}
	c.guard.success()
}

// GetOrCompute returns the cached response or runs computeFn, collapsing
// concurrent misses for the same key into one computation. The boolean
// reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	build string,
	query string,
	limit int,
	computeFn func() (*coordinator.Response, error),
) (*coordinator.Response, bool, error) {
	if c == nil {
		resp, err := computeFn()
		return resp, false, err
	}
	if resp, ok := c.Get(ctx, build, query, limit); ok {
		return resp, true, nil
	}
	key := buildKey(build, query, limit)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		resp, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, build, query, limit, resp)
		return resp, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*coordinator.Response), false, nil
}

// Invalidate deletes every cached response.
func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	if c == nil {
		return 0, nil
	}
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

// Stats reports hit, miss and store error counts since start.
type Stats struct {
	Enabled bool  `json:"enabled"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Errors  int64 `json:"errors"`
}

func (c *QueryCache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{
		Enabled: true,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Errors:  c.errors.Load(),
	}
}

func (c *QueryCache) failed(op, key string, err error) {
	c.errors.Add(1)
	if c.guard.failure() {
		c.logger.Warn("cache disabled after repeated failures",
			"op", op,
			"cooldown", c.guard.cooldown,
			"error", err,
		)
		return
	}
	c.logger.Error("cache "+op+" failed", "key", key, "error", err)
}

// buildKey hashes the index fingerprint, the lowercased and
// whitespace-normalised query, and the limit. Token order is kept because
// it decides the order of the reported term resolutions. Entries written
// against one build are never read back against another.
func buildKey(build, query string, limit int) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	raw := fmt.Sprintf("build=%s:%s:limit=%d", build, normalized, limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
