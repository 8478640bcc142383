// Package cache holds a Redis-backed read cache for per-article highlight
// listings. The cache is strictly an accelerator: a nil client, a miss, or
// any Redis error all fall through to the database.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/newsmarks/internal/highlight"
	"github.com/redis/go-redis/v9"
)

// HighlightCache caches ListByArticle results keyed by user and article.
type HighlightCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to Redis at addr. An empty addr returns a disabled cache on
// which every operation is a no-op.
func New(addr, password string, ttl time.Duration) *HighlightCache {
	if addr == "" {
		return &HighlightCache{}
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &HighlightCache{rdb: rdb, ttl: ttl}
}

func key(userID, articleURL string) string {
	return fmt.Sprintf("highlights:%s:%s", userID, articleURL)
}

// Get returns the cached listing and true on a hit.
func (c *HighlightCache) Get(ctx context.Context, userID, articleURL string) ([]highlight.Highlight, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key(userID, articleURL)).Bytes()
	if err != nil {
		return nil, false
	}
	var out []highlight.Highlight
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return out, true
}

// Set stores a listing for the configured TTL. Errors are swallowed.
func (c *HighlightCache) Set(ctx context.Context, userID, articleURL string, hs []highlight.Highlight) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(hs)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key(userID, articleURL), data, c.ttl).Err()
}

// Invalidate drops the cached listing after a write to the article.
func (c *HighlightCache) Invalidate(ctx context.Context, userID, articleURL string) {
	if c == nil || c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, key(userID, articleURL)).Err()
}

// Close releases the Redis connection.
func (c *HighlightCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
