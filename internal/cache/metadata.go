// Package cache keeps token metadata locally so repeated lookups for the
// same contract do not hit the network. Entries expire on a TTL and the
// cache is bounded; stale or evicted entries are simply refetched.
package cache

import (
	"context"
	"fmt"
	"time"

	"dappstate/internal/metrics"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// TokenMetadata is the cached shape of an ERC-20-style token description.
type TokenMetadata struct {
	Symbol    string
	Name      string
	Decimals  uint8
	FetchedAt time.Time
}

// FetchFunc resolves metadata from the authoritative source (chain query,
// registry, ...). Owned entirely by the caller.
type FetchFunc func(ctx context.Context, key string) (TokenMetadata, error)

type MetadataCache struct {
	lru   *expirable.LRU[string, TokenMetadata]
	group singleflight.Group
}

func NewMetadataCache(maxEntries int, ttl time.Duration) *MetadataCache {
	if maxEntries <= 0 {
		maxEntries = 512
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MetadataCache{
		lru: expirable.NewLRU[string, TokenMetadata](maxEntries, nil, ttl),
	}
}

// Get returns the cached metadata for key, if fresh.
func (c *MetadataCache) Get(key string) (TokenMetadata, bool) {
	md, ok := c.lru.Get(key)
	if ok {
		metrics.CacheHitsTotal.Inc()
	}
	return md, ok
}

// GetOrFetch returns the cached value or resolves it via fetch and stores the
// result. Concurrent callers for the same key share one fetch. Failed fetches
// are not cached.
func (c *MetadataCache) GetOrFetch(ctx context.Context, key string, fetch FetchFunc) (TokenMetadata, error) {
	if md, ok := c.lru.Get(key); ok {
		metrics.CacheHitsTotal.Inc()
		return md, nil
	}
	metrics.CacheMissesTotal.Inc()

	v, err, _ := c.group.Do(key, func() (any, error) {
		if md, ok := c.lru.Get(key); ok {
			return md, nil
		}
		md, err := fetch(ctx, key)
		if err != nil {
			return TokenMetadata{}, fmt.Errorf("fetch metadata %q: %w", key, err)
		}
		if md.FetchedAt.IsZero() {
			md.FetchedAt = time.Now()
		}
		c.lru.Add(key, md)
		return md, nil
	})
	if err != nil {
		return TokenMetadata{}, err
	}
	return v.(TokenMetadata), nil
}

// Invalidate drops a single key.
func (c *MetadataCache) Invalidate(key string) {
	c.lru.Remove(key)
}

func (c *MetadataCache) Len() int {
	return c.lru.Len()
}
