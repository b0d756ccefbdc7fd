package token

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache stores verified claims keyed by token hash. Implementations are
// best-effort: a miss only costs a signature check, so they may drop
// entries at any time and tolerate racing writers.
type Cache interface {
	Get(key string) (*Claims, bool)
	Set(key string, claims *Claims)
}

const defaultCacheSize = 4096

// MemoryCache is an in-process TTL LRU cache.
type MemoryCache struct {
	lru *lru.LRU[string, *Claims]
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		lru: lru.NewLRU[string, *Claims](defaultCacheSize, nil, ttl),
	}
}

func (c *MemoryCache) Get(key string) (*Claims, bool) {
	return c.lru.Get(key)
}

func (c *MemoryCache) Set(key string, claims *Claims) {
	c.lru.Add(key, claims)
}

// NopCache disables verification caching.
type NopCache struct{}

func (NopCache) Get(string) (*Claims, bool) { return nil, false }
func (NopCache) Set(string, *Claims)        {}
