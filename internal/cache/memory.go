package cache

import (
	"context"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache implements an in-process cache on go-cache (RWMutex-guarded map)
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if val, found := c.cache.Get(key); found {
		return val.([]byte), true, nil
	}
	return nil, false, nil
}

// Set stores a value in the cache with the given TTL
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	switch {
	case ttl == NoExpiration:
		c.cache.Set(key, value, gocache.NoExpiration)
	case ttl <= 0:
		c.cache.Set(key, value, gocache.DefaultExpiration)
	default:
		c.cache.Set(key, value, ttl)
	}
	return nil
}

// Keys lists the unexpired keys with the given prefix, sorted
func (c *MemoryCache) Keys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
