package providers

import (
	"crypto/sha1"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Cache is a best-effort TTL cache shared by the slower providers. Only
// normalized results are stored, keyed by a hash of the input so the raw
// email or username never sits in memory longer than one request. A nil
// *Cache disables caching entirely.
type Cache struct {
	cache *ristretto.Cache
}

func NewCache() (*Cache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{cache: cache}, nil
}

func cacheKey(scope, input string) string {
	return fmt.Sprintf("%s:%x", scope, sha1.Sum([]byte(input)))
}

func (c *Cache) get(key string) (interface{}, bool) {
	if c == nil || c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *Cache) set(key string, value interface{}, ttl time.Duration) {
	if c == nil || c.cache == nil {
		return
	}
	// Set is async and may drop entries under pressure; that is fine for a
	// cache that only exists to absorb repeat lookups.
	c.cache.SetWithTTL(key, value, 1, ttl)
}
