package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Extraction output for a document is stable across a working session;
// a day bounds staleness without re-extracting inside one.
const defaultTTL = 24 * time.Hour

// MemoryCache keeps extraction responses in process memory. It derives
// keys from the document itself and applies one TTL to every entry. Good
// enough for a CLI run; anything longer-lived belongs to a store outside
// this tool.
type MemoryCache struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewMemoryCache creates a memory cache. A non-positive ttl falls back to
// the package default.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryCache{cache: gocache.New(ttl, ttl), ttl: ttl}
}

func (c *MemoryCache) GetResponse(sourceID, text string) ([]byte, bool) {
	if val, found := c.cache.Get(Key(sourceID, text)); found {
		return val.([]byte), true
	}
	return nil, false
}

func (c *MemoryCache) SetResponse(sourceID, text string, value []byte) error {
	c.cache.Set(Key(sourceID, text), value, c.ttl)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}
