package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type memoryCache struct{ c *gocache.Cache }

// NewMemory returns an in-process cache. defaultTTL applies when Set is
// called with ttl == 0.
func NewMemory(defaultTTL time.Duration) Cache {
	if defaultTTL <= 0 {
		defaultTTL = 2 * time.Minute
	}
	return &memoryCache{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *memoryCache) Get(key string) ([]byte, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (m *memoryCache) Set(key string, value []byte, ttl time.Duration) {
	m.c.Set(key, value, ttl)
}

func (m *memoryCache) Delete(key string) { m.c.Delete(key) }
