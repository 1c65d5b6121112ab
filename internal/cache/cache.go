// Package cache abstracts the byte cache used by the user lookup layer.
//
// Backends:
//   - memory (in-process, dev/testing)
//   - redis (shared, production)
package cache

import "time"

// Cache is a best-effort byte store with per-entry TTL. Implementations
// never surface backend failures to callers: a broken cache behaves like an
// empty one.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}

// Config selects and parameterizes a backend.
type Config struct {
	Kind       string // "memory" | "redis"
	DefaultTTL time.Duration
	Redis      struct {
		Addr   string
		DB     int
		Prefix string
	}
}

// New builds a cache client for the configured backend. Unknown kinds fall
// back to memory.
func New(cfg Config) Cache {
	if cfg.Kind == "redis" && cfg.Redis.Addr != "" {
		return NewRedis(cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Prefix)
	}
	return NewMemory(cfg.DefaultTTL)
}
