package cache

import (
	"context"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

type redisCache struct {
	c      *rdb.Client
	prefix string
}

// NewRedis returns a redis-backed cache. Operations are fire-and-forget:
// a redis outage degrades to cache misses, it never fails a request.
func NewRedis(addr string, db int, prefix string) Cache {
	return &redisCache{
		c:      rdb.NewClient(&rdb.Options{Addr: addr, DB: db}),
		prefix: prefix,
	}
}

func (r *redisCache) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *redisCache) Get(key string) ([]byte, bool) {
	b, err := r.c.Get(context.Background(), r.key(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (r *redisCache) Set(key string, value []byte, ttl time.Duration) {
	_ = r.c.Set(context.Background(), r.key(key), value, ttl).Err()
}

func (r *redisCache) Delete(key string) {
	_ = r.c.Del(context.Background(), r.key(key)).Err()
}
