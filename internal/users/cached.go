package users

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/authcore/internal/cache"
	"github.com/dropDatabas3/authcore/internal/domain"
	"github.com/dropDatabas3/authcore/internal/metrics"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/store"
)

const cacheKeyPrefix = "user:"

// cachedUser is the cache wire form. domain.User hides the password hash
// from JSON on purpose, but the cache must round-trip it or a cached login
// could never verify credentials.
type cachedUser struct {
	User         domain.User `json:"user"`
	PasswordHash *string     `json:"password_hash,omitempty"`
}

// CachedDirectory is a read-through decorator over Directory. Reads populate
// the cache with a bounded TTL; every write path evicts both the id-keyed
// and the email-keyed entries, since either form may have been used to look
// the user up.
type CachedDirectory struct {
	inner *Directory
	cache cache.Cache
	ttl   time.Duration
	group singleflight.Group
}

func NewCachedDirectory(inner *Directory, c cache.Cache, ttl time.Duration) *CachedDirectory {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &CachedDirectory{inner: inner, cache: c, ttl: ttl}
}

// Find is the read-through path. With fresh set, any cached entry for the
// identifier is evicted before the lookup. A store miss is returned as-is
// and never cached (no negative caching).
func (c *CachedDirectory) Find(ctx context.Context, idOrEmail string, fresh bool) (*domain.User, error) {
	key := cacheKeyPrefix + NormalizeEmail(idOrEmail)

	if fresh {
		c.cache.Delete(key)
	} else if b, ok := c.cache.Get(key); ok {
		if u, err := decodeUser(b); err == nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return u, nil
		}
		// Undecodable entry: drop it and fall through to the store.
		c.cache.Delete(key)
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	// Concurrent misses for the same identifier collapse into one store
	// round trip.
	v, err, _ := c.group.Do(key, func() (any, error) {
		u, err := c.inner.Find(ctx, idOrEmail, fresh)
		if err != nil {
			return nil, err
		}
		if b, err := encodeUser(u); err == nil {
			c.cache.Set(key, b, c.ttl)
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.User), nil
}

func (c *CachedDirectory) Create(ctx context.Context, in CreateInput) (*domain.User, error) {
	return c.inner.Create(ctx, in)
}

func (c *CachedDirectory) List(ctx context.Context) ([]domain.User, error) {
	return c.inner.List(ctx)
}

// Update writes through and invalidates both key forms of the user.
func (c *CachedDirectory) Update(ctx context.Context, id string, in UpdateInput) (*domain.User, error) {
	u, err := c.inner.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	c.invalidate(u.ID, u.Email)
	return u, nil
}

// Delete removes the user and evicts both cache entries. The lookup that
// learns the email happens first; once the store row is gone there is no
// authoritative way to find the email-keyed entry.
func (c *CachedDirectory) Delete(ctx context.Context, id string) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("users.cache"), logger.Op("Delete"))

	email := ""
	if u, err := c.inner.Find(ctx, id, false); err == nil {
		email = u.Email
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Debug("pre-delete lookup failed", logger.Err(err))
	}

	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(id, email)
	return nil
}

func (c *CachedDirectory) invalidate(id, email string) {
	c.cache.Delete(cacheKeyPrefix + NormalizeEmail(id))
	if email != "" {
		c.cache.Delete(cacheKeyPrefix + NormalizeEmail(email))
	}
}

func encodeUser(u *domain.User) ([]byte, error) {
	return json.Marshal(cachedUser{User: *u, PasswordHash: u.PasswordHash})
}

func decodeUser(b []byte) (*domain.User, error) {
	var cu cachedUser
	if err := json.Unmarshal(b, &cu); err != nil {
		return nil, err
	}
	u := cu.User
	u.PasswordHash = cu.PasswordHash
	return &u, nil
}
