package users

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authcore/internal/cache"
	"github.com/dropDatabas3/authcore/internal/domain"
	"github.com/dropDatabas3/authcore/internal/store"
	"github.com/dropDatabas3/authcore/internal/store/memory"
)

// countingStore wraps a store and counts user lookups, so the tests can see
// whether a read was served from the cache or from the store.
type countingStore struct {
	store.Store
	finds atomic.Int64
}

func (s *countingStore) Users() store.UserRepository {
	return &countingUsers{UserRepository: s.Store.Users(), finds: &s.finds}
}

type countingUsers struct {
	store.UserRepository
	finds *atomic.Int64
}

func (r *countingUsers) FindByIdentifier(ctx context.Context, idOrEmail string) (*domain.User, error) {
	r.finds.Add(1)
	return r.UserRepository.FindByIdentifier(ctx, idOrEmail)
}

func newCachedFixture(t *testing.T) (*CachedDirectory, *countingStore) {
	t.Helper()
	cs := &countingStore{Store: memory.New()}
	c := cache.New(cache.Config{Kind: "memory", DefaultTTL: time.Minute})
	return NewCachedDirectory(NewDirectory(cs), c, time.Minute), cs
}

func mustCreate(t *testing.T, d *CachedDirectory, email string) *domain.User {
	t.Helper()
	u, err := d.Create(context.Background(), CreateInput{Email: email, Password: "hunter2!", Name: "Ana"})
	require.NoError(t, err)
	return u
}

func TestCreateDefaults(t *testing.T) {
	d, _ := newCachedFixture(t)
	u := mustCreate(t, d, "  Ana@Example.COM ")

	require.NotEmpty(t, u.ID)
	require.Equal(t, "ana@example.com", u.Email)
	require.Equal(t, []domain.Role{domain.RoleUser}, u.Roles)
	require.NotNil(t, u.PasswordHash)
	require.NotContains(t, *u.PasswordHash, "hunter2!")
}

func TestFindReadThrough(t *testing.T) {
	ctx := context.Background()
	d, cs := newCachedFixture(t)
	u := mustCreate(t, d, "ana@example.com")

	before := cs.finds.Load()
	first, err := d.Find(ctx, u.ID, false)
	require.NoError(t, err)
	require.Equal(t, before+1, cs.finds.Load())

	// Second read is served from the cache.
	second, err := d.Find(ctx, u.ID, false)
	require.NoError(t, err)
	require.Equal(t, before+1, cs.finds.Load())
	require.Equal(t, first.Email, second.Email)

	// The hash must survive the cache round trip or cached logins break.
	require.NotNil(t, second.PasswordHash)
	require.Equal(t, *first.PasswordHash, *second.PasswordHash)
}

func TestFindFreshBypassesCache(t *testing.T) {
	ctx := context.Background()
	d, cs := newCachedFixture(t)
	u := mustCreate(t, d, "ana@example.com")

	_, err := d.Find(ctx, u.ID, false)
	require.NoError(t, err)

	before := cs.finds.Load()
	_, err = d.Find(ctx, u.ID, true)
	require.NoError(t, err)
	require.Equal(t, before+1, cs.finds.Load())
}

func TestNoNegativeCaching(t *testing.T) {
	ctx := context.Background()
	d, cs := newCachedFixture(t)

	_, err := d.Find(ctx, "ghost@example.com", false)
	require.ErrorIs(t, err, store.ErrNotFound)

	// The miss was not cached: the next read goes to the store again.
	before := cs.finds.Load()
	_, err = d.Find(ctx, "ghost@example.com", false)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Equal(t, before+1, cs.finds.Load())
}

func TestUpdateInvalidatesBothKeys(t *testing.T) {
	ctx := context.Background()
	d, _ := newCachedFixture(t)
	u := mustCreate(t, d, "ana@example.com")

	// Warm both key forms.
	_, err := d.Find(ctx, u.ID, false)
	require.NoError(t, err)
	_, err = d.Find(ctx, u.Email, false)
	require.NoError(t, err)

	name := "Renamed"
	_, err = d.Update(ctx, u.ID, UpdateInput{Name: &name})
	require.NoError(t, err)

	byID, err := d.Find(ctx, u.ID, false)
	require.NoError(t, err)
	require.Equal(t, "Renamed", byID.Name)

	byEmail, err := d.Find(ctx, u.Email, false)
	require.NoError(t, err)
	require.Equal(t, "Renamed", byEmail.Name)
}

func TestUpdatePasswordRehashes(t *testing.T) {
	ctx := context.Background()
	d, _ := newCachedFixture(t)
	u := mustCreate(t, d, "ana@example.com")
	oldHash := *u.PasswordHash

	pw := "new-password!"
	updated, err := d.Update(ctx, u.ID, UpdateInput{Password: &pw})
	require.NoError(t, err)
	require.NotNil(t, updated.PasswordHash)
	require.NotEqual(t, oldHash, *updated.PasswordHash)
}

func TestDeleteEvictsBothKeys(t *testing.T) {
	ctx := context.Background()
	d, _ := newCachedFixture(t)
	u := mustCreate(t, d, "ana@example.com")

	_, err := d.Find(ctx, u.ID, false)
	require.NoError(t, err)
	_, err = d.Find(ctx, u.Email, false)
	require.NoError(t, err)

	require.NoError(t, d.Delete(ctx, u.ID))

	_, err = d.Find(ctx, u.ID, false)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = d.Find(ctx, u.Email, false)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteMissing(t *testing.T) {
	d, _ := newCachedFixture(t)
	require.ErrorIs(t, d.Delete(context.Background(), "nope"), store.ErrNotFound)
}
