package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authcore/internal/domain"
	"github.com/dropDatabas3/authcore/internal/store"
)

func seedUser(t *testing.T, s *Store, id, email string) *domain.User {
	t.Helper()
	hash := "$argon2id$fake"
	u := &domain.User{
		ID:           id,
		Email:        email,
		PasswordHash: &hash,
		Roles:        []domain.Role{domain.RoleUser},
	}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func TestUserCreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedUser(t, s, "u1", "ana@example.com")

	byID, err := s.Users().FindByIdentifier(ctx, "u1")
	require.NoError(t, err)
	byEmail, err := s.Users().FindByIdentifier(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Equal(t, byID.ID, byEmail.ID)

	_, err = s.Users().FindByIdentifier(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedUser(t, s, "u1", "ana@example.com")

	err := s.Users().Create(ctx, &domain.User{ID: "u2", Email: "ana@example.com"})
	require.ErrorIs(t, err, store.ErrConflict)
}

func TestUserFindReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedUser(t, s, "u1", "ana@example.com")

	u, err := s.Users().FindByIdentifier(ctx, "u1")
	require.NoError(t, err)
	u.Email = "mutated@example.com"

	again, err := s.Users().FindByIdentifier(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", again.Email)
}

func TestUserDeleteCascadesTokens(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedUser(t, s, "u1", "ana@example.com")

	require.NoError(t, s.RefreshTokens().Replace(ctx, &domain.RefreshToken{
		Token: "tok-1", UserID: "u1", DeviceKey: "dev-a", ExpiresAt: time.Now().Add(time.Hour),
	}))

	require.NoError(t, s.Users().Delete(ctx, "u1"))

	_, err := s.RefreshTokens().Get(ctx, "tok-1")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.Users().Delete(ctx, "u1"), store.ErrNotFound)
}

func TestReplaceUpsertsPerDevice(t *testing.T) {
	ctx := context.Background()
	s := New()
	repo := s.RefreshTokens()

	exp := time.Now().Add(time.Hour)
	require.NoError(t, repo.Replace(ctx, &domain.RefreshToken{Token: "old", UserID: "u1", DeviceKey: "dev-a", ExpiresAt: exp}))
	require.NoError(t, repo.Replace(ctx, &domain.RefreshToken{Token: "new", UserID: "u1", DeviceKey: "dev-a", ExpiresAt: exp}))

	// The replaced value is gone, only the new one resolves.
	_, err := repo.Get(ctx, "old")
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := repo.Get(ctx, "new")
	require.NoError(t, err)
	require.Equal(t, "dev-a", got.DeviceKey)

	// A different device keeps its own row.
	require.NoError(t, repo.Replace(ctx, &domain.RefreshToken{Token: "other", UserID: "u1", DeviceKey: "dev-b", ExpiresAt: exp}))
	_, err = repo.Get(ctx, "new")
	require.NoError(t, err)
}

func TestConsumeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s := New()
	repo := s.RefreshTokens()

	require.NoError(t, repo.Replace(ctx, &domain.RefreshToken{
		Token: "tok", UserID: "u1", DeviceKey: "dev-a", ExpiresAt: time.Now().Add(time.Hour),
	}))

	got, err := repo.Consume(ctx, "tok")
	require.NoError(t, err)
	require.Equal(t, "u1", got.UserID)

	_, err = repo.Consume(ctx, "tok")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestConsumeConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := New()
	repo := s.RefreshTokens()

	require.NoError(t, repo.Replace(ctx, &domain.RefreshToken{
		Token: "tok", UserID: "u1", DeviceKey: "dev-a", ExpiresAt: time.Now().Add(time.Hour),
	}))

	const n = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Consume(ctx, "tok"); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	require.Len(t, wins, 1)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()
	repo := s.RefreshTokens()

	require.NoError(t, repo.Delete(ctx, "never-existed"))

	require.NoError(t, repo.Replace(ctx, &domain.RefreshToken{
		Token: "tok", UserID: "u1", DeviceKey: "dev-a", ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, repo.Delete(ctx, "tok"))
	require.NoError(t, repo.Delete(ctx, "tok"))
}

func TestDeleteByUser(t *testing.T) {
	ctx := context.Background()
	s := New()
	repo := s.RefreshTokens()

	exp := time.Now().Add(time.Hour)
	require.NoError(t, repo.Replace(ctx, &domain.RefreshToken{Token: "a", UserID: "u1", DeviceKey: "dev-a", ExpiresAt: exp}))
	require.NoError(t, repo.Replace(ctx, &domain.RefreshToken{Token: "b", UserID: "u1", DeviceKey: "dev-b", ExpiresAt: exp}))
	require.NoError(t, repo.Replace(ctx, &domain.RefreshToken{Token: "c", UserID: "u2", DeviceKey: "dev-a", ExpiresAt: exp}))

	require.NoError(t, repo.DeleteByUser(ctx, "u1"))

	_, err := repo.Get(ctx, "a")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = repo.Get(ctx, "b")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = repo.Get(ctx, "c")
	require.NoError(t, err)
}
