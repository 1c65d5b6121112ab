package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authcore/internal/cache"
	"github.com/dropDatabas3/authcore/internal/domain"
	jwtx "github.com/dropDatabas3/authcore/internal/jwt"
	"github.com/dropDatabas3/authcore/internal/store"
	"github.com/dropDatabas3/authcore/internal/store/memory"
	"github.com/dropDatabas3/authcore/internal/users"
)

type fixture struct {
	svc   Service
	dir   *users.CachedDirectory
	store *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	dir := users.NewCachedDirectory(
		users.NewDirectory(st),
		cache.New(cache.Config{Kind: "memory", DefaultTTL: time.Minute}),
		time.Minute,
	)
	svc := New(Deps{
		Users:  dir,
		Tokens: st.RefreshTokens(),
		Issuer: jwtx.NewIssuer("authcore", []byte("0123456789abcdef0123456789abcdef"), 5*time.Minute),
	})
	return &fixture{svc: svc, dir: dir, store: st}
}

func (f *fixture) register(t *testing.T, email, pw string) *domain.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), RegisterInput{Email: email, Password: pw, Name: "Ana"})
	require.NoError(t, err)
	return u
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "ana@example.com", "hunter2!")
	require.Equal(t, []domain.Role{domain.RoleUser}, u.Roles)

	pair, err := f.svc.Login(ctx, "ana@example.com", "hunter2!", "dev-a")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken.Token)
	require.Equal(t, u.ID, pair.RefreshToken.UserID)
	require.Equal(t, "dev-a", pair.RefreshToken.DeviceKey)

	claims, err := f.svc.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.UserID())
	require.True(t, claims.HasRole(domain.RoleUser))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "ana@example.com", "hunter2!")

	_, err := f.svc.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "other"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "ana@example.com", "hunter2!")

	_, errUnknown := f.svc.Login(ctx, "ghost@example.com", "hunter2!", "dev-a")
	_, errWrongPw := f.svc.Login(ctx, "ana@example.com", "wrong", "dev-a")

	require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	require.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
	require.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestLoginPasswordlessAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Account provisioned for federated login only, no credential stored.
	_, err := f.dir.Create(ctx, users.CreateInput{Email: "fed@example.com"})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "fed@example.com", "", "dev-a")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSecondLoginSameDeviceReplacesToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "ana@example.com", "hunter2!")

	first, err := f.svc.Login(ctx, "ana@example.com", "hunter2!", "dev-a")
	require.NoError(t, err)
	second, err := f.svc.Login(ctx, "ana@example.com", "hunter2!", "dev-a")
	require.NoError(t, err)

	// The first session's refresh token was superseded.
	_, err = f.store.RefreshTokens().Get(ctx, first.RefreshToken.Token)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.store.RefreshTokens().Get(ctx, second.RefreshToken.Token)
	require.NoError(t, err)
}

func TestLoginTwoDevicesCoexist(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "ana@example.com", "hunter2!")

	a, err := f.svc.Login(ctx, "ana@example.com", "hunter2!", "dev-a")
	require.NoError(t, err)
	b, err := f.svc.Login(ctx, "ana@example.com", "hunter2!", "dev-b")
	require.NoError(t, err)

	_, err = f.store.RefreshTokens().Get(ctx, a.RefreshToken.Token)
	require.NoError(t, err)
	_, err = f.store.RefreshTokens().Get(ctx, b.RefreshToken.Token)
	require.NoError(t, err)
}

func TestRefreshRotatesAndKillsReplay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "ana@example.com", "hunter2!")

	pair, err := f.svc.Login(ctx, "ana@example.com", "hunter2!", "dev-a")
	require.NoError(t, err)

	rotated, err := f.svc.Refresh(ctx, pair.RefreshToken.Token, "dev-a")
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken.Token, rotated.RefreshToken.Token)

	// Replaying the consumed value fails.
	_, err = f.svc.Refresh(ctx, pair.RefreshToken.Token, "dev-a")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	// The rotated value still works.
	_, err = f.svc.Refresh(ctx, rotated.RefreshToken.Token, "dev-a")
	require.NoError(t, err)
}

func TestRefreshUnknownToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Refresh(context.Background(), "never-issued", "dev-a")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshExpiredTokenIsConsumed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "ana@example.com", "hunter2!")

	// Plant an already-expired row directly.
	require.NoError(t, f.store.RefreshTokens().Replace(ctx, &domain.RefreshToken{
		Token: "stale", UserID: u.ID, DeviceKey: "dev-a",
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	_, err := f.svc.Refresh(ctx, "stale", "dev-a")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	// The expired row was still consumed; it cannot be probed again.
	_, err = f.store.RefreshTokens().Get(ctx, "stale")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRefreshConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "ana@example.com", "hunter2!")

	pair, err := f.svc.Login(ctx, "ana@example.com", "hunter2!", "dev-a")
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	wins := make(chan *domain.TokenPair, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p, err := f.svc.Refresh(ctx, pair.RefreshToken.Token, "dev-a"); err == nil {
				wins <- p
			}
		}()
	}
	wg.Wait()
	close(wins)

	require.Len(t, wins, 1)
}

func TestLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "ana@example.com", "hunter2!")

	pair, err := f.svc.Login(ctx, "ana@example.com", "hunter2!", "dev-a")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, pair.RefreshToken.Token))
	require.NoError(t, f.svc.Logout(ctx, pair.RefreshToken.Token))
	require.NoError(t, f.svc.Logout(ctx, ""))
	require.NoError(t, f.svc.Logout(ctx, "never-issued"))

	// The session really ended.
	_, err = f.svc.Refresh(ctx, pair.RefreshToken.Token, "dev-a")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestFederatedLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "ana@example.com", "hunter2!")

	pair, err := f.svc.FederatedLogin(ctx, "ana@example.com", "dev-a")
	require.NoError(t, err)
	require.Equal(t, u.ID, pair.RefreshToken.UserID)

	claims, err := f.svc.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.Email, claims.Email)
}

func TestFederatedLoginUnknownIdentity(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.FederatedLogin(context.Background(), "ghost@example.com", "dev-a")
	require.ErrorIs(t, err, ErrUnknownIdentity)
}
