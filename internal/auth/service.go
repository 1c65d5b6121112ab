package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/authcore/internal/domain"
	jwtx "github.com/dropDatabas3/authcore/internal/jwt"
	"github.com/dropDatabas3/authcore/internal/metrics"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/security/password"
	tokens "github.com/dropDatabas3/authcore/internal/security/token"
	"github.com/dropDatabas3/authcore/internal/store"
	"github.com/dropDatabas3/authcore/internal/users"
)

// refreshTokenBytes is the entropy of an opaque refresh token value.
const refreshTokenBytes = 32

var (
	ErrEmailTaken          = fmt.Errorf("email already registered")
	ErrRegistrationFailed  = fmt.Errorf("registration failed")
	ErrInvalidCredentials  = fmt.Errorf("wrong email or password")
	ErrInvalidRefreshToken = fmt.Errorf("invalid refresh token")
	ErrUnknownIdentity     = fmt.Errorf("identity not provisioned")
	ErrTokenIssueFailed    = fmt.Errorf("failed to issue tokens")
)

// Deps contains the collaborators of the auth service.
type Deps struct {
	Users      UserDirectory
	Tokens     store.RefreshTokenRepository
	Issuer     *jwtx.Issuer
	RefreshTTL time.Duration
}

type service struct {
	deps Deps
}

// New builds the auth Service. RefreshTTL defaults to 30 days.
func New(deps Deps) Service {
	if deps.RefreshTTL <= 0 {
		deps.RefreshTTL = 30 * 24 * time.Hour
	}
	return &service{deps: deps}
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Register"),
	)

	// Duplicate pre-check through the regular (cached) lookup. A lookup
	// failure here is logged and treated as "not found": if a duplicate
	// really exists, the create below still trips the unique constraint.
	existing, err := s.deps.Users.Find(ctx, in.Email, false)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("duplicate pre-check failed", logger.Err(err))
	}
	if existing != nil {
		metrics.Registrations.WithLabelValues("conflict").Inc()
		return nil, ErrEmailTaken
	}

	u, err := s.deps.Users.Create(ctx, users.CreateInput{
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
		Roles:    []domain.Role{domain.RoleUser},
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			metrics.Registrations.WithLabelValues("conflict").Inc()
			return nil, ErrEmailTaken
		}
		log.Error("user create failed", logger.Err(err))
		metrics.Registrations.WithLabelValues("error").Inc()
		return nil, ErrRegistrationFailed
	}

	log.Info("user registered", logger.UserID(u.ID))
	metrics.Registrations.WithLabelValues("ok").Inc()
	return u, nil
}

func (s *service) Login(ctx context.Context, email, plain, deviceKey string) (*domain.TokenPair, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Login"),
	)

	u, err := s.deps.Users.Find(ctx, email, false)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("user lookup failed", logger.Err(err))
	}

	// One failure path for every cause: an attacker learns nothing about
	// whether the email exists or the password was wrong.
	if u == nil || u.PasswordHash == nil || !password.Verify(plain, *u.PasswordHash) {
		metrics.Logins.WithLabelValues("unauthorized", "password").Inc()
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, u, deviceKey)
	if err != nil {
		metrics.Logins.WithLabelValues("error", "password").Inc()
		return nil, err
	}

	log.Info("login successful", logger.UserID(u.ID), logger.DeviceKey(deviceKey))
	metrics.Logins.WithLabelValues("ok", "password").Inc()
	return pair, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken, deviceKey string) (*domain.TokenPair, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Refresh"),
	)

	// Consume deletes the row in the same step as the lookup. The ordering
	// matters: the token is spent before the expiry check, so a replayed
	// value is dead no matter how the rest of this call turns out.
	rt, err := s.deps.Tokens.Consume(ctx, refreshToken)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("refresh token consume failed", logger.Err(err))
		}
		metrics.Refreshes.WithLabelValues("unauthorized").Inc()
		return nil, ErrInvalidRefreshToken
	}

	if rt.Expired(time.Now().UTC()) {
		log.Debug("refresh token expired", logger.UserID(rt.UserID))
		metrics.Refreshes.WithLabelValues("unauthorized").Inc()
		return nil, ErrInvalidRefreshToken
	}

	// The user is loaded only after the token row proved valid; the row is
	// data-store truth, independent of whatever the cache holds.
	u, err := s.deps.Users.Find(ctx, rt.UserID, false)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("owner lookup failed", logger.Err(err), logger.UserID(rt.UserID))
		}
		metrics.Refreshes.WithLabelValues("unauthorized").Inc()
		return nil, ErrInvalidRefreshToken
	}

	pair, err := s.issueTokens(ctx, u, deviceKey)
	if err != nil {
		metrics.Refreshes.WithLabelValues("unauthorized").Inc()
		return nil, err
	}

	log.Debug("tokens rotated", logger.UserID(u.ID), logger.DeviceKey(deviceKey))
	metrics.Refreshes.WithLabelValues("ok").Inc()
	return pair, nil
}

func (s *service) Logout(ctx context.Context, refreshToken string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Logout"),
	)
	metrics.Logouts.Inc()

	if refreshToken == "" {
		log.Debug("no refresh token presented, nothing to revoke")
		return nil
	}

	// Best effort: an already-gone token means the session is over either
	// way, and a store hiccup must not surface to the caller.
	if err := s.deps.Tokens.Delete(ctx, refreshToken); err != nil {
		log.Debug("refresh token delete failed", logger.Err(err))
	}
	return nil
}

func (s *service) FederatedLogin(ctx context.Context, verifiedEmail, deviceKey string) (*domain.TokenPair, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("FederatedLogin"),
	)

	// The provider vouched for the email; there is no local credential
	// check. The account still has to exist, this path never
	// self-registers one.
	u, err := s.deps.Users.Find(ctx, verifiedEmail, false)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("user lookup failed", logger.Err(err))
		}
		metrics.Logins.WithLabelValues("unauthorized", "federated").Inc()
		return nil, ErrUnknownIdentity
	}

	pair, err := s.issueTokens(ctx, u, deviceKey)
	if err != nil {
		metrics.Logins.WithLabelValues("error", "federated").Inc()
		return nil, err
	}

	log.Info("federated login successful", logger.UserID(u.ID))
	metrics.Logins.WithLabelValues("ok", "federated").Inc()
	return pair, nil
}

func (s *service) VerifyAccessToken(raw string) (*jwtx.Claims, error) {
	return s.deps.Issuer.Parse(raw)
}

// issueTokens signs an access token and replaces the refresh token for the
// (user, device) pair. The store upsert keys on that pair, so a repeat
// login from one device supersedes its previous session instead of piling
// up rows.
func (s *service) issueTokens(ctx context.Context, u *domain.User, deviceKey string) (*domain.TokenPair, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("issueTokens"),
	)

	access, _, err := s.deps.Issuer.Sign(u)
	if err != nil {
		log.Error("access token signing failed", logger.Err(err))
		return nil, ErrTokenIssueFailed
	}

	value, err := tokens.GenerateOpaque(refreshTokenBytes)
	if err != nil {
		log.Error("refresh token generation failed", logger.Err(err))
		return nil, ErrTokenIssueFailed
	}

	rt := domain.RefreshToken{
		Token:     value,
		UserID:    u.ID,
		DeviceKey: deviceKey,
		ExpiresAt: time.Now().UTC().Add(s.deps.RefreshTTL),
	}
	if err := s.deps.Tokens.Replace(ctx, &rt); err != nil {
		log.Error("refresh token persist failed", logger.Err(err))
		return nil, ErrTokenIssueFailed
	}

	return &domain.TokenPair{AccessToken: access, RefreshToken: rt}, nil
}
