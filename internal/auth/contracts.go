// Package auth orchestrates registration, login, refresh rotation, logout
// and federated login. It is the session state machine; HTTP concerns stay
// in the controllers.
package auth

import (
	"context"

	"github.com/dropDatabas3/authcore/internal/domain"
	jwtx "github.com/dropDatabas3/authcore/internal/jwt"
	"github.com/dropDatabas3/authcore/internal/users"
)

// UserDirectory is the slice of the users package the auth flows need.
// Satisfied by both users.Directory and users.CachedDirectory.
type UserDirectory interface {
	users.Lookup
	Create(ctx context.Context, in users.CreateInput) (*domain.User, error)
}

// RegisterInput is the registration payload after transport-level
// validation (shape, password confirmation) already happened upstream.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Service is the contract the HTTP layer consumes.
type Service interface {
	// Register creates a user with the default USER role. Duplicate emails
	// fail with ErrEmailTaken; storage trouble collapses into
	// ErrRegistrationFailed so callers cannot probe internal state.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)

	// Login verifies credentials and issues a token pair for the device.
	// Unknown email and wrong password are indistinguishable.
	Login(ctx context.Context, email, password, deviceKey string) (*domain.TokenPair, error)

	// Refresh rotates a refresh token: the presented value is consumed
	// first and a fresh pair is issued for the same device. Single-use.
	Refresh(ctx context.Context, refreshToken, deviceKey string) (*domain.TokenPair, error)

	// Logout revokes the refresh token. Never fails: an absent or
	// already-revoked token is treated as logged out.
	Logout(ctx context.Context, refreshToken string) error

	// FederatedLogin issues tokens for an email an external identity
	// provider already verified. The account must exist.
	FederatedLogin(ctx context.Context, verifiedEmail, deviceKey string) (*domain.TokenPair, error)

	// VerifyAccessToken parses and verifies a compact access token.
	VerifyAccessToken(raw string) (*jwtx.Claims, error)
}
