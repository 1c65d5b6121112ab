// Package store defines the persistence contracts for users and refresh
// tokens. Adapters live in subpackages (pg, memory).
package store

import (
	"context"
	"errors"

	"github.com/dropDatabas3/authcore/internal/domain"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrConflict = errors.New("store: conflict")
)

// UserRepository is the durable user directory.
type UserRepository interface {
	// Create inserts the user. Returns ErrConflict when the email (or id)
	// is already taken.
	Create(ctx context.Context, u *domain.User) error

	// FindByIdentifier resolves a user by id OR email, whichever matches.
	// Returns ErrNotFound when neither does.
	FindByIdentifier(ctx context.Context, idOrEmail string) (*domain.User, error)

	List(ctx context.Context) ([]domain.User, error)

	// Update persists name, password hash, roles and bumps updated_at.
	Update(ctx context.Context, u *domain.User) error

	Delete(ctx context.Context, id string) error
}

// RefreshTokenRepository is the durable table of live sessions.
type RefreshTokenRepository interface {
	// Replace upserts by (UserID, DeviceKey): an existing row for the pair
	// gets its token value and expiry overwritten, otherwise a new row is
	// inserted. This is what keeps at most one live token per device.
	Replace(ctx context.Context, t *domain.RefreshToken) error

	// Consume deletes the row for the given token value and returns it.
	// Lookup and delete are a single step so that racing consumers of the
	// same value see exactly one success; the rest get ErrNotFound.
	Consume(ctx context.Context, token string) (*domain.RefreshToken, error)

	// Delete removes the row for the token value. Deleting an absent token
	// is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteByUser removes every session of the user.
	DeleteByUser(ctx context.Context, userID string) error

	// Get reads the row without consuming it.
	Get(ctx context.Context, token string) (*domain.RefreshToken, error)
}

// Store bundles the repositories behind one handle.
type Store interface {
	Users() UserRepository
	RefreshTokens() RefreshTokenRepository
	Ping(ctx context.Context) error
	Close() error
}
