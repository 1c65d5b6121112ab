// Package users owns the user directory and its read-through cache.
//
// Directory talks straight to the store; CachedDirectory decorates it with
// a TTL cache. Both satisfy Lookup, so callers that only read users do not
// care which one they hold.
package users

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/dropDatabas3/authcore/internal/domain"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/security/password"
	"github.com/dropDatabas3/authcore/internal/store"
)

// Lookup resolves a user by id or email. fresh forces a pass through to the
// backing store, discarding any cached entry first.
type Lookup interface {
	Find(ctx context.Context, idOrEmail string, fresh bool) (*domain.User, error)
}

// CreateInput is the payload for Directory.Create. Password may be empty
// for accounts provisioned for federated login only.
type CreateInput struct {
	Email    string
	Password string
	Name     string
	Roles    []domain.Role
}

// UpdateInput carries partial updates. Nil fields are left untouched.
type UpdateInput struct {
	Name     *string
	Password *string
	Roles    []domain.Role
}

// Directory is the store-backed user directory.
type Directory struct {
	store store.Store
}

func NewDirectory(st store.Store) *Directory {
	return &Directory{store: st}
}

// Create inserts a new user. The password is hashed here so plaintext never
// reaches the store layer. Roles default to {USER}.
func (d *Directory) Create(ctx context.Context, in CreateInput) (*domain.User, error) {
	u := &domain.User{
		ID:    uuid.NewString(),
		Email: NormalizeEmail(in.Email),
		Name:  strings.TrimSpace(in.Name),
		Roles: in.Roles,
	}
	if len(u.Roles) == 0 {
		u.Roles = []domain.Role{domain.RoleUser}
	}
	if in.Password != "" {
		hash, err := password.Hash(in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = &hash
	}
	if err := d.store.Users().Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Find resolves id-or-email against the store. fresh is meaningless here;
// the decorator interprets it.
func (d *Directory) Find(ctx context.Context, idOrEmail string, fresh bool) (*domain.User, error) {
	return d.store.Users().FindByIdentifier(ctx, NormalizeEmail(idOrEmail))
}

func (d *Directory) List(ctx context.Context) ([]domain.User, error) {
	return d.store.Users().List(ctx)
}

// Update applies the partial input and returns the stored result.
func (d *Directory) Update(ctx context.Context, id string, in UpdateInput) (*domain.User, error) {
	u, err := d.store.Users().FindByIdentifier(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := password.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = &hash
	}
	if len(in.Roles) > 0 {
		u.Roles = in.Roles
	}
	if err := d.store.Users().Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes the user. Their refresh tokens go with them (the store
// adapters cascade), so deleting an account also ends its sessions.
func (d *Directory) Delete(ctx context.Context, id string) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("users"), logger.Op("Delete"))
	if err := d.store.Users().Delete(ctx, id); err != nil {
		log.Debug("user delete failed", logger.Err(err))
		return err
	}
	return nil
}

// NormalizeEmail lowercases and trims an identifier. Applying it to ids is
// harmless: UUIDs contain no uppercase and no padding.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
