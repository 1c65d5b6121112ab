// Package memory implements store.Store in process memory. It backs unit
// tests and DSN-less dev runs, and mirrors the pg adapter's semantics:
// Consume is atomic, Replace upserts by (user, device), deleting a user
// cascades to their refresh tokens.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/authcore/internal/domain"
	"github.com/dropDatabas3/authcore/internal/store"
)

type Store struct {
	mu sync.RWMutex

	usersByID    map[string]*domain.User
	usersByEmail map[string]string            // email -> id
	tokens       map[string]*domain.RefreshToken // token value -> row
	byDevice     map[string]string            // userID+"\x00"+deviceKey -> token value
}

func New() *Store {
	return &Store{
		usersByID:    make(map[string]*domain.User),
		usersByEmail: make(map[string]string),
		tokens:       make(map[string]*domain.RefreshToken),
		byDevice:     make(map[string]string),
	}
}

func (s *Store) Users() store.UserRepository                 { return (*userRepo)(s) }
func (s *Store) RefreshTokens() store.RefreshTokenRepository { return (*tokenRepo)(s) }

func (s *Store) Ping(ctx context.Context) error { return nil }
func (s *Store) Close() error                   { return nil }

func deviceKey(userID, device string) string { return userID + "\x00" + device }

// ─── UserRepository ───

type userRepo Store

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.usersByID[u.ID]; ok {
		return store.ErrConflict
	}
	if _, ok := r.usersByEmail[u.Email]; ok {
		return store.ErrConflict
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	cp := cloneUser(u)
	r.usersByID[u.ID] = cp
	r.usersByEmail[u.Email] = u.ID
	return nil
}

func (r *userRepo) FindByIdentifier(ctx context.Context, idOrEmail string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.usersByID[idOrEmail]; ok {
		return cloneUser(u), nil
	}
	if id, ok := r.usersByEmail[idOrEmail]; ok {
		return cloneUser(r.usersByID[id]), nil
	}
	return nil, store.ErrNotFound
}

func (r *userRepo) List(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.usersByID))
	for _, u := range r.usersByID {
		users = append(users, *cloneUser(u))
	}
	return users, nil
}

func (r *userRepo) Update(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.usersByID[u.ID]
	if !ok {
		return store.ErrNotFound
	}
	if u.Email != old.Email {
		if _, taken := r.usersByEmail[u.Email]; taken {
			return store.ErrConflict
		}
		delete(r.usersByEmail, old.Email)
		r.usersByEmail[u.Email] = u.ID
	}
	u.CreatedAt = old.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	r.usersByID[u.ID] = cloneUser(u)
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.usersByID[id]
	if !ok {
		return store.ErrNotFound
	}
	delete(r.usersByID, id)
	delete(r.usersByEmail, u.Email)

	// cascade
	for value, t := range r.tokens {
		if t.UserID == id {
			delete(r.tokens, value)
			delete(r.byDevice, deviceKey(t.UserID, t.DeviceKey))
		}
	}
	return nil
}

// ─── RefreshTokenRepository ───

type tokenRepo Store

func (r *tokenRepo) Replace(ctx context.Context, t *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := deviceKey(t.UserID, t.DeviceKey)
	if old, ok := r.byDevice[key]; ok {
		delete(r.tokens, old)
	}
	cp := *t
	r.tokens[t.Token] = &cp
	r.byDevice[key] = t.Token
	return nil
}

func (r *tokenRepo) Consume(ctx context.Context, token string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[token]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(r.tokens, token)
	delete(r.byDevice, deviceKey(t.UserID, t.DeviceKey))
	cp := *t
	return &cp, nil
}

func (r *tokenRepo) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tokens[token]; ok {
		delete(r.tokens, token)
		delete(r.byDevice, deviceKey(t.UserID, t.DeviceKey))
	}
	return nil
}

func (r *tokenRepo) DeleteByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for value, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, value)
			delete(r.byDevice, deviceKey(t.UserID, t.DeviceKey))
		}
	}
	return nil
}

func (r *tokenRepo) Get(ctx context.Context, token string) (*domain.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tokens[token]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func cloneUser(u *domain.User) *domain.User {
	cp := *u
	if u.PasswordHash != nil {
		h := *u.PasswordHash
		cp.PasswordHash = &h
	}
	cp.Roles = append([]domain.Role(nil), u.Roles...)
	return &cp
}
