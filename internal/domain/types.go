// Package domain contains the core entities shared across layers.
package domain

import "time"

// Role is a closed enum. Membership is checked as set containment,
// never by raw string comparison at call sites.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// User is the identity record. PasswordHash is nil for accounts that only
// ever authenticated through an external provider.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash *string   `json:"-"`
	Name         string    `json:"name,omitempty"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// RefreshToken is one live session for a (user, device) pair.
// The opaque token value is the primary key; (UserID, DeviceKey) is unique,
// so a new login from the same device replaces the row instead of adding one.
type RefreshToken struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	DeviceKey string    `json:"device_key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// TokenPair is the result of every issuance path. The access token is
// stateless; the refresh token half is the persisted RefreshToken row.
type TokenPair struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken RefreshToken `json:"refresh_token"`
}
