// Package jwt signs and verifies the short-lived access tokens.
//
// Access tokens are self-contained: identity claims travel inside the token
// and are never persisted. Refresh tokens are a separate, stateful concern
// (see internal/store).
package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/authcore/internal/domain"
)

// Leeway tolerated on exp/nbf when verifying, to absorb clock skew.
const leeway = 30 * time.Second

var (
	ErrInvalidToken = errors.New("jwt: invalid or expired token")
	ErrNoSecret     = errors.New("jwt: signing secret not configured")
)

// Claims are the identity claims embedded in every access token.
type Claims struct {
	Email string        `json:"email"`
	Roles []domain.Role `json:"roles"`
	jwtv5.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *Claims) UserID() string { return c.Subject }

// HasRole reports whether the claims carry the given role.
func (c *Claims) HasRole(r domain.Role) bool {
	for _, have := range c.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// Issuer signs access tokens with a symmetric secret (HS256) and a fixed
// validity window.
type Issuer struct {
	Iss       string
	Secret    []byte
	AccessTTL time.Duration
}

// NewIssuer builds an Issuer. AccessTTL defaults to 5 minutes.
func NewIssuer(iss string, secret []byte, accessTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = 5 * time.Minute
	}
	return &Issuer{Iss: iss, Secret: secret, AccessTTL: accessTTL}
}

// Sign issues an access token for the user. Returns the compact token and
// its expiry instant.
func (i *Issuer) Sign(u *domain.User) (string, time.Time, error) {
	if len(i.Secret) == 0 {
		return "", time.Time{}, ErrNoSecret
	}
	now := time.Now().UTC()
	exp := now.Add(i.AccessTTL)

	claims := Claims{
		Email: u.Email,
		Roles: u.Roles,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.Iss,
			Subject:   u.ID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse verifies signature, issuer and time window, and returns the claims.
// Every failure collapses into ErrInvalidToken: callers must not be able to
// distinguish why verification failed.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	if len(i.Secret) == 0 {
		return nil, ErrNoSecret
	}
	keyfunc := func(t *jwtv5.Token) (any, error) { return i.Secret, nil }

	var claims Claims
	tok, err := jwtv5.ParseWithClaims(raw, &claims, keyfunc,
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithIssuer(i.Iss),
		jwtv5.WithLeeway(leeway),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
