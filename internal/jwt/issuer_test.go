package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authcore/internal/domain"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testUser() *domain.User {
	return &domain.User{
		ID:    "11111111-2222-3333-4444-555555555555",
		Email: "ana@example.com",
		Roles: []domain.Role{domain.RoleUser, domain.RoleAdmin},
	}
}

func TestSignAndParse(t *testing.T) {
	iss := NewIssuer("authcore", testSecret, 5*time.Minute)

	raw, exp, err := iss.Sign(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	require.WithinDuration(t, time.Now().Add(5*time.Minute), exp, 5*time.Second)

	claims, err := iss.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "11111111-2222-3333-4444-555555555555", claims.UserID())
	require.Equal(t, "ana@example.com", claims.Email)
	require.True(t, claims.HasRole(domain.RoleAdmin))
	require.True(t, claims.HasRole(domain.RoleUser))
}

func TestParseRejectsWrongSecret(t *testing.T) {
	iss := NewIssuer("authcore", testSecret, time.Minute)
	raw, _, err := iss.Sign(testUser())
	require.NoError(t, err)

	other := NewIssuer("authcore", []byte("ffffffffffffffffffffffffffffffff"), time.Minute)
	_, err = other.Parse(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	iss := NewIssuer("somebody-else", testSecret, time.Minute)
	raw, _, err := iss.Sign(testUser())
	require.NoError(t, err)

	mine := NewIssuer("authcore", testSecret, time.Minute)
	_, err = mine.Parse(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	// Negative TTL defeats the leeway window.
	iss := NewIssuer("authcore", testSecret, time.Minute)
	iss.AccessTTL = -2 * leeway

	raw, _, err := iss.Sign(testUser())
	require.NoError(t, err)

	_, err = iss.Parse(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	iss := NewIssuer("authcore", testSecret, time.Minute)
	_, err := iss.Parse("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignWithoutSecret(t *testing.T) {
	iss := NewIssuer("authcore", nil, time.Minute)
	_, _, err := iss.Sign(testUser())
	require.ErrorIs(t, err, ErrNoSecret)
}
