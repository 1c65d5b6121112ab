// Package authz decides whether verified access-token claims permit an
// operation. It never touches storage: claims are the whole input.
package authz

import (
	"errors"

	"github.com/dropDatabas3/authcore/internal/domain"
	jwtx "github.com/dropDatabas3/authcore/internal/jwt"
)

var ErrForbidden = errors.New("authz: forbidden")

// CheckRole allows the operation when the claims carry the required role.
func CheckRole(c *jwtx.Claims, required domain.Role) error {
	if c == nil || !c.HasRole(required) {
		return ErrForbidden
	}
	return nil
}

// CheckSelfAdmin gates operations on a specific account: the caller must be
// the target user AND hold the ADMIN role. The conjunction is deliberate, it
// reproduces the upstream policy as observed. See DESIGN.md before loosening
// it to self-or-admin.
func CheckSelfAdmin(c *jwtx.Claims, targetUserID string) error {
	if c == nil {
		return ErrForbidden
	}
	if c.UserID() != targetUserID || !c.HasRole(domain.RoleAdmin) {
		return ErrForbidden
	}
	return nil
}
