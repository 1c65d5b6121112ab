// Package auth contains the controllers for the authentication endpoints.
package auth

import (
	"net/http"
	"time"

	authsvc "github.com/dropDatabas3/authcore/internal/auth"
	"github.com/dropDatabas3/authcore/internal/oauth/google"
	"github.com/dropDatabas3/authcore/internal/users"
)

const contentTypeJSON = "application/json; charset=utf-8"

// refreshCookieName is the httpOnly cookie carrying the refresh token.
// Scoped to the auth endpoints so it never rides along on API calls.
const refreshCookieName = "refresh_token"

const refreshCookiePath = "/v1/auth"

// Options tune transport behavior shared by the auth controllers.
type Options struct {
	// AccessTTL is echoed to clients as expires_in.
	AccessTTL time.Duration
	// RefreshTTL bounds the refresh cookie lifetime.
	RefreshTTL time.Duration
	// CookieSecure marks the refresh cookie Secure. Off only in local dev.
	CookieSecure bool
}

// Controllers groups every controller of the auth domain.
type Controllers struct {
	Register *RegisterController
	Login    *LoginController
	Refresh  *RefreshController
	Logout   *LogoutController
	Me       *MeController
	Google   *GoogleController
}

// NewControllers builds the auth controller aggregate. The google verifier
// may be nil when the provider is disabled.
func NewControllers(s authsvc.Service, dir users.Lookup, verifier *google.Verifier, opts Options) *Controllers {
	return &Controllers{
		Register: NewRegisterController(s),
		Login:    NewLoginController(s, opts),
		Refresh:  NewRefreshController(s, opts),
		Logout:   NewLogoutController(s, opts),
		Me:       NewMeController(dir),
		Google:   NewGoogleController(s, verifier, opts),
	}
}

// ─── Cookie Helpers ───

func setRefreshCookie(w http.ResponseWriter, token string, opts Options) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		MaxAge:   int(opts.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter, opts Options) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// refreshTokenFrom prefers the cookie and falls back to an explicit body
// value for clients that cannot hold cookies.
func refreshTokenFrom(r *http.Request, bodyToken string) string {
	if c, err := r.Cookie(refreshCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return bodyToken
}

func noStore(w http.ResponseWriter) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
