// Package auth holds the wire shapes of the auth endpoints.
package auth

// RegisterRequest is the registration payload. Field-shape validation and
// password confirmation matching happen before the core is called.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the JSON fallback for clients that do not use the
// refresh cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// GoogleLoginRequest carries a Google access token to exchange for local
// tokens.
type GoogleLoginRequest struct {
	AccessToken string `json:"access_token"`
}

// TokenResponse returns the access token. The refresh token travels in an
// httpOnly cookie, never in the body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
