package auth

import (
	"encoding/json"
	"net/http"

	authsvc "github.com/dropDatabas3/authcore/internal/auth"
	dto "github.com/dropDatabas3/authcore/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/security/token"
)

const maxRefreshBodySize = 8 * 1024 // 8KB

// RefreshController handles POST /v1/auth/refresh.
type RefreshController struct {
	service authsvc.Service
	opts    Options
}

func NewRefreshController(service authsvc.Service, opts Options) *RefreshController {
	return &RefreshController{service: service, opts: opts}
}

// Refresh rotates the refresh token and returns a fresh access token.
// The presented token is single-use: a replay after a successful rotation
// is rejected. The token is read from the cookie, with a JSON body field as
// fallback for cookieless clients.
func (c *RefreshController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RefreshController.Refresh"))

	r.Body = http.MaxBytesReader(w, r.Body, maxRefreshBodySize)
	defer r.Body.Close()

	var req dto.RefreshRequest
	// An empty body is fine when the cookie is present.
	_ = json.NewDecoder(r.Body).Decode(&req)

	raw := refreshTokenFrom(r, req.RefreshToken)
	if raw == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("missing refresh token"))
		return
	}

	deviceKey := token.DeviceKey(r.UserAgent())

	pair, err := c.service.Refresh(ctx, raw, deviceKey)
	if err != nil {
		log.Debug("refresh failed", logger.Err(err))
		// A failed rotation leaves the client without a usable token.
		clearRefreshCookie(w, c.opts)
		writeSessionError(w, err)
		return
	}

	setRefreshCookie(w, pair.RefreshToken.Token, c.opts)
	noStore(w)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(dto.TokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(c.opts.AccessTTL.Seconds()),
	})
}
