package auth

import (
	"encoding/json"
	"net/http"

	authsvc "github.com/dropDatabas3/authcore/internal/auth"
	dto "github.com/dropDatabas3/authcore/internal/http/dto/auth"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

// LogoutController handles POST /v1/auth/logout.
type LogoutController struct {
	service authsvc.Service
	opts    Options
}

func NewLogoutController(service authsvc.Service, opts Options) *LogoutController {
	return &LogoutController{service: service, opts: opts}
}

// Logout revokes the presented refresh token and clears the cookie.
// Idempotent: an absent or already-revoked token still yields 204.
func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LogoutController.Logout"))

	r.Body = http.MaxBytesReader(w, r.Body, maxRefreshBodySize)
	defer r.Body.Close()

	var req dto.RefreshRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	raw := refreshTokenFrom(r, req.RefreshToken)
	if err := c.service.Logout(ctx, raw); err != nil {
		// Logout never surfaces revocation trouble to the client.
		log.Debug("logout cleanup failed", logger.Err(err))
	}

	clearRefreshCookie(w, c.opts)
	w.WriteHeader(http.StatusNoContent)
}
