package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	authsvc "github.com/dropDatabas3/authcore/internal/auth"
	dto "github.com/dropDatabas3/authcore/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/security/token"
)

const maxLoginBodySize = 64 * 1024 // 64KB

// LoginController handles POST /v1/auth/login.
type LoginController struct {
	service authsvc.Service
	opts    Options
}

func NewLoginController(service authsvc.Service, opts Options) *LoginController {
	return &LoginController{service: service, opts: opts}
}

// Login verifies credentials and returns an access token. The rotating
// refresh token travels back only as an httpOnly cookie.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	r.Body = http.MaxBytesReader(w, r.Body, maxLoginBodySize)
	defer r.Body.Close()

	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("email and password are required"))
		return
	}

	deviceKey := token.DeviceKey(r.UserAgent())

	pair, err := c.service.Login(ctx, req.Email, req.Password, deviceKey)
	if err != nil {
		log.Debug("login failed", logger.Err(err))
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

// ─── Error Mapping ───

// writeSessionError maps the session flow errors shared by login, refresh
// and federated login.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("wrong email or password"))

	case errors.Is(err, authsvc.ErrInvalidRefreshToken):
		httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("invalid or expired refresh token"))

	case errors.Is(err, authsvc.ErrUnknownIdentity):
		httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("no account for this identity"))

	case errors.Is(err, authsvc.ErrTokenIssueFailed):
		httperrors.WriteError(w, httperrors.ErrInternal.WithDetail("could not issue tokens"))

	default:
		httperrors.WriteError(w, httperrors.ErrInternal)
	}
}
