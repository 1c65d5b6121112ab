package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	authsvc "github.com/dropDatabas3/authcore/internal/auth"
	dto "github.com/dropDatabas3/authcore/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	"github.com/dropDatabas3/authcore/internal/oauth/google"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/security/token"
)

// GoogleController handles POST /v1/auth/google.
type GoogleController struct {
	service  authsvc.Service
	verifier *google.Verifier
	opts     Options
}

func NewGoogleController(service authsvc.Service, verifier *google.Verifier, opts Options) *GoogleController {
	return &GoogleController{service: service, verifier: verifier, opts: opts}
}

// Login exchanges a Google access token for local tokens. The email must
// belong to an existing account: federated login never auto-provisions.
func (c *GoogleController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("GoogleController.Login"))

	if c.verifier == nil {
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("google login is not enabled"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxLoginBodySize)
	defer r.Body.Close()

	var req dto.GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}
	if req.AccessToken == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("access_token is required"))
		return
	}

	email, err := c.verifier.VerifiedEmail(ctx, req.AccessToken)
	if err != nil {
		log.Debug("google token rejected", logger.Err(err))
		writeGoogleError(w, err)
		return
	}

	deviceKey := token.DeviceKey(r.UserAgent())

	pair, err := c.service.FederatedLogin(ctx, email, deviceKey)
	if err != nil {
		log.Debug("federated login failed", logger.Err(err))
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

func writeGoogleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, google.ErrTokenRejected):
		httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("google did not accept the token"))

	case errors.Is(err, google.ErrEmailNotVerified):
		httperrors.WriteError(w, httperrors.ErrForbidden.WithDetail("google account email is not verified"))

	default:
		httperrors.WriteError(w, httperrors.ErrInternal)
	}
}
