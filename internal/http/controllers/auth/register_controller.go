package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	authsvc "github.com/dropDatabas3/authcore/internal/auth"
	dto "github.com/dropDatabas3/authcore/internal/http/dto/auth"
	usersdto "github.com/dropDatabas3/authcore/internal/http/dto/users"
	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

const maxRegisterBodySize = 64 * 1024 // 64KB

// RegisterController handles POST /v1/auth/register.
type RegisterController struct {
	service authsvc.Service
}

func NewRegisterController(service authsvc.Service) *RegisterController {
	return &RegisterController{service: service}
}

// Register creates an account. It never issues tokens: new users log in
// through the regular login endpoint.
func (c *RegisterController) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RegisterController.Register"))

	r.Body = http.MaxBytesReader(w, r.Body, maxRegisterBodySize)
	defer r.Body.Close()

	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("email and password are required"))
		return
	}

	u, err := c.service.Register(ctx, authsvc.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     strings.TrimSpace(req.Name),
	})
	if err != nil {
		log.Debug("register failed", logger.Err(err))
		writeRegisterError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(usersdto.FromUser(u))
}

// ─── Error Mapping ───

func writeRegisterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authsvc.ErrEmailTaken):
		httperrors.WriteError(w, httperrors.ErrConflict.WithDetail("email already registered"))

	case errors.Is(err, authsvc.ErrRegistrationFailed):
		httperrors.WriteError(w, httperrors.ErrInternal.WithDetail("could not create user"))

	default:
		httperrors.WriteError(w, httperrors.ErrInternal)
	}
}
