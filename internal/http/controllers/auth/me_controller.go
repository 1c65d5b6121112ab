package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	usersdto "github.com/dropDatabas3/authcore/internal/http/dto/users"
	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	mw "github.com/dropDatabas3/authcore/internal/http/middlewares"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/store"
	"github.com/dropDatabas3/authcore/internal/users"
)

// MeController handles GET /v1/auth/me.
type MeController struct {
	dir users.Lookup
}

func NewMeController(dir users.Lookup) *MeController {
	return &MeController{dir: dir}
}

// Me returns the authenticated user's profile. Requires RequireAuth.
func (c *MeController) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MeController.Me"))

	claims := mw.GetClaims(ctx)
	if claims == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	u, err := c.dir.Find(ctx, claims.UserID(), false)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Valid token for a user that no longer exists.
			httperrors.WriteError(w, httperrors.ErrUnauthorized)
			return
		}
		log.Error("profile lookup failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(usersdto.FromUser(u))
}
