// Package health contains the liveness and readiness controllers.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/store"
)

const pingTimeout = 2 * time.Second

// Controller answers the health endpoints.
type Controller struct {
	store store.Store
}

func NewController(st store.Store) *Controller {
	return &Controller{store: st}
}

// Live handles GET /healthz. Always 200 while the process serves.
func (c *Controller) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Ready handles GET /readyz. Fails when the backing store does not answer.
func (c *Controller) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := c.store.Ping(ctx); err != nil {
		logger.From(r.Context()).Warn("store ping failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithDetail("store unreachable"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}
