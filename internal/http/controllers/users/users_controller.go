// Package users contains the controllers for the user management endpoints.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/authcore/internal/authz"
	"github.com/dropDatabas3/authcore/internal/domain"
	dto "github.com/dropDatabas3/authcore/internal/http/dto/users"
	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	mw "github.com/dropDatabas3/authcore/internal/http/middlewares"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/store"
	usersvc "github.com/dropDatabas3/authcore/internal/users"
)

const (
	maxBodySize     = 64 * 1024 // 64KB
	contentTypeJSON = "application/json; charset=utf-8"
)

// Directory is the slice of the users package these controllers need.
// Satisfied by both users.Directory and users.CachedDirectory.
type Directory interface {
	usersvc.Lookup
	Create(ctx context.Context, in usersvc.CreateInput) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id string, in usersvc.UpdateInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// Controller handles the /v1/users CRUD surface.
type Controller struct {
	dir Directory
}

func NewController(dir Directory) *Controller {
	return &Controller{dir: dir}
}

// Create handles POST /v1/users. Admin only (enforced in the router).
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("UsersController.Create"))

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("email is required"))
		return
	}

	roles, err := parseRoles(req.Roles)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}

	u, err := c.dir.Create(ctx, usersvc.CreateInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     strings.TrimSpace(req.Name),
		Roles:    roles,
	})
	if err != nil {
		log.Debug("create user failed", logger.Err(err))
		writeUserError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(dto.FromUser(u))
}

// List handles GET /v1/users.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("UsersController.List"))

	all, err := c.dir.List(ctx)
	if err != nil {
		log.Error("list users failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal)
		return
	}

	out := make([]dto.UserResponse, 0, len(all))
	for i := range all {
		out = append(out, dto.FromUser(&all[i]))
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(out)
}

// Get handles GET /v1/users/{id}. The id segment also accepts an email.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("UsersController.Get"))

	id := chi.URLParam(r, "id")
	if id == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("missing user id"))
		return
	}

	u, err := c.dir.Find(ctx, id, false)
	if err != nil {
		log.Debug("get user failed", logger.Err(err))
		writeUserError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(dto.FromUser(u))
}

// Update handles PATCH /v1/users/{id}.
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("UsersController.Update"))

	id := chi.URLParam(r, "id")
	if id == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("missing user id"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}
	if req.Name == nil && req.Password == nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("nothing to update"))
		return
	}

	u, err := c.dir.Update(ctx, id, usersvc.UpdateInput{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		log.Debug("update user failed", logger.Err(err))
		writeUserError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(dto.FromUser(u))
}

// Delete handles DELETE /v1/users/{id}. The caller must pass the
// self-and-admin check; deleting the account also ends its sessions and
// evicts it from the cache.
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("UsersController.Delete"))

	id := chi.URLParam(r, "id")
	if id == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("missing user id"))
		return
	}

	claims := mw.GetClaims(ctx)
	if err := authz.CheckSelfAdmin(claims, id); err != nil {
		httperrors.WriteError(w, httperrors.ErrForbidden)
		return
	}

	if err := c.dir.Delete(ctx, id); err != nil {
		log.Debug("delete user failed", logger.Err(err))
		writeUserError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ─── Helpers ───

func parseRoles(raw []string) ([]domain.Role, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]domain.Role, 0, len(raw))
	for _, s := range raw {
		r := domain.Role(strings.ToUpper(strings.TrimSpace(s)))
		if !r.Valid() {
			return nil, errors.New("unknown role: " + s)
		}
		out = append(out, r)
	}
	return out, nil
}

func writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("user not found"))

	case errors.Is(err, store.ErrConflict):
		httperrors.WriteError(w, httperrors.ErrConflict.WithDetail("email already registered"))

	default:
		httperrors.WriteError(w, httperrors.ErrInternal)
	}
}
