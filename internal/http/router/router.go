// Package router assembles the HTTP surface of the service.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dropDatabas3/authcore/internal/domain"
	authctrl "github.com/dropDatabas3/authcore/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/authcore/internal/http/controllers/health"
	usersctrl "github.com/dropDatabas3/authcore/internal/http/controllers/users"
	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	mw "github.com/dropDatabas3/authcore/internal/http/middlewares"
	jwtx "github.com/dropDatabas3/authcore/internal/jwt"
)

// Deps holds everything the router wires together.
type Deps struct {
	Issuer *jwtx.Issuer

	Auth   *authctrl.Controllers
	Users  *usersctrl.Controller
	Health *healthctrl.Controller

	// Metrics serves GET /metrics; usually promhttp.Handler(). Nil disables
	// the endpoint.
	Metrics http.Handler
}

// New builds the chi router with the full route table.
func New(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(mw.WithRequestID())
	r.Use(mw.WithLogging())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	r.Get("/healthz", d.Health.Live)
	r.Get("/readyz", d.Health.Ready)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", d.Auth.Register.Register)
			r.Post("/login", d.Auth.Login.Login)
			r.Post("/refresh", d.Auth.Refresh.Refresh)
			r.Post("/logout", d.Auth.Logout.Logout)
			r.Post("/google", d.Auth.Google.Login)

			r.With(mw.RequireAuth(d.Issuer)).Get("/me", d.Auth.Me.Me)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(mw.RequireAuth(d.Issuer))

			// Creating and enumerating accounts is an admin surface.
			r.With(mw.RequireRole(domain.RoleAdmin)).Post("/", d.Users.Create)
			r.With(mw.RequireRole(domain.RoleAdmin)).Get("/", d.Users.List)

			r.Get("/{id}", d.Users.Get)
			r.Patch("/{id}", d.Users.Update)
			r.Delete("/{id}", d.Users.Delete)
		})
	})

	return r
}
