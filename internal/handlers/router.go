package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"parsegate/internal/parser"
	"parsegate/internal/repositories"
	"parsegate/internal/services"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Auth     *services.AuthService
	Registry *services.RegistryService
	Tokens   *services.TokenIssuer
	Parser   parser.Parser
	Audit    repositories.AuditRepository
}

func NewRouter(deps Deps) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	h := &Handler{deps: deps}

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/devices/register", h.RegisterDevice)
		r.Post("/parse", h.Parse)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Post("/login", h.AdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(RequireOperator(deps.Auth))
			r.Post("/logout", h.AdminLogout)
			r.Get("/devices/{deviceID}", h.GetDevice)
			r.Delete("/devices/{deviceID}", h.RevokeDevice)
		})
	})

	return router
}

// Handler holds the route implementations.
type Handler struct {
	deps Deps
}
