package handlers

import (
	"net/http"

	"kakeibo/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIRouter serves the anonymous single-tenant JSON API.
func (h *Handlers) APIRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/expenses", h.ListExpensesJSON)
	r.Post("/api/expenses", h.CreateExpenseJSON)
	r.Delete("/api/expenses/{id}", h.DeleteExpenseJSON)

	return r
}

// WebRouter serves the multi-tenant pages plus the session-scoped JSON
// endpoints.
func (h *Handlers) WebRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.FileServerFS(web.StaticFS))

	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.Register)
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.RequirePage)
		r.Get("/", h.Index)
		r.Post("/", h.CreateExpenseForm)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.RequireJSON)
		r.Get("/api/expenses", h.ListExpensesJSON)
		r.Post("/api/expenses", h.CreateExpenseJSON)
		r.Delete("/api/expenses/{id}", h.DeleteExpenseJSON)
	})

	return r
}
