package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/EcommerceGo/storefront/internal/guard"
	"github.com/utafrali/EcommerceGo/storefront/pkg/health"
	"github.com/utafrali/EcommerceGo/storefront/pkg/middleware"
)

// NewRouter creates the chi router for the storefront shell. Every view
// passes the route guard; sign-in attempts are throttled per client.
func NewRouter(h *Handler, table *guard.Table, limiter *middleware.Limiter, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing)
	r.Use(middleware.Metrics)
	r.Use(middleware.RequestLogger(logger, h.identity))

	// Probes and metrics bypass the guard.
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(guard.Middleware(table, h.sessions, logger))

		r.Get("/", h.Home)
		r.Get("/products", h.Catalog)
		r.Get("/session", h.Session)

		r.Get(guard.LoginPath, h.LoginForm)
		r.With(middleware.RateLimit(limiter, logger)).Post(guard.LoginPath, h.Login)
		r.Post("/logout", h.Logout)

		r.Route(guard.AdminPath, func(r chi.Router) {
			r.Get("/", h.Dashboard)
			r.Get("/users", h.ListUsers)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.ListProducts)
				r.Post("/", h.CreateProduct)
				r.Put("/{id}", h.UpdateProduct)
				r.Post("/{id}/delete", h.RequestDelete)
				r.Delete("/{id}/delete", h.ConfirmDelete)
				r.Post("/{id}/delete/cancel", h.CancelDelete)
				r.Delete("/{id}/image", h.RemoveImage)
			})
		})
	})

	return r
}
