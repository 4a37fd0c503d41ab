package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes wires the router. rateLimiter may be nil, in which case the
// POST route runs unthrottled.
func SetupRoutes(h *Handlers, rateLimiter *RateLimiter, development bool) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// The form posts cross-origin from the storefront help pages.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Set before mounting so subrouters inherit the envelope-shaped 404.
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/", h.Index)

		r.Route("/support", func(r chi.Router) {
			if rateLimiter != nil {
				r.With(rateLimiter.Middleware).Post("/", h.CreateSupport)
			} else {
				r.Post("/", h.CreateSupport)
			}

			// Full submission listing stays out of production.
			if development {
				r.Get("/", h.ListSupport)
			}

			r.Get("/{id}", h.GetSupport)
		})
	})

	return r
}
