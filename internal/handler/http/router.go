// Package http exposes the catalog over JSON/HTTP.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AdrielSA/backend-test/internal/service"
	"github.com/AdrielSA/backend-test/pkg/health"
	"github.com/AdrielSA/backend-test/pkg/middleware"
)

// RouterConfig carries the collaborators of NewRouter.
type RouterConfig struct {
	Movies  *service.MovieService
	Reviews *service.ReviewService
	Health  *health.Handler
	// Metrics instruments every request when set.
	Metrics *middleware.HTTPMetrics
	// MetricsHandler is served at /metrics when set.
	MetricsHandler http.Handler
	// RateLimitRPS limits each client on the API routes when positive.
	RateLimitRPS      float64
	RateLimitBurst    int
	PprofAllowedCIDRs []string
	Logger            *slog.Logger
}

// NewRouter creates a chi router with all catalog routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Tracing())
	r.Use(middleware.RequestLogging(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	// Operational endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, cfg.Logger)

	movieHandler := NewMovieHandler(cfg.Movies, cfg.Logger)
	reviewHandler := NewReviewHandler(cfg.Reviews, cfg.Logger)

	r.Route("/api/v1/movies", func(r chi.Router) {
		if cfg.RateLimitRPS > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Logger))
		}
		r.Use(ContentTypeJSON)

		r.Post("/", movieHandler.CreateMovie)
		r.Get("/", movieHandler.ListMovies)
		r.Get("/{id}", movieHandler.GetMovie)
		r.Get("/{id}/details", movieHandler.GetMovieDetails)
		r.Patch("/{id}/disable", movieHandler.DisableMovie)

		r.Post("/{movieId}/reviews", reviewHandler.CreateReview)
		r.Get("/{movieId}/reviews", reviewHandler.ListReviews)
	})

	return r
}
