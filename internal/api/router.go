// Package api provides the HTTP API for the status relay.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/statusrelay/statusrelay/internal/api/handler"
	"github.com/statusrelay/statusrelay/internal/api/middleware"
	"github.com/statusrelay/statusrelay/internal/relay"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version      string
	BuildTime    string
	Logger       zerolog.Logger
	ServiceName  string
	Metrics      *middleware.Metrics
	RelayService *relay.Service

	// DestinationBus is reported by the readiness endpoint.
	DestinationBus string
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "status-relay"
	}

	// Global middleware - order matters.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS) // answers preflight for the browser UI

	statusHandler := handler.NewStatusHandler(cfg.RelayService)
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DestinationBus)

	statusRateLimit := middleware.RateLimitByIP(middleware.StatusRateLimit)

	r.Route("/v1", func(r chi.Router) {
		// Status submission (public, browser-called) - rate limited.
		r.With(statusRateLimit).Post("/status", statusHandler.SubmitStatusChange)

		// Ops endpoints (public).
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})
	})

	return r
}
