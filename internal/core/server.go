// Package core provides the API chassis for the GridPulse inbound surface.
// It builds a chi router and enforces cross-cutting concerns -- panic
// recovery, request correlation, structured request logging, and per-client
// rate limiting -- before requests reach the feed proxy and snapshot
// handlers.
package core

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gridpulse/internal/config"
)

// Server encapsulates all dependencies for the GridPulse API, allowing for
// easy injection during testing and distinct configuration for different
// environments.
type Server struct {
	Config         *config.Config
	Logger         *slog.Logger
	RateLimitStore RateLimitStore
	HealthProbes   []HealthProbe

	// V1RouteRegistrars are populated by the application entry point with
	// handler mount functions. The indirection avoids an import cycle
	// between core and the handler packages.
	V1RouteRegistrars []func(chi.Router)

	router *chi.Mux
}

// NewServer initializes dependencies and prepares the server for route
// mounting. The caller mounts routes via MountRoutes after construction;
// this separation lets tests customize route registration.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config: cfg,
		Logger: logger,
		router: chi.NewRouter(),
	}, nil
}

// Handler returns the http.Handler interface for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}
