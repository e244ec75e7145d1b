// Package http exposes the terminal domain over HTTP: the public screen
// endpoint players poll, and the management API the CMS uses.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/narabyte/pantalla-signage/internal/pantallad/metrics"
	"github.com/narabyte/pantalla-signage/internal/pantallad/ratelimit"
	"github.com/narabyte/pantalla-signage/internal/pantallad/terminal"
)

// RateLimitScreenFetch is the limit type applied to the public screen endpoint
const RateLimitScreenFetch = "screen_fetch"

// Handler encapsulates the HTTP API for terminals
type Handler struct {
	service   terminal.Service
	ratelimit ratelimit.Service
	hub       *Hub
	logger    *slog.Logger
}

// NewHandler creates a new HTTP handler for terminal endpoints
func NewHandler(service terminal.Service, ratelimit ratelimit.Service, hub *Hub, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		ratelimit: ratelimit,
		hub:       hub,
		logger:    logger,
	}
}

// Router returns the HTTP router for terminal endpoints
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	// Basic middleware for all routes
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(requestIDHeaderMiddleware)
	r.Use(recoverMiddleware(h.logger))
	r.Use(logMiddleware(h.logger))
	r.Use(metrics.Middleware)

	// Public health check endpoints
	r.Group(func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
		r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
	})

	// Public player endpoint, polled by every screen
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))
		r.Use(ratelimit.Middleware(h.ratelimit, RateLimitScreenFetch, h.logger))

		r.Get("/api/pantalla/{terminalID}", h.GetScreen)
	})

	// Management API
	r.Route("/api/v1alpha1/terminals", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/", h.ListTerminals)
		r.Post("/", h.RegisterTerminal)
		r.Get("/{terminalID}", h.GetTerminal)
		r.Put("/{terminalID}", h.UpdateTerminal)
		r.Put("/{terminalID}/area", h.AssignArea)
		r.Post("/{terminalID}/refresh", h.NudgeRefresh)

		// Player control channel
		r.Get("/{terminalID}/ws", h.ServeControlSocket)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
		})
	})

	return r
}
