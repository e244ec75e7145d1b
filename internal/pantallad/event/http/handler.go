// Package http implements the HTTP admin surface for scheduled events
package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/narabyte/pantalla-signage/internal/pantallad/event"
)

// Handler exposes scheduled-event management endpoints
type Handler struct {
	service event.Service
	logger  *slog.Logger
}

// NewHandler creates an event HTTP handler
func NewHandler(service event.Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "event-http"),
	}
}

// Router returns a router with all event endpoints mounted
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the event management endpoints on the provided router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.CreateEvent)
	r.Route("/{eventID}", func(r chi.Router) {
		r.Get("/", h.GetEvent)
		r.Put("/", h.UpdateEvent)
		r.Delete("/", h.DeleteEvent)
	})
}
