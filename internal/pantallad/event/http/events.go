package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/narabyte/pantalla-signage/internal/pantallad/event"
)

// eventRequest is the management API body for creating and updating events
type eventRequest struct {
	AreaID    uuid.UUID  `json:"areaId"`
	Title     string     `json:"title"`
	Client    string     `json:"client,omitempty"`
	Message   string     `json:"message,omitempty"`
	Ticker    string     `json:"ticker,omitempty"`
	StartsAt  time.Time  `json:"startsAt"`
	EndsAt    time.Time  `json:"endsAt"`
	ShowFrom  *time.Time `json:"showFrom,omitempty"`
	ShowUntil *time.Time `json:"showUntil,omitempty"`
	Recurring bool       `json:"recurring"`
	Images    []string   `json:"images,omitempty"`
	Layout    string     `json:"layout,omitempty"`
}

// eventResponse is the management API representation of a stored event
type eventResponse struct {
	ID uuid.UUID `json:"id"`
	eventRequest
	Version int `json:"version"`
}

func toResponse(e *event.Event) eventResponse {
	return eventResponse{
		ID: e.ID,
		eventRequest: eventRequest{
			AreaID:    e.AreaID,
			Title:     e.Title,
			Client:    e.Client,
			Message:   e.Message,
			Ticker:    e.Ticker,
			StartsAt:  e.StartsAt,
			EndsAt:    e.EndsAt,
			ShowFrom:  e.ShowFrom,
			ShowUntil: e.ShowUntil,
			Recurring: e.Recurring,
			Images:    e.Images,
			Layout:    e.Layout,
		},
		Version: e.Version,
	}
}

// CreateEvent handles POST /api/v1alpha1/events
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "INVALID_INPUT", "invalid request body", http.StatusBadRequest, h.logger)
		return
	}

	e, err := event.NewEvent(req.AreaID, req.Title, req.StartsAt, req.EndsAt)
	if err != nil {
		writeError(w, err, http.StatusBadRequest, h.logger)
		return
	}
	applyRequest(e, req)
	if err := e.Validate(); err != nil {
		writeError(w, err, http.StatusBadRequest, h.logger)
		return
	}

	if err := h.service.Create(r.Context(), e); err != nil {
		writeError(w, err, http.StatusInternalServerError, h.logger)
		return
	}

	respondJSON(w, http.StatusCreated, toResponse(e), h.logger)
}

// GetEvent handles GET /api/v1alpha1/events/{eventID}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		writeJSONError(w, "INVALID_INPUT", "invalid event ID", http.StatusBadRequest, h.logger)
		return
	}

	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, toResponse(e), h.logger)
}

// UpdateEvent handles PUT /api/v1alpha1/events/{eventID}
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		writeJSONError(w, "INVALID_INPUT", "invalid event ID", http.StatusBadRequest, h.logger)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "INVALID_INPUT", "invalid request body", http.StatusBadRequest, h.logger)
		return
	}

	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError, h.logger)
		return
	}

	applyRequest(e, req)
	if err := h.service.Update(r.Context(), e); err != nil {
		writeError(w, err, http.StatusInternalServerError, h.logger)
		return
	}

	respondJSON(w, http.StatusOK, toResponse(e), h.logger)
}

// DeleteEvent handles DELETE /api/v1alpha1/events/{eventID}
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		writeJSONError(w, "INVALID_INPUT", "invalid event ID", http.StatusBadRequest, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err, http.StatusInternalServerError, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func applyRequest(e *event.Event, req eventRequest) {
	if req.AreaID != uuid.Nil {
		e.AreaID = req.AreaID
	}
	e.Title = req.Title
	e.Client = req.Client
	e.Message = req.Message
	e.Ticker = req.Ticker
	e.StartsAt = req.StartsAt
	e.EndsAt = req.EndsAt
	e.ShowFrom = req.ShowFrom
	e.ShowUntil = req.ShowUntil
	e.Recurring = req.Recurring
	e.Images = req.Images
	e.Layout = req.Layout
}

func respondJSON(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
