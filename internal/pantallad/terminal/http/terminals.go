package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	v1alpha1 "github.com/narabyte/pantalla-signage/api/types/v1alpha1"
	werrors "github.com/narabyte/pantalla-signage/internal/pantallad/errors"
	"github.com/narabyte/pantalla-signage/internal/pantallad/terminal"
)

// registerRequest is the body for terminal registration
type registerRequest struct {
	Name       string              `json:"name"`
	ScreenType v1alpha1.ScreenType `json:"screenType"`
	BranchID   uuid.UUID           `json:"branchId"`
}

// assignAreaRequest is the body for area assignment
type assignAreaRequest struct {
	AreaID uuid.UUID `json:"areaId"`
}

// updateRequest is the body for display setting changes; nil fields are
// left unchanged
type updateRequest struct {
	Theme       *string            `json:"theme"`
	Screensaver []string           `json:"screensaver"`
	Location    *v1alpha1.GeoPoint `json:"location"`
}

// RegisterTerminal creates a new terminal under a branch
func (h *Handler) RegisterTerminal(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, werrors.NewError("INVALID_INPUT", "malformed request body", "RegisterTerminal", werrors.ErrInvalidInput), http.StatusBadRequest, h.logger)
		return
	}

	t, err := h.service.Register(r.Context(), req.Name, req.ScreenType, req.BranchID)
	if err != nil {
		h.logger.Error("failed to register terminal",
			"error", err,
			"requestId", reqID,
			"name", req.Name,
		)
		writeError(w, err, http.StatusInternalServerError, h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toWire(t)); err != nil {
		h.logger.Error("failed to encode response", "error", err, "requestId", reqID)
	}
}

// GetTerminal returns a terminal by ID
func (h *Handler) GetTerminal(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "terminalID"))
	if err != nil {
		writeError(w, werrors.NewError("INVALID_INPUT", "terminal ID must be a UUID", "GetTerminal", werrors.ErrInvalidInput), http.StatusBadRequest, h.logger)
		return
	}

	t, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get terminal",
			"error", err,
			"requestId", reqID,
			"terminalId", id,
		)
		writeError(w, err, http.StatusInternalServerError, h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toWire(t)); err != nil {
		h.logger.Error("failed to encode response", "error", err, "requestId", reqID)
	}
}

// ListTerminals returns all terminals, optionally filtered by branch
func (h *Handler) ListTerminals(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var branchID *uuid.UUID
	if raw := r.URL.Query().Get("branchId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, werrors.NewError("INVALID_INPUT", "branchId must be a UUID", "ListTerminals", werrors.ErrInvalidInput), http.StatusBadRequest, h.logger)
			return
		}
		branchID = &id
	}

	terminals, err := h.service.List(r.Context(), branchID)
	if err != nil {
		h.logger.Error("failed to list terminals",
			"error", err,
			"requestId", reqID,
		)
		writeError(w, err, http.StatusInternalServerError, h.logger)
		return
	}

	resp := v1alpha1.TerminalList{
		Items:      make([]v1alpha1.Terminal, 0, len(terminals)),
		TotalCount: len(terminals),
	}
	for _, t := range terminals {
		resp.Items = append(resp.Items, *toWire(t))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode response", "error", err, "requestId", reqID)
	}
}

// UpdateTerminal applies display setting changes to a terminal
func (h *Handler) UpdateTerminal(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "terminalID"))
	if err != nil {
		writeError(w, werrors.NewError("INVALID_INPUT", "terminal ID must be a UUID", "UpdateTerminal", werrors.ErrInvalidInput), http.StatusBadRequest, h.logger)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, werrors.NewError("INVALID_INPUT", "malformed request body", "UpdateTerminal", werrors.ErrInvalidInput), http.StatusBadRequest, h.logger)
		return
	}

	upd := terminal.Update{
		Theme:       req.Theme,
		Screensaver: req.Screensaver,
	}
	if req.Location != nil {
		upd.Location = &terminal.Location{Lat: req.Location.Lat, Lon: req.Location.Lon}
	}

	t, err := h.service.Update(r.Context(), id, upd)
	if err != nil {
		h.logger.Error("failed to update terminal",
			"error", err,
			"requestId", reqID,
			"terminalId", id,
		)
		writeError(w, err, http.StatusInternalServerError, h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toWire(t)); err != nil {
		h.logger.Error("failed to encode response", "error", err, "requestId", reqID)
	}
}

// AssignArea binds a SALON terminal to an area
func (h *Handler) AssignArea(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "terminalID"))
	if err != nil {
		writeError(w, werrors.NewError("INVALID_INPUT", "terminal ID must be a UUID", "AssignArea", werrors.ErrInvalidInput), http.StatusBadRequest, h.logger)
		return
	}

	var req assignAreaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, werrors.NewError("INVALID_INPUT", "malformed request body", "AssignArea", werrors.ErrInvalidInput), http.StatusBadRequest, h.logger)
		return
	}

	if err := h.service.AssignArea(r.Context(), id, req.AreaID); err != nil {
		h.logger.Error("failed to assign area",
			"error", err,
			"requestId", reqID,
			"terminalId", id,
			"areaId", req.AreaID,
		)
		writeError(w, err, http.StatusInternalServerError, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// NudgeRefresh pushes a refresh control message to the terminal's players
func (h *Handler) NudgeRefresh(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "terminalID"))
	if err != nil {
		writeError(w, werrors.NewError("INVALID_INPUT", "terminal ID must be a UUID", "NudgeRefresh", werrors.ErrInvalidInput), http.StatusBadRequest, h.logger)
		return
	}

	h.hub.NotifyRefresh(id)
	w.WriteHeader(http.StatusAccepted)
}

// toWire converts a domain terminal to its API representation
func toWire(t *terminal.Terminal) *v1alpha1.Terminal {
	resp := &v1alpha1.Terminal{
		TypeMeta: v1alpha1.TypeMeta{
			Kind:       "Terminal",
			APIVersion: "v1alpha1",
		},
		ObjectMeta: v1alpha1.ObjectMeta{
			ID:   t.ID,
			Name: t.InternalName,
		},
		Spec: v1alpha1.TerminalSpec{
			ScreenType:  t.ScreenType,
			Theme:       t.Theme,
			AreaID:      t.AreaID,
			Screensaver: t.Screensaver,
		},
		Status: v1alpha1.TerminalStatus{
			LastSeen: t.LastSeen,
			Version:  t.Version,
		},
	}
	if t.Location != nil {
		resp.Spec.Location = &v1alpha1.GeoPoint{Lat: t.Location.Lat, Lon: t.Location.Lon}
	}
	return resp
}
