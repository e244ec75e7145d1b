package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// GetScreen serves the full player payload for a terminal. This is the
// endpoint every screen polls on its refresh interval, so it accepts both
// the terminal UUID and its internal name.
func (h *Handler) GetScreen(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	idStr := chi.URLParam(r, "terminalID")

	id, err := h.resolveTerminalID(r, idStr)
	if err != nil {
		h.logger.Info("screen fetch for unknown terminal",
			"requestId", reqID,
			"terminal", idStr,
		)
		writeError(w, err, http.StatusNotFound, h.logger)
		return
	}

	resp, err := h.service.GetScreen(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to assemble screen payload",
			"error", err,
			"requestId", reqID,
			"terminalId", id,
		)
		writeError(w, err, http.StatusInternalServerError, h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode screen payload",
			"error", err,
			"requestId", reqID,
			"terminalId", id,
		)
	}
}

// resolveTerminalID accepts a UUID directly or falls back to a name lookup
func (h *Handler) resolveTerminalID(r *http.Request, idStr string) (uuid.UUID, error) {
	if id, err := uuid.Parse(idStr); err == nil {
		return id, nil
	}

	t, err := h.service.GetByName(r.Context(), idStr)
	if err != nil {
		return uuid.Nil, err
	}
	return t.ID, nil
}
