package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	werrors "github.com/narabyte/pantalla-signage/internal/pantallad/errors"
	"github.com/narabyte/pantalla-signage/internal/pantallad/event"
)

// errorResponse is the JSON error envelope returned by the API
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// writeError maps domain errors to HTTP status codes and writes the JSON
// error envelope
func writeError(w http.ResponseWriter, err error, defaultStatus int, logger *slog.Logger) {
	status := defaultStatus
	code := "INTERNAL"
	message := "an unexpected error occurred"

	var invalidEvent event.ErrInvalidEvent
	var invalidWindow event.ErrInvalidWindow
	var notFound event.ErrNotFound
	var versionMismatch event.ErrVersionMismatch

	switch {
	case werrors.IsNotFound(err) || errors.As(err, &notFound):
		status = http.StatusNotFound
		code = "NOT_FOUND"
		message = "event not found"
	case werrors.IsVersionMismatch(err) || errors.As(err, &versionMismatch):
		status = http.StatusConflict
		code = "VERSION_CONFLICT"
		message = "event was modified by another request"
	case errors.As(err, &invalidEvent), errors.As(err, &invalidWindow):
		status = http.StatusBadRequest
		code = "INVALID_INPUT"
		message = err.Error()
	case werrors.IsInvalidInput(err):
		status = http.StatusBadRequest
		code = "INVALID_INPUT"
		message = "invalid input"
	}

	var domainErr *werrors.Error
	if errors.As(err, &domainErr) {
		code = domainErr.Code
		message = domainErr.Message
	}

	writeJSONError(w, code, message, status, logger)
}

func writeJSONError(w http.ResponseWriter, code, message string, status int, logger *slog.Logger) {
	var resp errorResponse
	resp.Error.Code = code
	resp.Error.Message = message

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}
