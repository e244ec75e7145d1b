package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	werrors "github.com/narabyte/pantalla-signage/internal/pantallad/errors"
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

	switch {
	case werrors.IsNotFound(err):
		status = http.StatusNotFound
		code = "NOT_FOUND"
		message = "resource not found"
	case werrors.IsConflict(err):
		status = http.StatusConflict
		code = "CONFLICT"
		message = "resource already exists"
	case werrors.IsVersionMismatch(err):
		status = http.StatusConflict
		code = "VERSION_CONFLICT"
		message = "resource was modified by another request"
	case werrors.IsInvalidInput(err):
		status = http.StatusBadRequest
		code = "INVALID_INPUT"
		message = "invalid input"
	}

	// Prefer the domain error's own code and message when present
	var domainErr *werrors.Error
	if errors.As(err, &domainErr) {
		code = domainErr.Code
		message = domainErr.Message
	}

	var resp errorResponse
	resp.Error.Code = code
	resp.Error.Message = message

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		logger.Error("failed to encode error response",
			"error", encErr,
			"originalError", err,
		)
	}
}
