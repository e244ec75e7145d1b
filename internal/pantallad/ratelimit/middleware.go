package ratelimit

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
)

// Middleware enforces the named limit type on the wrapped routes. Store
// outages fail open: a broken Redis must not blank every screen in a
// building, so the request is allowed and the failure logged.
func Middleware(service Service, limitType string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := middleware.GetReqID(r.Context())

			key := LimitKey{
				Type:     limitType,
				RemoteIP: r.RemoteAddr,
				Endpoint: r.URL.Path,
			}

			err := service.Allow(r.Context(), key)
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}

			if errors.Is(err, ErrLimitExceeded) {
				limit := service.GetLimit(limitType)
				w.Header().Set("Retry-After", strconv.Itoa(int(limit.Period.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				if _, werr := w.Write([]byte(`{"error":"rate limit exceeded"}`)); werr != nil {
					logger.Error("failed to write rate limit response", "error", werr)
				}
				logger.Info("request rate limited",
					"requestId", reqID,
					"type", limitType,
					"remoteIP", key.RemoteIP,
					"path", key.Endpoint,
				)
				return
			}

			logger.Error("rate limit check failed, allowing request",
				"error", err,
				"requestId", reqID,
				"type", limitType,
				"path", key.Endpoint,
			)
			next.ServeHTTP(w, r)
		})
	}
}
