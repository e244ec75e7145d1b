// Package ratelimit protects the public screen endpoint from misbehaving
// players that poll far faster than their configured refresh interval.
package ratelimit

import (
	"context"
	"time"
)

// LimitKey identifies a specific rate limit
type LimitKey struct {
	Type     string // e.g. "screen_fetch"
	RemoteIP string // remote IP for unauthenticated limits
	Endpoint string // API endpoint for specific limits
}

// Limit defines the rate limit configuration
type Limit struct {
	// Rate is the number of operations allowed per period
	Rate int

	// Period is the time window for the rate
	Period time.Duration

	// BurstSize allows a short burst over the rate
	BurstSize int
}

// Store handles rate limit state persistence
type Store interface {
	// Increment attempts to increment a counter and returns the current
	// count. Returns ErrLimitExceeded if the limit is exceeded.
	Increment(ctx context.Context, key LimitKey, limit Limit) (int, error)

	// Reset clears a rate limit counter
	Reset(ctx context.Context, key LimitKey) error
}

// Service manages rate limiting for the application
type Service interface {
	// Allow checks if an operation should be allowed
	Allow(ctx context.Context, key LimitKey) error

	// GetLimit returns the configured limit for a key type
	GetLimit(limitType string) Limit

	// RegisterLimit adds or updates a rate limit configuration
	RegisterLimit(limitType string, limit Limit) error

	// Reset clears rate limit counters for a key
	Reset(ctx context.Context, key LimitKey) error
}

// Error types for rate limiting
var (
	ErrLimitExceeded = Error{Code: "RATE_LIMITED", Message: "rate limit exceeded"}
	ErrStoreError    = Error{Code: "STORE_ERROR", Message: "rate limit store error"}
	ErrInvalidLimit  = Error{Code: "INVALID_LIMIT", Message: "invalid rate limit configuration"}
	ErrInvalidKey    = Error{Code: "INVALID_KEY", Message: "invalid rate limit key"}
)

// Error represents a rate limiting error
type Error struct {
	Code    string
	Message string
}

func (e Error) Error() string {
	return e.Message
}
