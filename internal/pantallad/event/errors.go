package event

import (
	"fmt"

	werrors "github.com/narabyte/pantalla-signage/internal/pantallad/errors"
)

// ErrNotFound indicates an event lookup failure
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("event not found: %s", e.ID)
}

// Is matches the shared not-found sentinel so errors.IsNotFound works
func (e ErrNotFound) Is(target error) bool {
	return target == werrors.ErrNotFound
}

// ErrVersionMismatch indicates a concurrent modification conflict
type ErrVersionMismatch struct {
	ID string
}

func (e ErrVersionMismatch) Error() string {
	return fmt.Sprintf("version mismatch for event %s: concurrent modification detected", e.ID)
}

// Is matches the shared version-mismatch sentinel so errors.IsVersionMismatch
// recognizes repository conflicts
func (e ErrVersionMismatch) Is(target error) bool {
	return target == werrors.ErrVersionMismatch
}

// ErrInvalidEvent indicates a validation failure on event fields
type ErrInvalidEvent struct {
	Reason string
}

func (e ErrInvalidEvent) Error() string {
	return fmt.Sprintf("invalid event: %s", e.Reason)
}

// ErrInvalidWindow indicates an inverted or inconsistent time window
type ErrInvalidWindow struct {
	Reason string
}

func (e ErrInvalidWindow) Error() string {
	return fmt.Sprintf("invalid event window: %s", e.Reason)
}
