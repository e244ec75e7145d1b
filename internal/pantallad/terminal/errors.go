package terminal

import (
	"fmt"

	werrors "github.com/narabyte/pantalla-signage/internal/pantallad/errors"
)

// ErrNotFound indicates a terminal lookup failure
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("terminal not found: %s", e.ID)
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
	return fmt.Sprintf("version mismatch for terminal %s: concurrent modification detected", e.ID)
}

// Is matches the shared version-mismatch sentinel so errors.IsVersionMismatch
// recognizes repository conflicts
func (e ErrVersionMismatch) Is(target error) bool {
	return target == werrors.ErrVersionMismatch
}

// ErrInvalidName indicates an invalid terminal name
type ErrInvalidName struct {
	Name   string
	Reason string
}

func (e ErrInvalidName) Error() string {
	return fmt.Sprintf("invalid terminal name %q: %s", e.Name, e.Reason)
}

// ErrInvalidScreenType indicates an unknown screen type tag
type ErrInvalidScreenType struct {
	ScreenType string
}

func (e ErrInvalidScreenType) Error() string {
	return fmt.Sprintf("invalid screen type: %q", e.ScreenType)
}

// ErrInvalidBranch indicates a missing or invalid branch reference
type ErrInvalidBranch struct {
	Reason string
}

func (e ErrInvalidBranch) Error() string {
	return fmt.Sprintf("invalid branch: %s", e.Reason)
}

// ErrInvalidAssignment indicates an area assignment on a non-SALON terminal
type ErrInvalidAssignment struct {
	ScreenType string
}

func (e ErrInvalidAssignment) Error() string {
	return fmt.Sprintf("cannot assign an area to a %s terminal", e.ScreenType)
}
