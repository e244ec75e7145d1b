package event

import (
	"context"
	"time"

	"github.com/google/uuid"

	v1alpha1 "github.com/narabyte/pantalla-signage/api/types/v1alpha1"
)

// AgendaEntry pairs an event with the name of its room for payload assembly
type AgendaEntry struct {
	Event    Event
	RoomName string
}

// Repository defines the storage interface for scheduled events
type Repository interface {
	// Save persists an event, creating it if new and enforcing optimistic
	// concurrency on updates
	Save(ctx context.Context, e *Event) error

	// FindByID retrieves an event by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Event, error)

	// Delete removes an event
	Delete(ctx context.Context, id uuid.UUID) error

	// ListForArea returns the events of one area whose effective window
	// overlaps [from, until], ordered by effective start
	ListForArea(ctx context.Context, areaID uuid.UUID, from, until time.Time) ([]AgendaEntry, error)

	// ListForBranch returns the events across all areas of a branch whose
	// effective window overlaps [from, until], ordered by room then start
	ListForBranch(ctx context.Context, branchID uuid.UUID, from, until time.Time) ([]AgendaEntry, error)

	// PurgeEndedBefore deletes events whose effective window ended before
	// the cutoff and returns the number removed
	PurgeEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service defines the scheduled-event business operations
type Service interface {
	// Create validates and stores a new event
	Create(ctx context.Context, e *Event) error

	// Update validates and stores event changes
	Update(ctx context.Context, e *Event) error

	// Delete removes an event
	Delete(ctx context.Context, id uuid.UUID) error

	// Get retrieves an event by ID
	Get(ctx context.Context, id uuid.UUID) (*Event, error)

	// AgendaForArea assembles the agenda payload a SALON terminal renders
	AgendaForArea(ctx context.Context, areaID uuid.UUID, now time.Time) (*v1alpha1.AgendaPayload, error)

	// DirectoryForBranch assembles today's listing a DIRECTORIO terminal renders
	DirectoryForBranch(ctx context.Context, branchID uuid.UUID, now time.Time) ([]v1alpha1.DirectoryEntry, error)
}

// RefreshPublisher nudges connected players after schedule mutations so they
// re-fetch ahead of their normal refresh interval
type RefreshPublisher interface {
	// NotifyScheduleChanged announces that an area's agenda changed
	NotifyScheduleChanged(areaID uuid.UUID)
}
