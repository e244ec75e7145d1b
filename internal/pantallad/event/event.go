// Package event implements the scheduled-event domain model and business logic
package event

import (
	"time"

	"github.com/google/uuid"

	v1alpha1 "github.com/narabyte/pantalla-signage/api/types/v1alpha1"
)

// Event is a schedulable entry in an area's agenda
type Event struct {
	// ID is the unique identifier for this event
	ID uuid.UUID
	// AreaID is the room/zone this event belongs to
	AreaID uuid.UUID
	// Title is the headline shown on the board
	Title string
	// Client is the optional customer/organizer name
	Client string
	// Message is optional free text
	Message string
	// Ticker is optional scrolling text
	Ticker string
	// StartsAt and EndsAt bound the nominal event window
	StartsAt time.Time
	EndsAt   time.Time
	// ShowFrom and ShowUntil optionally widen the window shown to players
	// so promotional material runs before and after the event itself
	ShowFrom  *time.Time
	ShowUntil *time.Time
	// Recurring repeats the time-of-day window daily within the outer bounds
	Recurring bool
	// Images is the ordered promotional image rotation
	Images []string
	// Layout hints the player layout for this event
	Layout string
	// Version tracks optimistic concurrency control
	Version int
}

// NewEvent creates a validated event for an area
func NewEvent(areaID uuid.UUID, title string, startsAt, endsAt time.Time) (*Event, error) {
	e := &Event{
		ID:       uuid.New(),
		AreaID:   areaID,
		Title:    title,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Version:  1,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the event's invariants before storage. Players skip
// inverted windows at render time, but the server refuses to create them.
func (e *Event) Validate() error {
	if e.Title == "" {
		return ErrInvalidEvent{Reason: "title cannot be empty"}
	}
	if e.AreaID == uuid.Nil {
		return ErrInvalidEvent{Reason: "area ID cannot be empty"}
	}
	if e.EndsAt.Before(e.StartsAt) {
		return ErrInvalidWindow{Reason: "event ends before it starts"}
	}
	if e.ShowFrom != nil && e.ShowUntil != nil && e.ShowUntil.Before(*e.ShowFrom) {
		return ErrInvalidWindow{Reason: "visualization window ends before it starts"}
	}
	return nil
}

// EffectiveWindow returns the instants governing visibility on players
func (e *Event) EffectiveWindow() (start, end time.Time) {
	start, end = e.StartsAt, e.EndsAt
	if e.ShowFrom != nil {
		start = *e.ShowFrom
	}
	if e.ShowUntil != nil {
		end = *e.ShowUntil
	}
	return start, end
}

// ToWire converts the event to its API representation for an agenda payload
func (e *Event) ToWire(roomName string) v1alpha1.ScheduledEvent {
	return v1alpha1.ScheduledEvent{
		ID:        e.ID,
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
		RoomName:  roomName,
	}
}
