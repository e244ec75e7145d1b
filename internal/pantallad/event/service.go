package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	v1alpha1 "github.com/narabyte/pantalla-signage/api/types/v1alpha1"
	"github.com/narabyte/pantalla-signage/internal/pantallad/errors"
)

// agendaHorizon bounds how far ahead of "now" the served agenda reaches.
// Players resolve the active event themselves; the horizon only caps payload
// size for areas with long-running bookings.
const agendaHorizon = 7 * 24 * time.Hour

// service implements the event.Service interface by coordinating between the
// domain model, repository, and refresh publisher while enforcing business rules.
type service struct {
	repo      Repository
	publisher RefreshPublisher
	logger    *slog.Logger
}

// NewService creates a new event service instance
func NewService(repo Repository, publisher RefreshPublisher, logger *slog.Logger) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Create validates and stores a new event
func (s *service) Create(ctx context.Context, e *Event) error {
	const op = "EventService.Create"

	if err := e.Validate(); err != nil {
		return errors.NewError("INVALID_INPUT", "invalid event", op, err)
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Version == 0 {
		e.Version = 1
	}

	if err := s.repo.Save(ctx, e); err != nil {
		return errors.NewError("SAVE_FAILED", "failed to save event", op, err)
	}

	s.notify(e.AreaID)
	return nil
}

// Update validates and stores event changes
func (s *service) Update(ctx context.Context, e *Event) error {
	const op = "EventService.Update"

	if err := e.Validate(); err != nil {
		return errors.NewError("INVALID_INPUT", "invalid event", op, err)
	}

	if err := s.repo.Save(ctx, e); err != nil {
		if errors.IsVersionMismatch(err) {
			return errors.NewError("VERSION_CONFLICT", "event was modified", op, err)
		}
		return errors.NewError("SAVE_FAILED", "failed to save event", op, err)
	}

	s.notify(e.AreaID)
	return nil
}

// Delete removes an event
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "EventService.Delete"

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.NewError("NOT_FOUND", fmt.Sprintf("event not found: %s", id), op, err)
		}
		return errors.NewError("LOOKUP_FAILED", "failed to retrieve event", op, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.NewError("DELETE_FAILED", "failed to delete event", op, err)
	}

	s.notify(existing.AreaID)
	return nil
}

// Get retrieves an event by ID
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Event, error) {
	const op = "EventService.Get"

	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewError("NOT_FOUND", fmt.Sprintf("event not found: %s", id), op, err)
		}
		return nil, errors.NewError("LOOKUP_FAILED", "failed to retrieve event", op, err)
	}

	return e, nil
}

// AgendaForArea assembles the agenda payload a SALON terminal renders.
// The window starts at the beginning of today so that recurring events whose
// first occurrence is past still reach the player, and reaches agendaHorizon
// ahead for upcoming bookings.
func (s *service) AgendaForArea(ctx context.Context, areaID uuid.UUID, now time.Time) (*v1alpha1.AgendaPayload, error) {
	const op = "EventService.AgendaForArea"

	from := startOfDay(now)
	entries, err := s.repo.ListForArea(ctx, areaID, from, now.Add(agendaHorizon))
	if err != nil {
		return nil, errors.NewError("LIST_FAILED", "failed to list area events", op, err)
	}

	payload := &v1alpha1.AgendaPayload{
		DataType: v1alpha1.DataTypeAgenda,
		Events:   make([]v1alpha1.ScheduledEvent, 0, len(entries)),
	}
	for _, entry := range entries {
		payload.Events = append(payload.Events, entry.Event.ToWire(entry.RoomName))
	}

	return payload, nil
}

// DirectoryForBranch assembles today's listing a DIRECTORIO terminal renders
func (s *service) DirectoryForBranch(ctx context.Context, branchID uuid.UUID, now time.Time) ([]v1alpha1.DirectoryEntry, error) {
	const op = "EventService.DirectoryForBranch"

	from := startOfDay(now)
	entries, err := s.repo.ListForBranch(ctx, branchID, from, from.Add(24*time.Hour))
	if err != nil {
		return nil, errors.NewError("LIST_FAILED", "failed to list branch events", op, err)
	}

	listing := make([]v1alpha1.DirectoryEntry, 0, len(entries))
	for _, entry := range entries {
		listing = append(listing, v1alpha1.DirectoryEntry{
			RoomName: entry.RoomName,
			Title:    entry.Event.Title,
			Client:   entry.Event.Client,
			Schedule: fmt.Sprintf("%s - %s",
				entry.Event.StartsAt.Format("15:04"),
				entry.Event.EndsAt.Format("15:04"),
			),
		})
	}

	return listing, nil
}

// notify publishes a refresh nudge; publishing failures never fail the operation
func (s *service) notify(areaID uuid.UUID) {
	if s.publisher == nil {
		return
	}
	s.publisher.NotifyScheduleChanged(areaID)
	s.logger.Debug("schedule change published", "areaId", areaID)
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
