package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	v1alpha1 "github.com/narabyte/pantalla-signage/api/types/v1alpha1"
	"github.com/narabyte/pantalla-signage/internal/pantallad/errors"
	"github.com/narabyte/pantalla-signage/internal/pantallad/event"
)

// service implements the terminal.Service interface by coordinating between
// the domain model, repository, and event service while enforcing business rules.
type service struct {
	repo   Repository
	events event.Service
	logger *slog.Logger
}

// NewService creates a new terminal service instance
func NewService(repo Repository, events event.Service, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// Register creates a new terminal under a branch
func (s *service) Register(ctx context.Context, name string, screenType v1alpha1.ScreenType, branchID uuid.UUID) (*Terminal, error) {
	const op = "TerminalService.Register"

	existing, err := s.repo.FindByName(ctx, name)
	if err != nil && !errors.IsNotFound(err) {
		return nil, errors.NewError("REGISTRATION_FAILED", "failed to check existing terminal", op, err)
	}
	if existing != nil {
		return nil, errors.NewError("TERMINAL_EXISTS", fmt.Sprintf("terminal already exists with name: %s", name), op, errors.ErrConflict)
	}

	t, err := NewTerminal(name, screenType, branchID)
	if err != nil {
		return nil, errors.NewError("INVALID_INPUT", "failed to create terminal", op, err)
	}

	if err := s.repo.Save(ctx, t); err != nil {
		return nil, errors.NewError("SAVE_FAILED", "failed to save terminal", op, err)
	}

	return t, nil
}

// Get retrieves a terminal by ID
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Terminal, error) {
	const op = "TerminalService.Get"

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewError("NOT_FOUND", fmt.Sprintf("terminal not found: %s", id), op, err)
		}
		return nil, errors.NewError("LOOKUP_FAILED", "failed to retrieve terminal", op, err)
	}

	return t, nil
}

// GetByName retrieves a terminal by its internal name
func (s *service) GetByName(ctx context.Context, name string) (*Terminal, error) {
	const op = "TerminalService.GetByName"

	t, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewError("NOT_FOUND", fmt.Sprintf("terminal not found: %s", name), op, err)
		}
		return nil, errors.NewError("LOOKUP_FAILED", "failed to retrieve terminal", op, err)
	}

	return t, nil
}

// List retrieves terminals, optionally filtered by branch
func (s *service) List(ctx context.Context, branchID *uuid.UUID) ([]*Terminal, error) {
	const op = "TerminalService.List"

	terminals, err := s.repo.List(ctx, branchID)
	if err != nil {
		return nil, errors.NewError("LIST_FAILED", "failed to list terminals", op, err)
	}

	return terminals, nil
}

// Update applies display setting changes to a terminal
func (s *service) Update(ctx context.Context, id uuid.UUID, upd Update) (*Terminal, error) {
	const op = "TerminalService.Update"

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewError("NOT_FOUND", fmt.Sprintf("terminal not found: %s", id), op, err)
		}
		return nil, errors.NewError("LOOKUP_FAILED", "failed to retrieve terminal", op, err)
	}

	if upd.Theme != nil {
		t.SetTheme(*upd.Theme)
	}
	if upd.Screensaver != nil {
		t.SetScreensaver(upd.Screensaver)
	}
	if upd.Location != nil {
		t.SetLocation(upd.Location)
	}

	if err := s.repo.Save(ctx, t); err != nil {
		if errors.IsVersionMismatch(err) {
			return nil, errors.NewError("VERSION_CONFLICT", "terminal was modified", op, err)
		}
		return nil, errors.NewError("SAVE_FAILED", "failed to save terminal", op, err)
	}

	return t, nil
}

// AssignArea binds a SALON terminal to the area whose agenda it shows
func (s *service) AssignArea(ctx context.Context, id, areaID uuid.UUID) error {
	const op = "TerminalService.AssignArea"

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.NewError("NOT_FOUND", fmt.Sprintf("terminal not found: %s", id), op, err)
		}
		return errors.NewError("LOOKUP_FAILED", "failed to retrieve terminal", op, err)
	}

	area, err := s.repo.FindArea(ctx, areaID)
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.NewError("NOT_FOUND", fmt.Sprintf("area not found: %s", areaID), op, err)
		}
		return errors.NewError("LOOKUP_FAILED", "failed to retrieve area", op, err)
	}
	if area.BranchID != t.BranchID {
		return errors.NewError("INVALID_INPUT", "area belongs to a different branch", op, errors.ErrInvalidInput)
	}

	if err := t.AssignArea(areaID); err != nil {
		return errors.NewError("INVALID_INPUT", "cannot assign area", op, err)
	}

	if err := s.repo.Save(ctx, t); err != nil {
		if errors.IsVersionMismatch(err) {
			return errors.NewError("VERSION_CONFLICT", "terminal was modified", op, err)
		}
		return errors.NewError("SAVE_FAILED", "failed to save area assignment", op, err)
	}

	return nil
}

// GetScreen assembles the full player payload for a terminal. The response
// always carries the server clock so players can correct for drift.
func (s *service) GetScreen(ctx context.Context, id uuid.UUID) (*v1alpha1.ScreenResponse, error) {
	const op = "TerminalService.GetScreen"

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewError("NOT_FOUND", fmt.Sprintf("terminal not found: %s", id), op, err)
		}
		return nil, errors.NewError("LOOKUP_FAILED", "failed to retrieve terminal", op, err)
	}

	branch, err := s.repo.FindBranch(ctx, t.BranchID)
	if err != nil {
		return nil, errors.NewError("LOOKUP_FAILED", "failed to retrieve branch", op, err)
	}

	now := time.Now().UTC()
	resp := &v1alpha1.ScreenResponse{
		Config: v1alpha1.TerminalConfig{
			InternalName: t.InternalName,
			ScreenType:   t.ScreenType,
			Theme:        t.Theme,
			Logo:         branch.Logo,
			Favicon:      branch.Favicon,
			Screensaver:  t.Screensaver,
		},
		ServerTime: &now,
	}
	if t.Location != nil {
		resp.Config.Location = &v1alpha1.GeoPoint{Lat: t.Location.Lat, Lon: t.Location.Lon}
	}

	switch t.ScreenType {
	case v1alpha1.ScreenTypeSalon:
		if t.AreaID == nil {
			// A SALON terminal without an area renders its screensaver;
			// serve an empty agenda rather than failing the fetch.
			resp.Data.Agenda = &v1alpha1.AgendaPayload{
				DataType: v1alpha1.DataTypeAgenda,
				Events:   []v1alpha1.ScheduledEvent{},
			}
			break
		}
		agenda, err := s.events.AgendaForArea(ctx, *t.AreaID, now)
		if err != nil {
			return nil, errors.NewError("AGENDA_FAILED", "failed to assemble agenda", op, err)
		}
		resp.Data.Agenda = agenda

	case v1alpha1.ScreenTypeDirectory:
		listing, err := s.events.DirectoryForBranch(ctx, t.BranchID, now)
		if err != nil {
			return nil, errors.NewError("DIRECTORY_FAILED", "failed to assemble directory", op, err)
		}
		resp.Data.Directory = listing
	}

	// Best-effort presence tracking; a failed write never fails the fetch
	if err := s.repo.TouchLastSeen(ctx, t.ID); err != nil {
		s.logger.Warn("failed to update terminal last seen",
			"error", err,
			"terminalId", t.ID,
		)
	}

	return resp, nil
}
