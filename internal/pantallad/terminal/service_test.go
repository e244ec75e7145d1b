package terminal

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	v1alpha1 "github.com/narabyte/pantalla-signage/api/types/v1alpha1"
	"github.com/narabyte/pantalla-signage/internal/pantallad/errors"
	"github.com/narabyte/pantalla-signage/internal/pantallad/event"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Save(ctx context.Context, t *Terminal) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (*Terminal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Terminal), args.Error(1)
}

func (m *mockRepository) FindByName(ctx context.Context, name string) (*Terminal, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Terminal), args.Error(1)
}

func (m *mockRepository) List(ctx context.Context, branchID *uuid.UUID) ([]*Terminal, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Terminal), args.Error(1)
}

func (m *mockRepository) FindBranch(ctx context.Context, id uuid.UUID) (*Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Branch), args.Error(1)
}

func (m *mockRepository) FindArea(ctx context.Context, id uuid.UUID) (*Area, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Area), args.Error(1)
}

func (m *mockRepository) TouchLastSeen(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockEventService struct {
	mock.Mock
}

func (m *mockEventService) Create(ctx context.Context, e *event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *mockEventService) Update(ctx context.Context, e *event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *mockEventService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockEventService) Get(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *mockEventService) AgendaForArea(ctx context.Context, areaID uuid.UUID, now time.Time) (*v1alpha1.AgendaPayload, error) {
	args := m.Called(ctx, areaID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*v1alpha1.AgendaPayload), args.Error(1)
}

func (m *mockEventService) DirectoryForBranch(ctx context.Context, branchID uuid.UUID, now time.Time) ([]v1alpha1.DirectoryEntry, error) {
	args := m.Called(ctx, branchID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]v1alpha1.DirectoryEntry), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.New()

	t.Run("creates terminal when name is free", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("FindByName", ctx, "LOBBY-NORTE-1").Return(nil, errors.ErrNotFound)
		repo.On("Save", ctx, mock.AnythingOfType("*terminal.Terminal")).Return(nil)

		svc := NewService(repo, &mockEventService{}, testLogger())
		term, err := svc.Register(ctx, "LOBBY-NORTE-1", v1alpha1.ScreenTypeDirectory, branchID)

		require.NoError(t, err)
		assert.Equal(t, "LOBBY-NORTE-1", term.InternalName)
		assert.Equal(t, v1alpha1.ScreenTypeDirectory, term.ScreenType)
		assert.Equal(t, branchID, term.BranchID)
		assert.Equal(t, 1, term.Version)
		repo.AssertExpectations(t)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		repo := &mockRepository{}
		existing := &Terminal{ID: uuid.New(), InternalName: "LOBBY-NORTE-1"}
		repo.On("FindByName", ctx, "LOBBY-NORTE-1").Return(existing, nil)

		svc := NewService(repo, &mockEventService{}, testLogger())
		_, err := svc.Register(ctx, "LOBBY-NORTE-1", v1alpha1.ScreenTypeDirectory, branchID)

		require.Error(t, err)
		assert.True(t, errors.IsConflict(err))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown screen type", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("FindByName", ctx, "LOBBY-NORTE-1").Return(nil, errors.ErrNotFound)

		svc := NewService(repo, &mockEventService{}, testLogger())
		_, err := svc.Register(ctx, "LOBBY-NORTE-1", v1alpha1.ScreenType("BILLBOARD"), branchID)

		require.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestService_AssignArea(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.New()
	termID := uuid.New()
	areaID := uuid.New()

	t.Run("binds salon terminal to area", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("FindByID", ctx, termID).Return(&Terminal{
			ID:         termID,
			ScreenType: v1alpha1.ScreenTypeSalon,
			BranchID:   branchID,
			Version:    1,
		}, nil)
		repo.On("FindArea", ctx, areaID).Return(&Area{ID: areaID, BranchID: branchID, Name: "Salon A"}, nil)
		repo.On("Save", ctx, mock.MatchedBy(func(term *Terminal) bool {
			return term.AreaID != nil && *term.AreaID == areaID
		})).Return(nil)

		svc := NewService(repo, &mockEventService{}, testLogger())
		require.NoError(t, svc.AssignArea(ctx, termID, areaID))
		repo.AssertExpectations(t)
	})

	t.Run("rejects area from a different branch", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("FindByID", ctx, termID).Return(&Terminal{
			ID:         termID,
			ScreenType: v1alpha1.ScreenTypeSalon,
			BranchID:   branchID,
		}, nil)
		repo.On("FindArea", ctx, areaID).Return(&Area{ID: areaID, BranchID: uuid.New()}, nil)

		svc := NewService(repo, &mockEventService{}, testLogger())
		err := svc.AssignArea(ctx, termID, areaID)

		require.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects non-salon terminal", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("FindByID", ctx, termID).Return(&Terminal{
			ID:         termID,
			ScreenType: v1alpha1.ScreenTypeDirectory,
			BranchID:   branchID,
		}, nil)
		repo.On("FindArea", ctx, areaID).Return(&Area{ID: areaID, BranchID: branchID}, nil)

		svc := NewService(repo, &mockEventService{}, testLogger())
		err := svc.AssignArea(ctx, termID, areaID)

		require.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	termID := uuid.New()
	theme := "light"

	t.Run("applies only the provided fields", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("FindByID", ctx, termID).Return(&Terminal{
			ID:          termID,
			ScreenType:  v1alpha1.ScreenTypeDirectory,
			Theme:       "dark",
			Screensaver: []string{"idle/a.png"},
			Version:     1,
		}, nil)
		repo.On("Save", ctx, mock.MatchedBy(func(term *Terminal) bool {
			return term.Theme == "light" && len(term.Screensaver) == 1
		})).Return(nil)

		svc := NewService(repo, &mockEventService{}, testLogger())
		updated, err := svc.Update(ctx, termID, Update{Theme: &theme})

		require.NoError(t, err)
		assert.Equal(t, "light", updated.Theme)
		assert.Equal(t, []string{"idle/a.png"}, updated.Screensaver)
		repo.AssertExpectations(t)
	})

	t.Run("concurrent modification", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("FindByID", ctx, termID).Return(&Terminal{ID: termID, Version: 1}, nil)
		// The repository reports conflicts with its own struct, not the sentinel
		repo.On("Save", ctx, mock.Anything).Return(ErrVersionMismatch{ID: termID.String()})

		svc := NewService(repo, &mockEventService{}, testLogger())
		_, err := svc.Update(ctx, termID, Update{Theme: &theme})

		require.Error(t, err)
		assert.True(t, errors.IsVersionMismatch(err))
	})
}

func TestService_GetScreen(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.New()
	termID := uuid.New()
	areaID := uuid.New()

	branch := &Branch{
		ID:        branchID,
		Name:      "Norte",
		BrandName: "Hotel Norte",
		Logo:      "logo.svg",
		Favicon:   "favicon.ico",
	}

	t.Run("salon terminal gets agenda and server time", func(t *testing.T) {
		repo := &mockRepository{}
		events := &mockEventService{}
		repo.On("FindByID", ctx, termID).Return(&Terminal{
			ID:           termID,
			InternalName: "SALON-A-1",
			ScreenType:   v1alpha1.ScreenTypeSalon,
			Theme:        "dark",
			BranchID:     branchID,
			AreaID:       &areaID,
			Location:     &Location{Lat: 19.43, Lon: -99.13},
		}, nil)
		repo.On("FindBranch", ctx, branchID).Return(branch, nil)
		repo.On("TouchLastSeen", ctx, termID).Return(nil)
		events.On("AgendaForArea", ctx, areaID, mock.AnythingOfType("time.Time")).Return(&v1alpha1.AgendaPayload{
			DataType: v1alpha1.DataTypeAgenda,
			Events: []v1alpha1.ScheduledEvent{
				{Title: "conference", Client: "acme", RoomName: "Salon A"},
			},
		}, nil)

		svc := NewService(repo, events, testLogger())
		before := time.Now().UTC()
		resp, err := svc.GetScreen(ctx, termID)
		after := time.Now().UTC()

		require.NoError(t, err)
		assert.Equal(t, "SALON-A-1", resp.Config.InternalName)
		assert.Equal(t, v1alpha1.ScreenTypeSalon, resp.Config.ScreenType)
		assert.Equal(t, "logo.svg", resp.Config.Logo)
		require.NotNil(t, resp.Config.Location)
		assert.InDelta(t, 19.43, resp.Config.Location.Lat, 0.0001)
		require.NotNil(t, resp.ServerTime)
		assert.False(t, resp.ServerTime.Before(before))
		assert.False(t, resp.ServerTime.After(after))
		require.NotNil(t, resp.Data.Agenda)
		assert.Equal(t, "conference", resp.Data.Agenda.Events[0].Title)
		repo.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("salon terminal without area gets empty agenda", func(t *testing.T) {
		repo := &mockRepository{}
		events := &mockEventService{}
		repo.On("FindByID", ctx, termID).Return(&Terminal{
			ID:         termID,
			ScreenType: v1alpha1.ScreenTypeSalon,
			BranchID:   branchID,
		}, nil)
		repo.On("FindBranch", ctx, branchID).Return(branch, nil)
		repo.On("TouchLastSeen", ctx, termID).Return(nil)

		svc := NewService(repo, events, testLogger())
		resp, err := svc.GetScreen(ctx, termID)

		require.NoError(t, err)
		require.NotNil(t, resp.Data.Agenda)
		assert.Empty(t, resp.Data.Agenda.Events)
		events.AssertNotCalled(t, "AgendaForArea", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("directory terminal gets branch listing", func(t *testing.T) {
		repo := &mockRepository{}
		events := &mockEventService{}
		repo.On("FindByID", ctx, termID).Return(&Terminal{
			ID:         termID,
			ScreenType: v1alpha1.ScreenTypeDirectory,
			BranchID:   branchID,
		}, nil)
		repo.On("FindBranch", ctx, branchID).Return(branch, nil)
		repo.On("TouchLastSeen", ctx, termID).Return(nil)
		events.On("DirectoryForBranch", ctx, branchID, mock.AnythingOfType("time.Time")).Return([]v1alpha1.DirectoryEntry{
			{Title: "conference", RoomName: "Salon A", Schedule: "09:00 - 11:00"},
		}, nil)

		svc := NewService(repo, events, testLogger())
		resp, err := svc.GetScreen(ctx, termID)

		require.NoError(t, err)
		assert.Nil(t, resp.Data.Agenda)
		require.Len(t, resp.Data.Directory, 1)
		assert.Equal(t, "Salon A", resp.Data.Directory[0].RoomName)
		events.AssertExpectations(t)
	})

	t.Run("failed last seen write does not fail the fetch", func(t *testing.T) {
		repo := &mockRepository{}
		events := &mockEventService{}
		repo.On("FindByID", ctx, termID).Return(&Terminal{
			ID:         termID,
			ScreenType: v1alpha1.ScreenTypeDirectory,
			BranchID:   branchID,
		}, nil)
		repo.On("FindBranch", ctx, branchID).Return(branch, nil)
		repo.On("TouchLastSeen", ctx, termID).Return(errors.ErrNotFound)
		events.On("DirectoryForBranch", ctx, branchID, mock.AnythingOfType("time.Time")).Return([]v1alpha1.DirectoryEntry{}, nil)

		svc := NewService(repo, events, testLogger())
		_, err := svc.GetScreen(ctx, termID)

		require.NoError(t, err)
	})

	t.Run("unknown terminal", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("FindByID", ctx, termID).Return(nil, errors.ErrNotFound)

		svc := NewService(repo, &mockEventService{}, testLogger())
		_, err := svc.GetScreen(ctx, termID)

		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})
}
