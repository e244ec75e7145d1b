package terminal

import (
	"context"

	"github.com/google/uuid"

	v1alpha1 "github.com/narabyte/pantalla-signage/api/types/v1alpha1"
)

// Repository defines the storage interface for terminals and their branch/area context
type Repository interface {
	// Save persists a terminal, creating it if new and enforcing optimistic
	// concurrency on updates
	Save(ctx context.Context, t *Terminal) error

	// FindByID retrieves a terminal by its unique ID
	FindByID(ctx context.Context, id uuid.UUID) (*Terminal, error)

	// FindByName retrieves a terminal by its internal name
	FindByName(ctx context.Context, name string) (*Terminal, error)

	// List retrieves all terminals for a branch; a nil branch ID lists everything
	List(ctx context.Context, branchID *uuid.UUID) ([]*Terminal, error)

	// FindBranch retrieves the branch a terminal belongs to
	FindBranch(ctx context.Context, id uuid.UUID) (*Branch, error)

	// FindArea retrieves an area by ID
	FindArea(ctx context.Context, id uuid.UUID) (*Area, error)

	// TouchLastSeen records a payload fetch without a version bump
	TouchLastSeen(ctx context.Context, id uuid.UUID) error
}

// Service defines the terminal business operations
type Service interface {
	// Register creates a new terminal under a branch
	Register(ctx context.Context, name string, screenType v1alpha1.ScreenType, branchID uuid.UUID) (*Terminal, error)

	// Get retrieves a terminal by ID
	Get(ctx context.Context, id uuid.UUID) (*Terminal, error)

	// GetByName retrieves a terminal by its internal name
	GetByName(ctx context.Context, name string) (*Terminal, error)

	// List retrieves terminals, optionally filtered by branch
	List(ctx context.Context, branchID *uuid.UUID) ([]*Terminal, error)

	// Update applies display setting changes to a terminal
	Update(ctx context.Context, id uuid.UUID, upd Update) (*Terminal, error)

	// AssignArea binds a SALON terminal to the area whose agenda it shows
	AssignArea(ctx context.Context, id, areaID uuid.UUID) error

	// GetScreen assembles the full player payload for a terminal: display
	// configuration plus agenda or directory data and the server timestamp
	GetScreen(ctx context.Context, id uuid.UUID) (*v1alpha1.ScreenResponse, error)
}

// ControlPublisher pushes control messages to connected players.
// Implementations must never block domain operations on slow players.
type ControlPublisher interface {
	// NotifyRefresh tells the players of a terminal to re-fetch early
	NotifyRefresh(terminalID uuid.UUID)
}
