// Package terminal implements the terminal domain model and business logic
package terminal

import (
	"time"

	"github.com/google/uuid"

	v1alpha1 "github.com/narabyte/pantalla-signage/api/types/v1alpha1"
)

// Terminal represents a single signage screen endpoint
type Terminal struct {
	// ID is the unique identifier for this terminal
	ID uuid.UUID
	// InternalName is the operator-facing identifier (e.g. "LOBBY-NORTE-1")
	InternalName string
	// ScreenType selects the player layout served to this terminal
	ScreenType v1alpha1.ScreenType
	// Theme is the color theme tag
	Theme string
	// BranchID identifies the branch (building/property) this terminal belongs to
	BranchID uuid.UUID
	// AreaID binds SALON terminals to the area whose agenda they show
	AreaID *uuid.UUID
	// Location enables weather enrichment on the player
	Location *Location
	// Screensaver is the ordered idle image rotation
	Screensaver []string
	// LastSeen is when the terminal last fetched its payload
	LastSeen time.Time
	// Version tracks optimistic concurrency control
	Version int
}

// Location holds geo-coordinates for weather enrichment
type Location struct {
	Lat float64
	Lon float64
}

// Area represents a room or zone whose agenda a SALON terminal displays
type Area struct {
	ID       uuid.UUID
	BranchID uuid.UUID
	Name     string
}

// Branch represents a property/building with brand assets shared by its terminals
type Branch struct {
	ID        uuid.UUID
	Name      string
	BrandName string
	Logo      string
	Favicon   string
}

// Update carries the mutable display settings of a terminal. Nil fields are
// left unchanged.
type Update struct {
	Theme       *string
	Screensaver []string
	Location    *Location
}

// NewTerminal creates a new terminal with the given name, screen type and branch
func NewTerminal(name string, screenType v1alpha1.ScreenType, branchID uuid.UUID) (*Terminal, error) {
	if name == "" {
		return nil, ErrInvalidName{Name: name, Reason: "name cannot be empty"}
	}
	switch screenType {
	case v1alpha1.ScreenTypeSalon, v1alpha1.ScreenTypeDirectory, v1alpha1.ScreenTypeRates:
	default:
		return nil, ErrInvalidScreenType{ScreenType: string(screenType)}
	}
	if branchID == uuid.Nil {
		return nil, ErrInvalidBranch{Reason: "branch ID cannot be empty"}
	}

	return &Terminal{
		ID:           uuid.New(),
		InternalName: name,
		ScreenType:   screenType,
		Theme:        "dark",
		BranchID:     branchID,
		Version:      1,
	}, nil
}

// AssignArea binds the terminal to the area whose agenda it shows
func (t *Terminal) AssignArea(areaID uuid.UUID) error {
	if t.ScreenType != v1alpha1.ScreenTypeSalon {
		return ErrInvalidAssignment{ScreenType: string(t.ScreenType)}
	}
	t.AreaID = &areaID
	return nil
}

// SetTheme updates the terminal's color theme
func (t *Terminal) SetTheme(theme string) {
	t.Theme = theme
}

// SetScreensaver replaces the idle image rotation
func (t *Terminal) SetScreensaver(images []string) {
	t.Screensaver = images
}

// SetLocation updates the terminal's geo-coordinates
func (t *Terminal) SetLocation(loc *Location) {
	t.Location = loc
}

// UpdateLastSeen records that the terminal fetched its payload
func (t *Terminal) UpdateLastSeen() {
	t.LastSeen = time.Now()
}
