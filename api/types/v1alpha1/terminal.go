package v1alpha1

import (
	"time"

	"github.com/google/uuid"
)

// TypeMeta describes an individual object's type and API version
type TypeMeta struct {
	// Kind is a string value representing the type of this object
	Kind string `json:"kind,omitempty"`
	// APIVersion defines the versioned schema of this object
	APIVersion string `json:"apiVersion,omitempty"`
}

// ObjectMeta is metadata that all managed resources must have
type ObjectMeta struct {
	// ID uniquely identifies this object
	ID uuid.UUID `json:"id,omitempty"`
	// Name is a human-readable identifier for this object
	Name string `json:"name"`
	// CreatedAt indicates when this object was created
	CreatedAt time.Time `json:"createdAt,omitempty"`
	// UpdatedAt indicates when this object was last modified
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Terminal represents a managed signage terminal in the system
type Terminal struct {
	// TypeMeta describes the versioning of this object
	TypeMeta `json:",inline"`
	// ObjectMeta provides metadata about the terminal
	ObjectMeta `json:"metadata,omitempty"`

	// Spec holds the desired configuration of this terminal
	Spec TerminalSpec `json:"spec"`
	// Status holds the current state of this terminal
	Status TerminalStatus `json:"status"`
}

// TerminalSpec defines the desired configuration of a Terminal
type TerminalSpec struct {
	// ScreenType selects the player layout
	ScreenType ScreenType `json:"screenType"`
	// Theme is the color theme tag
	Theme string `json:"theme,omitempty"`
	// AreaID binds SALON terminals to the area whose agenda they show
	AreaID *uuid.UUID `json:"areaId,omitempty"`
	// Location enables the weather widget
	Location *GeoPoint `json:"location,omitempty"`
	// Screensaver is the idle image rotation
	Screensaver []string `json:"screensaver,omitempty"`
}

// TerminalStatus defines the observed state of a Terminal
type TerminalStatus struct {
	// LastSeen is when the terminal last fetched its screen payload
	LastSeen time.Time `json:"lastSeen"`
	// Version tracks optimistic concurrency control
	Version int `json:"version"`
}

// TerminalList wraps a list of terminals with metadata
type TerminalList struct {
	// Items contains the listed terminals
	Items []Terminal `json:"items"`
	// TotalCount is the total number of matching terminals
	TotalCount int `json:"totalCount,omitempty"`
}
