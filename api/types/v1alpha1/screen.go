// Package v1alpha1 contains API types for the Pantalla signage system.
//
// Field names on the wire follow the provider's original Spanish schema
// (tipo_pantalla, eventos, server_time, ...) so that existing players and
// the CMS keep working against this server unchanged.
package v1alpha1

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScreenType identifies which player layout a terminal renders
type ScreenType string

const (
	// ScreenTypeSalon is a room-agenda board showing the active event
	ScreenTypeSalon ScreenType = "SALON"
	// ScreenTypeDirectory is a lobby directory listing today's events
	ScreenTypeDirectory ScreenType = "DIRECTORIO"
	// ScreenTypeRates is a rates/price board
	ScreenTypeRates ScreenType = "TARIFAS"
)

// DataType tags the shape of the data section of a screen response
type DataType string

const (
	// DataTypeAgenda indicates data holds an event agenda for one area
	DataTypeAgenda DataType = "AGENDA"
)

// GeoPoint locates a terminal for weather enrichment
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// TerminalConfig is the display configuration section of a screen response
type TerminalConfig struct {
	// InternalName is the operator-facing identifier shown in footers
	InternalName string `json:"nombre_interno"`
	// ScreenType selects the player layout
	ScreenType ScreenType `json:"tipo_pantalla"`
	// Theme is the color theme tag (e.g. "dark", "light")
	Theme string `json:"tema_color,omitempty"`
	// Logo is an image reference, possibly relative to the provider origin
	Logo string `json:"logo,omitempty"`
	// Favicon is an image reference for browser-based players
	Favicon string `json:"favicon,omitempty"`
	// Screensaver is the ordered image rotation shown when no event is active
	Screensaver []string `json:"screensaver,omitempty"`
	// Location enables the weather widget when present
	Location *GeoPoint `json:"ubicacion,omitempty"`
}

// ScheduledEvent is one schedulable entry of an area's agenda
type ScheduledEvent struct {
	// ID uniquely identifies the event
	ID uuid.UUID `json:"id,omitempty"`
	// Title is the headline shown on the board
	Title string `json:"titulo"`
	// Client is the optional customer/organizer name
	Client string `json:"cliente,omitempty"`
	// Message is optional free text shown under the title
	Message string `json:"mensaje,omitempty"`
	// Ticker is optional scrolling text
	Ticker string `json:"ticker,omitempty"`
	// StartsAt and EndsAt bound the nominal event window
	StartsAt time.Time `json:"inicio_iso"`
	EndsAt   time.Time `json:"fin_iso"`
	// ShowFrom and ShowUntil, when present, override the nominal window so
	// promotional material can run before and after the event itself
	ShowFrom  *time.Time `json:"mostrar_inicio_iso,omitempty"`
	ShowUntil *time.Time `json:"mostrar_fin_iso,omitempty"`
	// Recurring repeats the window's time of day daily while the outer
	// start/end instants still contain "now"
	Recurring bool `json:"recurrente"`
	// Images is the ordered promotional image rotation, possibly empty
	Images []string `json:"imagenes,omitempty"`
	// Layout hints the player layout for this event
	Layout string `json:"layout,omitempty"`
	// RoomName is the room/area the event belongs to
	RoomName string `json:"nombre_salon"`
}

// EffectiveWindow returns the start and end instants that govern whether the
// event is active, applying the visualization-window override when present.
func (e *ScheduledEvent) EffectiveWindow() (start, end time.Time) {
	start, end = e.StartsAt, e.EndsAt
	if e.ShowFrom != nil {
		start = *e.ShowFrom
	}
	if e.ShowUntil != nil {
		end = *e.ShowUntil
	}
	return start, end
}

// AgendaPayload is the data section for SALON screens
type AgendaPayload struct {
	DataType DataType         `json:"tipo_datos"`
	Events   []ScheduledEvent `json:"eventos"`
}

// DirectoryEntry is one row of a DIRECTORIO listing
type DirectoryEntry struct {
	RoomName string `json:"nombre_salon"`
	Title    string `json:"titulo"`
	Client   string `json:"cliente,omitempty"`
	// Schedule is a preformatted display string, e.g. "09:00 - 11:00"
	Schedule string `json:"horario,omitempty"`
}

// ScreenData is the polymorphic data section of a screen response: an
// AgendaPayload object for SALON screens, a flat DirectoryEntry array for
// DIRECTORIO screens.
type ScreenData struct {
	Agenda    *AgendaPayload
	Directory []DirectoryEntry
}

// MarshalJSON encodes whichever shape is populated, preferring the agenda
func (d ScreenData) MarshalJSON() ([]byte, error) {
	if d.Agenda != nil {
		return json.Marshal(d.Agenda)
	}
	if d.Directory != nil {
		return json.Marshal(d.Directory)
	}
	return []byte("null"), nil
}

// UnmarshalJSON dispatches on the leading token: arrays decode as directory
// listings, objects as agendas
func (d *ScreenData) UnmarshalJSON(b []byte) error {
	d.Agenda = nil
	d.Directory = nil

	trimmed := firstNonSpace(b)
	switch trimmed {
	case 0, 'n':
		return nil
	case '[':
		return json.Unmarshal(b, &d.Directory)
	case '{':
		d.Agenda = &AgendaPayload{}
		return json.Unmarshal(b, d.Agenda)
	default:
		return fmt.Errorf("screen data is neither object nor array")
	}
}

func firstNonSpace(b []byte) byte {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return c
		}
	}
	return 0
}

// ScreenResponse is the payload served at GET /api/pantalla/{terminalID}
type ScreenResponse struct {
	Config TerminalConfig `json:"config"`
	Data   ScreenData     `json:"data"`
	// ServerTime is the provider clock at response time. Players compute
	// their clock offset from it; when absent they run unsynchronized.
	ServerTime *time.Time `json:"server_time,omitempty"`
}
