package v1alpha1

import "time"

// ControlMessageType defines types of control messages
type ControlMessageType string

const (
	// ControlMessageRefresh tells a player to re-fetch its screen payload
	// ahead of its normal refresh interval
	ControlMessageRefresh ControlMessageType = "REFRESH"
	// ControlMessageStatus carries a player status report
	ControlMessageStatus ControlMessageType = "STATUS"
)

// ControlMessage represents a message sent over the terminal control WebSocket
type ControlMessage struct {
	// TypeMeta describes API version details
	TypeMeta `json:",inline"`
	// Type indicates the kind of control message
	Type ControlMessageType `json:"type"`
	// Timestamp indicates when the message was created
	Timestamp time.Time `json:"timestamp"`
	// Status contains player status if applicable
	Status *ControlStatus `json:"status,omitempty"`
}

// ControlStatus reports a player's current state over the control channel
type ControlStatus struct {
	// Connectivity is the player's own online/offline classification
	Connectivity string `json:"connectivity"`
	// ActiveEventID is the ID of the event being shown, if any
	ActiveEventID string `json:"activeEventId,omitempty"`
	// ClockOffsetMS is the player's signed clock correction in milliseconds
	ClockOffsetMS int64 `json:"clockOffsetMs"`
	// UpdatedAt indicates when the status was generated
	UpdatedAt time.Time `json:"updatedAt"`
}
