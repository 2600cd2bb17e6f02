// Package mqtt provides the transport link to the central system, with
// abstraction for testing. The unit publishes presence status and system
// lifecycle events, and receives consultation messages and requests.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/consultease/desk-unit/internal/presence"
)

// Topics holds the per-faculty topic set. The central system addresses
// each unit by its faculty id.
type Topics struct {
	Status   string // presence status, retained
	System   string // lifecycle events (startup/shutdown/heartbeat)
	Messages string // inbound display messages
	Requests string // inbound consultation requests
}

// TopicsFor builds the topic set for one faculty id.
func TopicsFor(facultyID int) Topics {
	return Topics{
		Status:   fmt.Sprintf("consultease/faculty/%d/status", facultyID),
		System:   fmt.Sprintf("consultease/faculty/%d/system", facultyID),
		Messages: fmt.Sprintf("consultease/faculty/%d/messages", facultyID),
		Requests: fmt.Sprintf("consultease/faculty/%d/requests", facultyID),
	}
}

// StatusUpdate is a presence state change to be published.
type StatusUpdate struct {
	FacultyID   int
	FacultyName string
	State       presence.State
	Reason      presence.Reason
	Timestamp   time.Time
}

// SystemEvent represents a system lifecycle event (e.g., startup,
// shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// InboundMessage is one payload received on the messages or requests
// topic, handed to the control loop for processing.
type InboundMessage struct {
	Topic   string
	Payload []byte
}

// Publisher publishes unit state to the broker.
type Publisher interface {
	// PublishStatus sends a presence status update.
	// Returns error if publishing fails (should not crash the process).
	PublishStatus(update StatusUpdate) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// StatusPayload is the wire format for presence updates.
type StatusPayload struct {
	Faculty StatusInner `json:"faculty"`
}

// StatusInner contains the presence details.
type StatusInner struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

// FormatStatusPayload creates the JSON payload for a presence update.
func FormatStatusPayload(update StatusUpdate) ([]byte, error) {
	payload := StatusPayload{
		Faculty: StatusInner{
			ID:        update.FacultyID,
			Name:      update.FacultyName,
			Status:    string(update.State),
			Reason:    string(update.Reason),
			Timestamp: update.Timestamp.UTC().Format(time.RFC3339),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the wire format for simple system events that don't
// carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full
// status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
