package chat

import "github.com/labsense/backend/internal/model/chat"

// EventType names what changed in a session.
type EventType string

const (
	// EventMessage carries a message that was just appended to the log.
	EventMessage EventType = "message"
	// EventAttachment carries the new pending attachment (nil when cleared).
	EventAttachment EventType = "attachment"
)

// Event is pushed to session subscribers.
type Event struct {
	Type      EventType        `json:"type"`
	SessionID string           `json:"sessionId"`
	Message   *chat.Message    `json:"message,omitempty"`
	Pending   *chat.Attachment `json:"pending,omitempty"`
}

const subscriberBuffer = 32
