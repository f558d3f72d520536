package chat

import "time"

// Session captures a transient anonymous conversation.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot is the renderable view of a session: its transcript, the staged
// attachment and how many replies are still on their way.
type Snapshot struct {
	Session         Session     `json:"session"`
	Messages        []Message   `json:"messages"`
	Pending         *Attachment `json:"pending,omitempty"`
	AwaitingReplies int         `json:"awaitingReplies"`
	Disclaimer      string      `json:"disclaimer"`
}

// Disclaimer is shown under every chat input.
const Disclaimer = "LabSense provides educational information only. Always consult healthcare professionals for medical advice."
