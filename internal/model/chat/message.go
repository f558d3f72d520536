package chat

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is a single entry of a session transcript.
type Message struct {
	ID         string      `json:"id" yaml:"id"`
	SessionID  string      `json:"sessionId" yaml:"sessionId"`
	Sender     Sender      `json:"sender" yaml:"sender"`
	Content    string      `json:"content" yaml:"content"`
	Attachment *Attachment `json:"attachment,omitempty" yaml:"attachment,omitempty"`
	CreatedAt  time.Time   `json:"createdAt" yaml:"createdAt"`
}

// HasAttachment reports whether the message carried an upload.
func (m Message) HasAttachment() bool {
	return m.Attachment != nil
}
