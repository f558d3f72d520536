package chat

import (
	"strings"
	"time"
)

// GreetingID is the fixed identifier of the message every session starts with.
const GreetingID = "1"

// GreetingText opens every session.
const GreetingText = "Hello! I'm your LabSense assistant. I can help you understand your lab results in plain English. Upload your lab report or ask me any questions about your health data."

// State is the value form of one chat session. Transitions return a new
// State and leave the receiver untouched.
type State struct {
	Messages []Message
	Pending  *Attachment
}

// NewState starts a session log with the given greeting.
func NewState(greeting Message) State {
	return State{Messages: []Message{greeting}}
}

// Greeting builds the assistant message a new session is seeded with.
func Greeting(sessionID string, now time.Time) Message {
	return Message{
		ID:        GreetingID,
		SessionID: sessionID,
		Sender:    SenderAssistant,
		Content:   GreetingText,
		CreatedAt: now,
	}
}

// SelectAttachment replaces the pending slot. A nil attachment means the
// picker returned nothing and leaves the state as is.
func (s State) SelectAttachment(att *Attachment) State {
	if att == nil {
		return s
	}
	staged := *att
	s.Pending = &staged
	return s
}

// ClearAttachment empties the pending slot.
func (s State) ClearAttachment() State {
	s.Pending = nil
	return s
}

// CanSend reports whether Send with text would append a message.
func (s State) CanSend(text string) bool {
	return strings.TrimSpace(text) != "" || s.Pending != nil
}

// Send appends a user message built from text and the pending attachment,
// then clears the slot. When there is nothing to send it returns the state
// unchanged and ok=false.
func (s State) Send(sessionID, id, text string, now time.Time) (next State, sent Message, ok bool) {
	if !s.CanSend(text) {
		return s, Message{}, false
	}

	sent = Message{
		ID:         id,
		SessionID:  sessionID,
		Sender:     SenderUser,
		Content:    text,
		Attachment: s.Pending,
		CreatedAt:  now,
	}

	next = State{Messages: appendMessage(s.Messages, sent)}
	return next, sent, true
}

// AppendReply appends an assistant message.
func (s State) AppendReply(reply Message) State {
	s.Messages = appendMessage(s.Messages, reply)
	return s
}

// Transcript returns a copy of the log.
func (s State) Transcript() []Message {
	return append([]Message(nil), s.Messages...)
}

func appendMessage(log []Message, msg Message) []Message {
	out := make([]Message, len(log), len(log)+1)
	copy(out, log)
	return append(out, msg)
}
