package chat

import "time"

// TimeLayout renders two-digit hour and minute, e.g. "09:41 AM".
const TimeLayout = "03:04 PM"

// FormatTimestamp projects the message timestamp to an hour:minute string in
// loc. A nil loc formats in UTC.
func FormatTimestamp(m Message, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return m.CreatedAt.In(loc).Format(TimeLayout)
}

// MessageView is a message plus its display time.
type MessageView struct {
	Message
	Time string `json:"time"`
}

// NewMessageView formats msg for display in loc.
func NewMessageView(msg Message, loc *time.Location) MessageView {
	return MessageView{Message: msg, Time: FormatTimestamp(msg, loc)}
}

// NewMessageViews formats a transcript for display in loc.
func NewMessageViews(messages []Message, loc *time.Location) []MessageView {
	out := make([]MessageView, 0, len(messages))
	for _, msg := range messages {
		out = append(out, NewMessageView(msg, loc))
	}
	return out
}
