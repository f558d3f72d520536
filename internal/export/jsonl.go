package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/labsense/backend/internal/model/chat"
)

// JSONLExporter exports transcripts as one JSON object per message.
type JSONLExporter struct{}

type jsonlLine struct {
	ID         string           `json:"id"`
	Sender     chat.Sender      `json:"sender"`
	Content    string           `json:"content"`
	Time       string           `json:"time"`
	Attachment *chat.Attachment `json:"attachment,omitempty"`
}

// Export writes each message on its own line.
func (e *JSONLExporter) Export(transcript *Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range transcript.Messages {
		line := jsonlLine{
			ID:         msg.ID,
			Sender:     msg.Sender,
			Content:    msg.Content,
			Time:       chat.FormatTimestamp(msg, transcript.Location),
			Attachment: msg.Attachment,
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

func (e *JSONLExporter) Extension() string { return "jsonl" }

func (e *JSONLExporter) ContentType() string { return "application/x-ndjson" }
