// Package export renders session transcripts for download.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/labsense/backend/internal/model/chat"
)

// Transcript is the exportable view of one session.
type Transcript struct {
	SessionID string         `json:"sessionId" yaml:"sessionId"`
	CreatedAt time.Time      `json:"createdAt" yaml:"createdAt"`
	Messages  []chat.Message `json:"messages" yaml:"messages"`
	// Location formats message times; nil means UTC.
	Location *time.Location `json:"-" yaml:"-"`
}

// NewTranscript builds a Transcript from a session snapshot.
func NewTranscript(snapshot chat.Snapshot, loc *time.Location) *Transcript {
	return &Transcript{
		SessionID: snapshot.Session.ID,
		CreatedAt: snapshot.Session.CreatedAt,
		Messages:  snapshot.Messages,
		Location:  loc,
	}
}

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(transcript *Transcript, w io.Writer) error
	Extension() string
	ContentType() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "", "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json)", format)
	}
}
