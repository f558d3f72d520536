package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/labsense/backend/internal/model/chat"
)

// MarkdownExporter exports transcripts as a readable Markdown document.
type MarkdownExporter struct{}

// Export writes a heading and one section per message. It stops at the first
// write error and returns it.
func (e *MarkdownExporter) Export(transcript *Transcript, w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("# LabSense chat %s\n\n", transcript.SessionID)
	ew.printf("**Messages:** %d\n\n", len(transcript.Messages))
	ew.printf("---\n\n")

	for i, msg := range transcript.Messages {
		ew.printf("**%s** (%s)\n\n", senderLabel(msg.Sender), chat.FormatTimestamp(msg, transcript.Location))

		if msg.Attachment != nil {
			ew.printf("> %s attachment: `%s`\n\n", msg.Attachment.Kind(), msg.Attachment.Name)
		}
		if msg.Content != "" {
			ew.printf("%s\n\n", escapeMarkdown(msg.Content))
		}

		if i < len(transcript.Messages)-1 {
			ew.printf("---\n\n")
		}
	}

	ew.printf("_%s_\n", chat.Disclaimer)
	if ew.err != nil {
		return fmt.Errorf("failed to write markdown transcript: %w", ew.err)
	}
	return nil
}

// errWriter remembers the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func senderLabel(sender chat.Sender) string {
	if sender == chat.SenderUser {
		return "You"
	}
	return "LabSense"
}

// escapeMarkdown escapes emphasis markers outside code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	result := make([]string, 0, len(lines))
	inCodeBlock := false

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "```"):
			inCodeBlock = !inCodeBlock
		case !inCodeBlock:
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
		}
		result = append(result, line)
	}

	return strings.Join(result, "\n")
}

func (e *MarkdownExporter) Extension() string { return "md" }

func (e *MarkdownExporter) ContentType() string { return "text/markdown; charset=utf-8" }
