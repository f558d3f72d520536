package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/labsense/backend/internal/model/chat"
)

func sampleTranscript() *Transcript {
	at := time.Date(2024, 3, 14, 14, 5, 0, 0, time.UTC)
	return &Transcript{
		SessionID: "s1",
		CreatedAt: at,
		Messages: []chat.Message{
			chat.Greeting("s1", at),
			{ID: "u1", SessionID: "s1", Sender: chat.SenderUser, Content: "", CreatedAt: at,
				Attachment: &chat.Attachment{Name: "panel.pdf", MimeType: "application/pdf"}},
			{ID: "a1", SessionID: "s1", Sender: chat.SenderAssistant, Content: "Your **LDL** is high", CreatedAt: at},
		},
	}
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{format: "jsonl", wantExt: "jsonl"},
		{format: "md", wantExt: "md"},
		{format: "markdown", wantExt: "md"},
		{format: "yaml", wantExt: "yaml"},
		{format: "json", wantExt: "json"},
		{format: "", wantExt: "json"},
		{format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, exporter.Extension())
			assert.NotEmpty(t, exporter.ContentType())
		})
	}
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONExporter{}).Export(sampleTranscript(), &buf))

	var decoded Transcript
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "s1", decoded.SessionID)
	require.Len(t, decoded.Messages, 3)
	assert.Equal(t, "panel.pdf", decoded.Messages[1].Attachment.Name)
}

func TestJSONLExporterOneLinePerMessage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONLExporter{}).Export(sampleTranscript(), &buf))

	scanner := bufio.NewScanner(&buf)
	var lines []map[string]any
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 3)
	assert.Equal(t, "02:05 PM", lines[0]["time"])
	assert.Equal(t, "user", lines[1]["sender"])
	assert.Contains(t, lines[1], "attachment")
	assert.NotContains(t, lines[2], "attachment")
}

func TestYAMLExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLExporter{}).Export(sampleTranscript(), &buf))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "s1", decoded["sessionId"])
	assert.Len(t, decoded["messages"], 3)
}

func TestMarkdownExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownExporter{}).Export(sampleTranscript(), &buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# LabSense chat s1"))
	assert.Contains(t, out, "**Messages:** 3")
	assert.Contains(t, out, "> PDF attachment: `panel.pdf`")
	assert.Contains(t, out, `Your \*\*LDL\*\* is high`)
	assert.Contains(t, out, "**You** (02:05 PM)")
	assert.Contains(t, out, chat.Disclaimer)
}

func TestEscapeMarkdownPreservesCodeBlocks(t *testing.T) {
	in := "**bold**\n```\n**raw**\n```\n__under__"
	want := "\\*\\*bold\\*\\*\n```\n**raw**\n```\n\\_\\_under\\_\\_"
	assert.Equal(t, want, escapeMarkdown(in))
}

// failAfter accepts n writes, then fails every write.
type failAfter struct {
	n      int
	writes int
}

func (f *failAfter) Write(p []byte) (int, error) {
	if f.writes >= f.n {
		return 0, errors.New("disk full")
	}
	f.writes++
	return len(p), nil
}

func TestMarkdownExporterReturnsWriteError(t *testing.T) {
	w := &failAfter{n: 2}
	err := (&MarkdownExporter{}).Export(sampleTranscript(), w)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 2, w.writes)
}
