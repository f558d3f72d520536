package export

import (
	"encoding/json"
	"io"
)

// JSONExporter exports transcripts as pretty-printed JSON.
type JSONExporter struct{}

// Export writes the whole transcript as one JSON document.
func (e *JSONExporter) Export(transcript *Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(transcript)
}

func (e *JSONExporter) Extension() string { return "json" }

func (e *JSONExporter) ContentType() string { return "application/json" }
