package chat

import "strings"

// AcceptFilter mirrors the upload picker filter offered to users.
// The session itself never enforces it.
const AcceptFilter = ".pdf,image/*"

// Attachment is the metadata of a staged or sent file. File bytes are never kept.
type Attachment struct {
	Name     string `json:"name" yaml:"name"`
	MimeType string `json:"mimeType" yaml:"mimeType"`
}

// IsPDF reports whether the declared type names a PDF.
func (a Attachment) IsPDF() bool {
	return strings.Contains(a.MimeType, "pdf")
}

// Kind returns the label used when describing the file to the user.
func (a Attachment) Kind() string {
	if a.IsPDF() {
		return "PDF"
	}
	return "image"
}

// Accepts reports whether mimeType passes AcceptFilter.
func Accepts(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return mimeType == "application/pdf" || strings.HasPrefix(mimeType, "image/")
}
