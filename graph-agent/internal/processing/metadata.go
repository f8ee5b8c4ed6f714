package processing

import "time"

const (
	SourceLocal  = "local"
	SourceGDrive = "gdrive"
	SourceUpload = "upload"
)

// Metadata describes where a piece of text came from.
type Metadata struct {
	ID         string    `json:"id"`
	Path       string    `json:"path,omitempty"`
	Source     string    `json:"source"`
	Title      string    `json:"title,omitempty"`
	ImportedAt time.Time `json:"imported_at"`
}
