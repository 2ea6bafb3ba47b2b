package documents

import "time"

// Document is an uploaded file available for analysis.
type Document struct {
	ID         string
	Name       string
	FileName   string
	FileType   string
	SizeBytes  int64
	StorageKey string
	UploadedAt time.Time
}
