package analyses

import (
	"time"

	"docanalysis-backend/internal/documents"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Analysis is one request to process a set of documents with a model.
// Result and CompletedAt are set together, only in a terminal status.
type Analysis struct {
	ID           string
	DocumentIDs  []string
	Documents    []documents.Document
	CustomPrompt *string
	Result       *string
	Status       string
	Model        string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// Terminal reports whether the analysis has finished, successfully or not.
func (a Analysis) Terminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusFailed
}

// State is the mutable part of an analysis written on each transition.
type State struct {
	Status      string
	Result      *string
	Model       string
	CompletedAt *time.Time
}

// ExtractedContent is the per-document text gathered for one run.
type ExtractedContent struct {
	Name    string
	Type    string
	Content string
	// Err is set when extraction failed; Content then holds its description.
	Err error
}
