package analyses

import (
	"time"

	"docanalysis-backend/internal/documents"
)

// AnalysisResponse is the outward-facing representation of an analysis.
type AnalysisResponse struct {
	ID           string                       `json:"id"`
	Documents    []documents.DocumentResponse `json:"documents"`
	CustomPrompt *string                      `json:"custom_prompt"`
	Result       *string                      `json:"result"`
	Status       string                       `json:"status"`
	Model        string                       `json:"model,omitempty"`
	CreatedAt    time.Time                    `json:"created_at"`
	CompletedAt  *time.Time                   `json:"completed_at"`
}

// ToResponse converts an analysis for JSON output.
func ToResponse(a Analysis) AnalysisResponse {
	docs := make([]documents.DocumentResponse, 0, len(a.Documents))
	for _, d := range a.Documents {
		docs = append(docs, documents.ToResponse(d))
	}
	return AnalysisResponse{
		ID:           a.ID,
		Documents:    docs,
		CustomPrompt: a.CustomPrompt,
		Result:       a.Result,
		Status:       a.Status,
		Model:        a.Model,
		CreatedAt:    a.CreatedAt,
		CompletedAt:  a.CompletedAt,
	}
}

// ListResponse is one page of analyses.
type ListResponse struct {
	Items  []AnalysisResponse `json:"items"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

type createRequest struct {
	DocumentIDs  []string `json:"document_ids"`
	CustomPrompt *string  `json:"custom_prompt"`
}
