package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ToResponse converts a document for JSON output.
func ToResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:         doc.ID,
		Name:       doc.Name,
		FileName:   doc.FileName,
		FileType:   doc.FileType,
		SizeBytes:  doc.SizeBytes,
		UploadedAt: doc.UploadedAt,
	}
}

// ListResponse is one page of documents.
type ListResponse struct {
	Items  []DocumentResponse `json:"items"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}
