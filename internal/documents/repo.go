package documents

import "context"

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	// GetByIDs returns the documents that exist, in the order of ids, skipping
	// unknown and duplicate ids.
	GetByIDs(ctx context.Context, ids []string) ([]Document, error)
	List(ctx context.Context, limit, offset int) ([]Document, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}
