package analyses

import "context"

// Repo defines persistence operations for analyses.
type Repo interface {
	// Create stores the analysis and its ordered document associations.
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	// List returns analyses newest first.
	List(ctx context.Context, limit, offset int) ([]Analysis, error)
	Count(ctx context.Context) (int, error)
	UpdateState(ctx context.Context, analysisID string, state State) error
	Delete(ctx context.Context, analysisID string) error
}
