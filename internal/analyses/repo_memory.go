package analyses

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo used when no database is configured.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Analysis
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Analysis)}
}

func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[analysis.ID] = clone(analysis)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.data[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return clone(a), nil
}

func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	items := make([]Analysis, 0, len(r.data))
	for _, a := range r.data {
		items = append(items, clone(a))
	}
	r.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if offset >= len(items) {
		return []Analysis{}, nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end], nil
}

func (r *MemoryRepo) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data), nil
}

func (r *MemoryRepo) UpdateState(ctx context.Context, analysisID string, state State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.data[analysisID]
	if !ok {
		return ErrNotFound
	}
	a.Status = state.Status
	a.Result = copyString(state.Result)
	a.Model = state.Model
	a.CompletedAt = copyTime(state.CompletedAt)
	r.data[analysisID] = a
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, analysisID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[analysisID]; !ok {
		return ErrNotFound
	}
	delete(r.data, analysisID)
	return nil
}

// clone detaches slices and pointers so callers cannot mutate stored state.
func clone(a Analysis) Analysis {
	out := a
	out.DocumentIDs = append([]string(nil), a.DocumentIDs...)
	out.Documents = nil
	out.CustomPrompt = copyString(a.CustomPrompt)
	out.Result = copyString(a.Result)
	out.CompletedAt = copyTime(a.CompletedAt)
	return out
}

var _ Repo = (*MemoryRepo)(nil)
