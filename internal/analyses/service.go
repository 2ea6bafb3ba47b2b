package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docanalysis-backend/internal/documents"
	"docanalysis-backend/internal/shared/metrics"
	"docanalysis-backend/internal/shared/telemetry"
)

// RecentLimit is how many analyses the overview shows.
const RecentLimit = 5

// DocumentSource resolves document ids to stored documents.
type DocumentSource interface {
	GetMany(ctx context.Context, ids []string) ([]documents.Document, error)
}

// Service contains business logic for analyses.
type Service struct {
	Repo     Repo
	Docs     DocumentSource
	Comparer Comparer
	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create records a pending analysis over the known documents among
// documentIDs and runs it. Unknown ids are dropped; if none remain the run
// fails without calling a model.
func (s *Service) Create(ctx context.Context, documentIDs []string, customPrompt *string) (Analysis, error) {
	if len(documentIDs) == 0 {
		return Analysis{}, fmt.Errorf("%w: at least one document id is required", ErrInvalidInput)
	}
	docs, err := s.Docs.GetMany(ctx, documentIDs)
	if err != nil {
		return Analysis{}, fmt.Errorf("resolve documents: %w", err)
	}

	resolved := make([]string, 0, len(docs))
	for _, doc := range docs {
		resolved = append(resolved, doc.ID)
	}

	var prompt *string
	if customPrompt != nil && strings.TrimSpace(*customPrompt) != "" {
		prompt = copyString(customPrompt)
	}

	analysis := Analysis{
		ID:           uuid.NewString(),
		DocumentIDs:  resolved,
		CustomPrompt: prompt,
		Status:       StatusPending,
		CreatedAt:    s.now(),
	}
	if err := s.Repo.Create(ctx, analysis); err != nil {
		return Analysis{}, err
	}
	telemetry.Info("analysis.created", map[string]any{
		"request_id":     telemetry.RequestID(ctx),
		"analysis_id":    analysis.ID,
		"document_count": len(resolved),
		"custom_prompt":  prompt != nil,
	})

	return s.Run(ctx, analysis.ID)
}

// Retry resets a finished or stuck analysis to pending and runs it again
// with the same documents and prompt, replacing the previous result.
func (s *Service) Retry(ctx context.Context, analysisID string) (Analysis, error) {
	analysis, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	if err := s.Repo.UpdateState(ctx, analysis.ID, State{Status: StatusPending}); err != nil {
		return Analysis{}, err
	}
	s.logTransition(ctx, analysis.ID, analysis.Status, StatusPending, nil)
	return s.Run(ctx, analysis.ID)
}

// Run moves the analysis through processing to a terminal status. Model and
// extraction failures are recorded on the analysis rather than returned;
// the returned error covers persistence failures only.
func (s *Service) Run(ctx context.Context, analysisID string) (result Analysis, err error) {
	// The run outlives a disconnected client so the record always reaches a
	// terminal state.
	ctx = context.WithoutCancel(ctx)

	analysis, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	from := analysis.Status
	if err := s.Repo.UpdateState(ctx, analysis.ID, State{Status: StatusProcessing}); err != nil {
		return Analysis{}, err
	}
	s.logTransition(ctx, analysis.ID, from, StatusProcessing, nil)
	metrics.IncAnalysisStarted()
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result, err = s.finish(ctx, analysisID, StatusFailed, failedPrefix+fmt.Sprintf("panic: %v", r), "", started)
		}
	}()

	docs, err := s.Docs.GetMany(ctx, analysis.DocumentIDs)
	if err != nil {
		return s.finish(ctx, analysis.ID, StatusFailed, failedPrefix+sanitizeError(err), "", started)
	}
	if len(docs) == 0 {
		return s.finish(ctx, analysis.ID, StatusFailed, noDocumentsMessage, "", started)
	}

	prompt := ""
	if analysis.CustomPrompt != nil {
		prompt = *analysis.CustomPrompt
	}
	outcome, err := s.Comparer.Compare(ctx, docs, prompt)
	if err != nil {
		var exhausted *ExhaustedError
		switch {
		case errors.As(err, &exhausted):
			return s.finish(ctx, analysis.ID, StatusFailed, exhausted.Error(), "", started)
		case errors.Is(err, ErrNoDocuments):
			return s.finish(ctx, analysis.ID, StatusFailed, noDocumentsMessage, "", started)
		default:
			return s.finish(ctx, analysis.ID, StatusFailed, failedPrefix+sanitizeError(err), "", started)
		}
	}
	return s.finish(ctx, analysis.ID, StatusCompleted, outcome.Text, outcome.Model, started)
}

func (s *Service) finish(ctx context.Context, analysisID, status, text, model string, started time.Time) (Analysis, error) {
	completedAt := s.now()
	state := State{
		Status:      status,
		Result:      stringPtr(text),
		Model:       model,
		CompletedAt: &completedAt,
	}
	if err := s.Repo.UpdateState(ctx, analysisID, state); err != nil {
		telemetry.Error("analysis.update_failed", map[string]any{
			"analysis_id": analysisID,
			"status":      status,
			"err":         err,
		})
		return Analysis{}, err
	}

	elapsed := time.Since(started)
	metrics.ObserveAnalysisDuration(elapsed)
	extra := map[string]any{"duration_ms": elapsed.Milliseconds()}
	if status == StatusCompleted {
		metrics.IncAnalysisCompleted()
		extra["model"] = model
	} else {
		metrics.IncAnalysisFailed()
		extra["reason"] = text
	}
	s.logTransition(ctx, analysisID, StatusProcessing, status, extra)

	return s.Get(ctx, analysisID)
}

func (s *Service) logTransition(ctx context.Context, analysisID, from, to string, extra map[string]any) {
	fields := map[string]any{
		"request_id":        telemetry.RequestID(ctx),
		"analysis_id":       analysisID,
		"status":            to,
		"status_transition": from + "->" + to,
	}
	for k, v := range extra {
		fields[k] = v
	}
	telemetry.Info("analysis.status", fields)
}

// Get returns an analysis with its documents attached.
func (s *Service) Get(ctx context.Context, analysisID string) (Analysis, error) {
	analysis, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	return s.attachDocuments(ctx, analysis)
}

// List returns a page of analyses, newest first, and the total count.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Analysis, int, error) {
	items, err := s.Repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		if items[i], err = s.attachDocuments(ctx, items[i]); err != nil {
			return nil, 0, err
		}
	}
	total, err := s.Repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Recent returns the newest analyses for the overview.
func (s *Service) Recent(ctx context.Context) ([]Analysis, error) {
	items, _, err := s.List(ctx, RecentLimit, 0)
	return items, err
}

// Count returns the number of analyses.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.Repo.Count(ctx)
}

// Delete removes an analysis. Its documents are kept.
func (s *Service) Delete(ctx context.Context, analysisID string) error {
	if err := s.Repo.Delete(ctx, analysisID); err != nil {
		return err
	}
	telemetry.Info("analysis.deleted", map[string]any{
		"request_id":  telemetry.RequestID(ctx),
		"analysis_id": analysisID,
	})
	return nil
}

// attachDocuments loads the analysis documents that still exist.
func (s *Service) attachDocuments(ctx context.Context, analysis Analysis) (Analysis, error) {
	if len(analysis.DocumentIDs) == 0 {
		analysis.Documents = []documents.Document{}
		return analysis, nil
	}
	docs, err := s.Docs.GetMany(ctx, analysis.DocumentIDs)
	if err != nil {
		return Analysis{}, err
	}
	analysis.Documents = docs
	return analysis, nil
}
