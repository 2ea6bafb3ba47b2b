package analyses

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docanalysis-backend/internal/documents"
	"docanalysis-backend/internal/extract"
	"docanalysis-backend/internal/llm"
	"docanalysis-backend/internal/shared/cache"
	"docanalysis-backend/internal/shared/metrics"
	"docanalysis-backend/internal/shared/storage/object"
	"docanalysis-backend/internal/shared/telemetry"
)

// Comparer runs one analysis over a set of documents.
type Comparer interface {
	Compare(ctx context.Context, docs []documents.Document, customPrompt string) (Outcome, error)
}

// Outcome is a successful model reply.
type Outcome struct {
	Text     string
	Model    string
	Attempts int
	Contents []ExtractedContent
}

// OrchestratorConfig configures NewOrchestrator.
type OrchestratorConfig struct {
	Completer llm.Completer
	Primary   string
	Fallbacks []string
	Store     object.ObjectStore
	// Cache holds extracted text between runs; nil disables it.
	Cache cache.TextCache
	// ScratchDir holds per-document temp copies; empty uses os.TempDir.
	ScratchDir string
}

// Orchestrator extracts documents, builds the prompt and walks the model list.
type Orchestrator struct {
	completer  llm.Completer
	models     []string
	store      object.ObjectStore
	cache      cache.TextCache
	scratchDir string
}

// NewOrchestrator validates cfg. The model order is the primary followed by
// the fallbacks, skipping repeats.
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.Completer == nil {
		return nil, errors.New("orchestrator: completer is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("orchestrator: object store is required")
	}
	primary := strings.TrimSpace(cfg.Primary)
	if primary == "" {
		return nil, errors.New("orchestrator: primary model is required")
	}

	models := []string{primary}
	seen := map[string]struct{}{primary: {}}
	for _, m := range cfg.Fallbacks {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		models = append(models, m)
	}

	tc := cfg.Cache
	if tc == nil {
		tc = cache.Noop{}
	}
	return &Orchestrator{
		completer:  cfg.Completer,
		models:     models,
		store:      cfg.Store,
		cache:      tc,
		scratchDir: cfg.ScratchDir,
	}, nil
}

// Models returns the attempt order: the primary, then each fallback once.
// Blank ids and ids already in the list, the primary included, are dropped.
func (o *Orchestrator) Models() []string {
	out := make([]string, len(o.models))
	copy(out, o.models)
	return out
}

// Compare extracts every document and asks the models in order until one
// returns a non-empty reply. Extraction failures do not abort the run; the
// failure text stands in for the document content. When every model fails
// the error is an *ExhaustedError.
func (o *Orchestrator) Compare(ctx context.Context, docs []documents.Document, customPrompt string) (Outcome, error) {
	if len(docs) == 0 {
		return Outcome{}, ErrNoDocuments
	}

	contents := make([]ExtractedContent, 0, len(docs))
	for _, doc := range docs {
		content, err := o.extractDocument(ctx, doc)
		if err != nil {
			return Outcome{}, err
		}
		contents = append(contents, content)
	}

	system, prompt := BuildPrompt(contents, customPrompt)
	req := llm.Request{
		System:      system,
		Prompt:      prompt,
		MaxTokens:   llm.MaxOutputTokens,
		Temperature: 0,
	}

	var lastErr error
	for i, model := range o.models {
		req.Model = model
		started := time.Now()
		text, err := o.completer.Complete(ctx, req)
		if err == nil && strings.TrimSpace(text) == "" {
			err = llm.ErrEmptyResponse
		}
		elapsed := time.Since(started)
		metrics.ObserveLLMAttempt(model, err == nil, elapsed)

		fields := map[string]any{
			"request_id":  telemetry.RequestID(ctx),
			"model":       model,
			"attempt":     i + 1,
			"duration_ms": elapsed.Milliseconds(),
		}
		if err == nil {
			fields["outcome"] = "ok"
			telemetry.Info("llm.attempt", fields)
			return Outcome{Text: text, Model: model, Attempts: i + 1, Contents: contents}, nil
		}
		fields["outcome"] = "error"
		fields["err"] = sanitizeError(err)
		telemetry.Warn("llm.attempt", fields)
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return Outcome{}, ctxErr
		}
	}
	return Outcome{}, &ExhaustedError{Attempts: len(o.models), Last: lastErr}
}

// extractDocument returns the document's text, or its extraction failure as
// content. Only context cancellation is returned as an error.
func (o *Orchestrator) extractDocument(ctx context.Context, doc documents.Document) (ExtractedContent, error) {
	content := ExtractedContent{Name: doc.Name, Type: typeLabel(doc)}
	key := documents.CacheKey(doc)

	if text, ok, err := o.cache.Get(ctx, key); err != nil {
		telemetry.Warn("extract.cache_get_failed", map[string]any{"document_id": doc.ID, "err": err})
	} else if ok {
		content.Content = text
		return content, nil
	}

	text, err := o.extractToScratch(ctx, doc)
	metrics.ObserveExtraction(doc.FileType, err == nil)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return ExtractedContent{}, err
		}
		telemetry.Warn("extract.failed", map[string]any{
			"request_id":  telemetry.RequestID(ctx),
			"document_id": doc.ID,
			"file_name":   doc.FileName,
			"err":         err,
		})
		content.Content = err.Error()
		content.Err = err
		return content, nil
	}

	if err := o.cache.Set(ctx, key, text); err != nil {
		telemetry.Warn("extract.cache_set_failed", map[string]any{"document_id": doc.ID, "err": err})
	}
	content.Content = text
	return content, nil
}

// extractToScratch copies the stored bytes to a private temp file, which is
// removed before returning.
func (o *Orchestrator) extractToScratch(ctx context.Context, doc documents.Document) (string, error) {
	rc, err := o.store.Open(ctx, doc.StorageKey)
	if err != nil {
		return "", &extract.Error{Kind: extract.KindRead, MIME: doc.FileType, Err: err}
	}
	defer rc.Close()

	ext := strings.ToLower(filepath.Ext(doc.FileName))
	tmp, err := os.CreateTemp(o.scratchDir, "docanalysis-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create scratch file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := io.Copy(tmp, rc); err != nil {
		_ = tmp.Close()
		return "", &extract.Error{Kind: extract.KindRead, MIME: doc.FileType, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close scratch file: %w", err)
	}

	return extract.ExtractWithType(ctx, path, doc.FileName, doc.FileType)
}

// typeLabel is the format shown to the model for a document.
func typeLabel(doc documents.Document) string {
	if t := strings.TrimSpace(doc.FileType); t != "" {
		return t
	}
	return "File" + strings.ToLower(filepath.Ext(doc.FileName))
}

// sanitizeError flattens an error to one bounded line.
// maxErrorChars caps persisted error text, counted in runes so the stored
// value stays valid UTF-8.
const maxErrorChars = 500

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(strings.ToValidUTF8(msg, "\uFFFD"))
	return truncate(msg, maxErrorChars)
}

var _ Comparer = (*Orchestrator)(nil)
