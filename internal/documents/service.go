package documents

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"docanalysis-backend/internal/extract"
	"docanalysis-backend/internal/shared/cache"
	"docanalysis-backend/internal/shared/storage/object"
	"docanalysis-backend/internal/shared/telemetry"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
	maxNameLength   = 255
)

// Service contains business logic for documents.
type Service struct {
	Store object.ObjectStore
	Repo  DocumentsRepo
	// Cache is invalidated on delete; nil disables it.
	Cache cache.TextCache
}

// Upload saves the file to object storage and records the document. An empty
// name defaults to the file name without its extension.
func (s *Service) Upload(ctx context.Context, fileName, name string, r io.Reader) (Document, error) {
	fileName = strings.TrimSpace(filepath.Base(fileName))
	if fileName == "" || fileName == "." || fileName == string(filepath.Separator) {
		return Document{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName(fileName)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return Document{}, fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, maxNameLength)
	}

	storageKey, size, sniffed, err := s.Store.Save(ctx, fileName, r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:         uuid.NewString(),
		Name:       name,
		FileName:   fileName,
		FileType:   ResolveFileType(fileName, sniffed),
		SizeBytes:  size,
		StorageKey: storageKey,
		UploadedAt: time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		if delErr := s.Store.Delete(ctx, storageKey); delErr != nil {
			telemetry.Error("document.orphaned", map[string]any{"storage_key": storageKey, "err": delErr})
		}
		return Document{}, err
	}

	telemetry.Info("document.uploaded", map[string]any{
		"document_id": doc.ID,
		"file_name":   doc.FileName,
		"file_type":   doc.FileType,
		"size_bytes":  doc.SizeBytes,
	})
	return doc, nil
}

// DefaultName strips the extension from a file name.
func DefaultName(fileName string) string {
	base := filepath.Base(fileName)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		return base
	}
	return name
}

// ResolveFileType determines the stored type: the name-based table first,
// then the sniffed content type, then application/octet-stream.
func ResolveFileType(fileName, sniffed string) string {
	if t := extract.GuessMIME(fileName); t != "" {
		return t
	}
	if t := extract.NormalizeMIME(sniffed); t != "" {
		return t
	}
	return extract.MIMEOctetStream
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	return s.Repo.GetByID(ctx, id)
}

// GetMany returns the existing documents among ids, in order.
func (s *Service) GetMany(ctx context.Context, ids []string) ([]Document, error) {
	return s.Repo.GetByIDs(ctx, ids)
}

// List returns a page of documents and the total count.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Document, int, error) {
	docs, err := s.Repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// Count returns the number of documents.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.Repo.Count(ctx)
}

// Open streams the stored bytes of a document.
func (s *Service) Open(ctx context.Context, doc Document) (io.ReadCloser, error) {
	return s.Store.Open(ctx, doc.StorageKey)
}

// Delete removes the record, then the stored bytes and cached text best-effort.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, doc.StorageKey); err != nil {
		telemetry.Error("document.storage_delete_failed", map[string]any{"document_id": id, "err": err})
	}
	if s.Cache != nil {
		if err := s.Cache.Delete(ctx, CacheKey(doc)); err != nil {
			telemetry.Error("document.cache_delete_failed", map[string]any{"document_id": id, "err": err})
		}
	}
	telemetry.Info("document.deleted", map[string]any{"document_id": id})
	return nil
}

// CacheKey identifies a document's extracted text in the cache. Stored
// objects are immutable, so the storage key is stable.
func CacheKey(doc Document) string {
	return doc.StorageKey
}
