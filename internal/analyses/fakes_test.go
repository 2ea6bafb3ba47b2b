package analyses

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"docanalysis-backend/internal/documents"
	"docanalysis-backend/internal/llm"
	"docanalysis-backend/internal/shared/storage/object/local"
)

type fakeReply struct {
	text string
	err  error
}

// fakeCompleter answers per model and records every request.
type fakeCompleter struct {
	mu      sync.Mutex
	replies map[string]fakeReply
	calls   []llm.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	reply, ok := f.replies[req.Model]
	if !ok {
		return "", errors.New("model not found: " + req.Model)
	}
	return reply.text, reply.err
}

func (f *fakeCompleter) models() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Model)
	}
	return out
}

func storeDoc(t *testing.T, store *local.Store, fileName string, data []byte) documents.Document {
	t.Helper()
	key, size, sniffed, err := store.Save(context.Background(), fileName, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("save %s: %v", fileName, err)
	}
	return documents.Document{
		ID:         uuid.NewString(),
		Name:       documents.DefaultName(fileName),
		FileName:   fileName,
		FileType:   documents.ResolveFileType(fileName, sniffed),
		SizeBytes:  size,
		StorageKey: key,
	}
}

// memoryCache is a TextCache backed by a map.
type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = text
	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
