package object

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"docanalysis-backend/internal/shared/util"
)

var (
	// ErrInvalidKey is returned for storage keys that escape the store root.
	ErrInvalidKey = errors.New("invalid storage key")
	// ErrNotFound is returned by Open when no object exists under the key.
	ErrNotFound = errors.New("object not found")
)

// KeyPrefix namespaces uploaded documents inside a store.
const KeyPrefix = "documents"

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	Save(ctx context.Context, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}

// SniffLen is how many leading bytes are inspected for content detection.
const SniffLen = 3072

// Sniff reads up to SniffLen bytes from r, detects the content type, and
// returns a reader that replays the consumed prefix.
func Sniff(r io.Reader) (mimeType string, prefix []byte, err error) {
	buf := make([]byte, SniffLen)
	n, readErr := io.ReadFull(r, buf)
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("read sniff: %w", readErr)
	}
	buf = buf[:n]
	return mimetype.Detect(buf).String(), buf, nil
}

// NewKey builds a unique storage key for an uploaded file name:
// documents/<uuid>_<sanitized name>.
func NewKey(fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	return path.Join(KeyPrefix, uuid.NewString()+"_"+name), nil
}
