package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupported marks files whose resolved type has no extraction strategy.
var ErrUnsupported = errors.New("unsupported file format")

// Kind classifies an extraction failure.
type Kind string

const (
	KindUnsupported Kind = "unsupported"
	KindRead        Kind = "read"
	KindParse       Kind = "parse"
)

// Error describes why a file produced no text. Callers that want to degrade
// rather than abort can use Error() as a stand-in for the content.
type Error struct {
	Kind Kind
	MIME string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnsupported:
		return fmt.Sprintf("unsupported file format: %s", e.MIME)
	case KindRead:
		return fmt.Sprintf("error reading text file: %v", e.Err)
	default:
		return fmt.Sprintf("error extracting %s: %v", e.MIME, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Extract returns the plain text of the file at path. declaredName is the
// user-facing file name and drives format detection, so scratch copies with
// arbitrary names still dispatch correctly; when empty, path is used.
func Extract(ctx context.Context, path, declaredName string) (string, error) {
	return ExtractWithType(ctx, path, declaredName, "")
}

// ExtractWithType is Extract with a stored MIME type used as a hint when the
// name carries no recognizable extension.
func ExtractWithType(ctx context.Context, path, declaredName, declaredType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := declaredName
	if strings.TrimSpace(name) == "" {
		name = path
	}
	mimeType := Resolve(name, declaredType)
	ext := strings.ToLower(filepath.Ext(name))

	var (
		text string
		err  error
	)
	switch {
	case mimeType == "" || mimeType == MIMEText || ext == ".txt":
		text, err = readPlainText(path)
		if err != nil {
			return "", &Error{Kind: KindRead, MIME: MIMEText, Err: err}
		}
		return text, nil
	case mimeType == MIMEPDF:
		text, err = extractPDF(path)
	case mimeType == MIMEDOCX:
		text, err = extractDOCX(path)
	case mimeType == MIMEXLSX:
		text, err = extractSpreadsheet(path)
	case mimeType == MIMECSV:
		text, err = extractCSV(path)
	case mimeType == MIMEJSON:
		text, err = extractJSON(path)
	default:
		return "", &Error{Kind: KindUnsupported, MIME: mimeType, Err: ErrUnsupported}
	}
	if err != nil {
		return "", &Error{Kind: KindParse, MIME: mimeType, Err: err}
	}
	return text, nil
}
