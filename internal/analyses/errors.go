package analyses

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrNoDocuments  = errors.New("no documents provided for analysis")
)

// Messages persisted as the result of a failed run.
const (
	noDocumentsMessage = "No documents provided for analysis"
	failedPrefix       = "Analysis failed: "
)

// ExhaustedError is returned when the primary model and every fallback failed.
// Its message is stored as the analysis result.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("Could not get a response from any available model. Check your API key and model access. Last error: %v", e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}
