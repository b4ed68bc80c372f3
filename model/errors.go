package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for document open failures.
var (
	// ErrPasswordRequired indicates the document is encrypted and the
	// supplied password, if any, did not open it.
	ErrPasswordRequired = errors.New("password required")

	// ErrUnsupportedPDF indicates the file is not a PDF this library can
	// process.
	ErrUnsupportedPDF = errors.New("unsupported or damaged PDF")
)

// ExtractionError wraps a failure in a pipeline stage with the page it
// occurred on. Page is 0 for document-level failures.
type ExtractionError struct {
	Stage string
	Page  int
	Err   error
}

func (e *ExtractionError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("%s failed on page %d: %v", e.Stage, e.Page, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// NewExtractionError builds a stage error for a page.
func NewExtractionError(stage string, page int, err error) *ExtractionError {
	return &ExtractionError{Stage: stage, Page: page, Err: err}
}
