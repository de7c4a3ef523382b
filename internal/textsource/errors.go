package textsource

import (
	"errors"
	"fmt"
)

// Common text extraction errors
var (
	// ErrFileTooLarge is returned when the input exceeds the configured size limit.
	ErrFileTooLarge = errors.New("input exceeds the maximum file size")

	// ErrInvalidPDF is returned when the provided data is not a valid PDF document.
	ErrInvalidPDF = errors.New("invalid or corrupted PDF document")

	// ErrEmptyDocument is returned when the document has no text layer.
	// Scanned PDFs without embedded text end up here.
	ErrEmptyDocument = errors.New("document contains no readable text")

	// ErrCanceled is returned when the context is canceled during extraction.
	ErrCanceled = errors.New("text extraction was canceled")
)

// SourceError wraps errors with additional context about an extraction failure.
type SourceError struct {
	// Op is the operation that failed (e.g., "ExtractWithMetadata").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("textsource: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("textsource: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *SourceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewSourceError creates a new SourceError with the specified operation and underlying error.
func NewSourceError(op string, err error, details string) *SourceError {
	return &SourceError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapSourceError wraps an error as a SourceError if it isn't already one.
func WrapSourceError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var srcErr *SourceError
	if errors.As(err, &srcErr) {
		return err
	}

	return NewSourceError(op, err, details)
}
