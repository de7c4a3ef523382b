package ddtft

import (
	"errors"
	"fmt"
)

// Common parsing errors
var (
	// ErrEmptyText is returned when the input text is empty or only whitespace.
	// It is the only condition under which Parse fails; every other problem is
	// reported as a diagnostic on the returned record.
	ErrEmptyText = errors.New("document text is empty")
)

// Diagnostic codes attached to parsed records.
const (
	DiagUnclassified       = "unclassified"
	DiagPlaceholderCode    = "placeholder_client_code"
	DiagInvalidMetadata    = "invalid_metadata_value"
	DiagOrderEqualsNumber  = "order_number_equals_document_number"
	DiagOrderIsOperator    = "order_number_is_operator_code"
	DiagSellerInClientName = "client_name_contains_seller"
	DiagClientNotFound     = "client_name_not_found"
	DiagAddressNotFound    = "delivery_address_not_found"
	DiagUnparsedRow        = "unparsed_product_row"
	DiagLineTotalMismatch  = "line_total_mismatch"
	DiagVATRateAnomaly     = "vat_rate_anomaly"
	DiagVATRateCorrected   = "vat_rate_corrected"
	DiagTotalMismatch      = "printed_total_mismatch"
	DiagTotalsDerived      = "totals_derived_from_printed_values"
	DiagTotalsMissing      = "totals_missing"
)

// ParseError wraps errors with additional context about a parsing failure.
type ParseError struct {
	// Op is the operation that failed (e.g., "Parse").
	Op string

	// Err is the underlying error.
	Err error

	// FileName is the classification hint of the failing document, if any.
	FileName string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.FileName != "" {
		return fmt.Sprintf("ddtft: %s failed (file: %s): %v", e.Op, e.FileName, e.Err)
	}
	return fmt.Sprintf("ddtft: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ParseError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewParseError creates a new ParseError for the given operation and file.
func NewParseError(op string, err error, fileName string) *ParseError {
	return &ParseError{
		Op:       op,
		Err:      err,
		FileName: fileName,
	}
}
