// Package textsource turns document files into the plain text the parser
// reads.
//
// Two sources are provided:
//   - PDFTextSource reads the embedded text layer of a PDF and rebuilds each
//     printed row from glyph positions. Wide horizontal gaps between glyphs
//     become runs of spaces, so side-by-side layout columns stay apart.
//   - PlainTextSource reads text that was extracted elsewhere, decoding
//     Windows-1252 when the input is not valid UTF-8.
//
// Scanned PDFs without a text layer fail with ErrEmptyDocument; OCR is out
// of scope for this package.
package textsource

import (
	"context"
	"io"
	"time"
)

// DefaultMaxBytes is the input size limit used when none is configured.
const DefaultMaxBytes = 50 << 20

// Source defines the interface for document text extraction.
type Source interface {
	// ExtractText returns the text of all pages in reading order.
	ExtractText(ctx context.Context, r io.Reader) (string, error)

	// ExtractWithMetadata returns the text together with extraction details.
	ExtractWithMetadata(ctx context.Context, r io.Reader) (*Result, error)
}

// Result contains extracted text with metadata.
type Result struct {
	// Text is the content of all pages, one printed row per line.
	Text string `json:"text"`

	// PageCount is the number of pages read. Plain text counts as one page.
	PageCount int `json:"page_count"`

	// Source names the extractor, e.g. "pdf_text_layer".
	Source string `json:"source"`

	// ProcessedAt is the timestamp when extraction completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long extraction took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// readLimited reads at most max bytes from r.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
