package textsource

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// PlainTextSource implements Source on text already extracted by another tool.
type PlainTextSource struct {
	maxBytes int64
}

// NewPlainTextSource creates a plain text source.
func NewPlainTextSource(opts ...Option) *PlainTextSource {
	return &PlainTextSource{maxBytes: applyOptions(opts).maxBytes}
}

// ExtractText returns the input as UTF-8 text.
func (s *PlainTextSource) ExtractText(ctx context.Context, r io.Reader) (string, error) {
	result, err := s.ExtractWithMetadata(ctx, r)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ExtractWithMetadata returns the input as UTF-8 text. Input that is not
// valid UTF-8 is decoded as Windows-1252, the usual encoding of Italian
// text exports.
func (s *PlainTextSource) ExtractWithMetadata(ctx context.Context, r io.Reader) (*Result, error) {
	const op = "ExtractWithMetadata"
	startTime := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, WrapSourceError(op, ErrCanceled, err.Error())
	}
	data, err := readLimited(r, s.maxBytes)
	if err != nil {
		return nil, WrapSourceError(op, err, fmt.Sprintf("limit: %d bytes", s.maxBytes))
	}

	text := string(data)
	source := "plain_text"
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, WrapSourceError(op, err, "decoding Windows-1252")
		}
		text = string(decoded)
		source = "plain_text_windows1252"
	}
	text = strings.TrimPrefix(text, "\ufeff")

	if strings.TrimSpace(text) == "" {
		return nil, NewSourceError(op, ErrEmptyDocument, "")
	}

	processedAt := time.Now()
	return &Result{
		Text:               text,
		PageCount:          1,
		Source:             source,
		ProcessedAt:        processedAt,
		ProcessingDuration: processedAt.Sub(startTime),
	}, nil
}

// ForFile picks the source matching a file name: PDF for .pdf, plain text otherwise.
func ForFile(name string, opts ...Option) Source {
	if strings.EqualFold(extension(name), ".pdf") {
		return NewPDFTextSource(opts...)
	}
	return NewPlainTextSource(opts...)
}

func extension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 && !strings.ContainsAny(name[i:], `/\`) {
		return name[i:]
	}
	return ""
}
