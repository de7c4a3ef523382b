package textsource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"ddtft/internal/logger"
)

const (
	// Horizontal gaps, in multiples of the font size, that separate words
	// and layout columns.
	wordGapRatio   = 0.15
	columnGapRatio = 1.2

	// columnSeparator is what a column gap becomes in the rebuilt row.
	columnSeparator = "   "
)

// PDFTextSource implements Source on the PDF text layer.
type PDFTextSource struct {
	maxBytes int64
	log      zerolog.Logger
}

// Option configures a text source.
type Option func(*options)

type options struct {
	maxBytes int64
}

// WithMaxBytes limits the size of accepted inputs.
func WithMaxBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBytes = n
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewPDFTextSource creates a PDF text source.
func NewPDFTextSource(opts ...Option) *PDFTextSource {
	o := applyOptions(opts)
	return &PDFTextSource{
		maxBytes: o.maxBytes,
		log:      logger.WithComponent("textsource"),
	}
}

// ExtractText extracts the text layer of a PDF document.
func (s *PDFTextSource) ExtractText(ctx context.Context, r io.Reader) (string, error) {
	result, err := s.ExtractWithMetadata(ctx, r)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ExtractWithMetadata extracts the text layer of a PDF document with page count and timing.
func (s *PDFTextSource) ExtractWithMetadata(ctx context.Context, r io.Reader) (*Result, error) {
	const op = "ExtractWithMetadata"
	startTime := time.Now()

	data, err := readLimited(r, s.maxBytes)
	if err != nil {
		return nil, WrapSourceError(op, err, fmt.Sprintf("limit: %d bytes", s.maxBytes))
	}
	if len(data) < 4 || string(data[:4]) != "%PDF" {
		return nil, WrapSourceError(op, ErrInvalidPDF, "missing PDF header")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, WrapSourceError(op, ErrInvalidPDF, err.Error())
	}

	var text strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, WrapSourceError(op, ErrCanceled, err.Error())
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			s.log.Warn().Err(err).Int("page", i).Msg("Skipping unreadable page")
			continue
		}
		for _, row := range sortRows(rows) {
			line := layoutRow(toGlyphs(row.Content))
			if strings.TrimSpace(line) == "" {
				continue
			}
			text.WriteString(line)
			text.WriteByte('\n')
		}
	}

	if strings.TrimSpace(text.String()) == "" {
		return nil, NewSourceError(op, ErrEmptyDocument, fmt.Sprintf("%d pages without a text layer", pages))
	}

	processedAt := time.Now()
	s.log.Debug().
		Int("pages", pages).
		Int("bytes", len(data)).
		Dur("duration", processedAt.Sub(startTime)).
		Msg("PDF text layer extracted")

	return &Result{
		Text:               text.String(),
		PageCount:          pages,
		Source:             "pdf_text_layer",
		ProcessedAt:        processedAt,
		ProcessingDuration: processedAt.Sub(startTime),
	}, nil
}

// sortRows orders rows top to bottom. PDF y coordinates grow upwards.
func sortRows(rows pdf.Rows) pdf.Rows {
	out := append(pdf.Rows(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position > out[j].Position
	})
	return out
}

// glyph is a positioned run of text on a row.
type glyph struct {
	x, w, size float64
	s          string
}

func toGlyphs(texts pdf.TextHorizontal) []glyph {
	out := make([]glyph, 0, len(texts))
	for _, t := range texts {
		out = append(out, glyph{x: t.X, w: t.W, size: t.FontSize, s: t.S})
	}
	return out
}

// layoutRow rebuilds a printed row from its glyphs. Gaps wider than a
// column gap become columnSeparator, narrower gaps a single space.
func layoutRow(glyphs []glyph) string {
	sorted := append([]glyph(nil), glyphs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].x < sorted[j].x })

	var b strings.Builder
	end := 0.0
	for i, g := range sorted {
		size := g.size
		if size <= 0 {
			size = 10
		}
		if i > 0 {
			gap := g.x - end
			switch {
			case gap > columnGapRatio*size:
				b.WriteString(columnSeparator)
			case gap > wordGapRatio*size && !strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(g.s, " "):
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.s)

		w := g.w
		if w <= 0 {
			w = float64(len([]rune(g.s))) * size * 0.5
		}
		if e := g.x + w; e > end || i == 0 {
			end = e
		}
	}
	return strings.TrimRight(b.String(), " ")
}
