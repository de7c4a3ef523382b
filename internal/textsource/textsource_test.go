package textsource

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutRow(t *testing.T) {
	tests := []struct {
		name   string
		glyphs []glyph
		want   string
	}{
		{
			name: "two columns",
			glyphs: []glyph{
				{x: 300, w: 60, size: 10, s: "VIA SALUZZO, 65"},
				{x: 40, w: 150, size: 10, s: "VIA MARGARITA, 8"},
			},
			want: "VIA MARGARITA, 8   VIA SALUZZO, 65",
		},
		{
			name: "single characters joined into words",
			glyphs: []glyph{
				{x: 10, w: 5, size: 10, s: "P"},
				{x: 15, w: 5, size: 10, s: "Z"},
				{x: 23, w: 5, size: 10, s: "1"},
				{x: 28, w: 5, size: 10, s: "6"},
				{x: 33, w: 5, size: 10, s: "2"},
			},
			want: "PZ 162",
		},
		{
			name: "missing widths are estimated",
			glyphs: []glyph{
				{x: 0, size: 10, s: "TOTALE"},
				{x: 80, size: 10, s: "38,72"},
			},
			want: "TOTALE   38,72",
		},
		{
			name: "explicit spaces are kept once",
			glyphs: []glyph{
				{x: 0, w: 20, size: 10, s: "DDT "},
				{x: 22, w: 20, size: 10, s: "4521"},
			},
			want: "DDT 4521",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, layoutRow(tt.glyphs))
		})
	}
}

func TestPDFTextSourceRejectsInvalidInput(t *testing.T) {
	src := NewPDFTextSource()

	_, err := src.ExtractText(context.Background(), strings.NewReader("not a pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPDF))

	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, "ExtractWithMetadata", srcErr.Op)

	_, err = src.ExtractText(context.Background(), strings.NewReader("%PDF-1.4 truncated"))
	assert.True(t, errors.Is(err, ErrInvalidPDF))
}

func TestSizeLimit(t *testing.T) {
	src := NewPDFTextSource(WithMaxBytes(8))
	_, err := src.ExtractText(context.Background(), strings.NewReader("%PDF-1.4 0123456789"))
	assert.True(t, errors.Is(err, ErrFileTooLarge))

	plain := NewPlainTextSource(WithMaxBytes(4))
	_, err = plain.ExtractText(context.Background(), strings.NewReader("12345"))
	assert.True(t, errors.Is(err, ErrFileTooLarge))
}

func TestPlainTextSource(t *testing.T) {
	src := NewPlainTextSource()

	res, err := src.ExtractWithMetadata(context.Background(), strings.NewReader("\ufeffDDT 4521\nLocalità Tetto"))
	require.NoError(t, err)
	assert.Equal(t, "DDT 4521\nLocalità Tetto", res.Text)
	assert.Equal(t, "plain_text", res.Source)
	assert.Equal(t, 1, res.PageCount)

	// "Località" in Windows-1252
	res, err = src.ExtractWithMetadata(context.Background(), strings.NewReader("Localit\xe0"))
	require.NoError(t, err)
	assert.Equal(t, "Località", res.Text)
	assert.Equal(t, "plain_text_windows1252", res.Source)

	_, err = src.ExtractText(context.Background(), strings.NewReader("  \n "))
	assert.True(t, errors.Is(err, ErrEmptyDocument))
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPlainTextSource().ExtractText(ctx, strings.NewReader("DDT 1"))
	assert.True(t, errors.Is(err, ErrCanceled))
}

func TestForFile(t *testing.T) {
	assert.IsType(t, &PDFTextSource{}, ForFile("DDV_4521_2025.PDF"))
	assert.IsType(t, &PlainTextSource{}, ForFile("DDV_4521_2025.txt"))
	assert.IsType(t, &PlainTextSource{}, ForFile("archivio.pdf/nota"))
}
