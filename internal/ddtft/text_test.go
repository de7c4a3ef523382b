package ddtft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItalianNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2.310,12", "2310.12", true},
		{"14,2600", "14.26", true},
		{"162", "162", true},
		{"-15,00", "-15", true},
		{"1.234.567,8", "1234567.8", true},
		{"0,00", "0", true},
		{"2310.12", "", false},
		{"12,", "", false},
		{"1.23,45", "", false},
		{"abc", "", false},
	}
	for _, tt := range tests {
		got, ok := parseItalianNumber(tt.in)
		require.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.True(t, dec(tt.want).Equal(got), "%s: got %s", tt.in, got)
		}
	}
}

func TestMakeDate(t *testing.T) {
	tests := []struct {
		dd, mm, yy string
		want       string
		ok         bool
	}{
		{"19", "05", "25", "2025-05-19", true},
		{"1", "1", "69", "2069-01-01", true},
		{"31", "12", "70", "1970-12-31", true},
		{"21", "05", "2025", "2025-05-21", true},
		{"30", "02", "25", "", false},
		{"01", "13", "25", "", false},
		{"00", "01", "25", "", false},
		{"01", "01", "025", "", false},
	}
	for _, tt := range tests {
		got, ok := makeDate(tt.dd, tt.mm, tt.yy)
		require.Equal(t, tt.ok, ok, "%s/%s/%s", tt.dd, tt.mm, tt.yy)
		if tt.ok {
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		}
	}
}

func TestParseDate(t *testing.T) {
	got, ok := parseDate("Documento del 19/05/25 pag. 1")
	require.True(t, ok)
	assert.Equal(t, "2025-05-19", got.Format("2006-01-02"))

	got, ok = parseDate("Magliano Alfieri, 21 maggio 2025")
	require.True(t, ok)
	assert.Equal(t, "2025-05-21", got.Format("2006-01-02"))

	got, ok = parseDate("19-05-2025")
	require.True(t, ok)
	assert.Equal(t, "2025-05-19", got.Format("2006-01-02"))

	_, ok = parseDate("31 febbraio 2025")
	assert.False(t, ok)
	_, ok = parseDate("nessuna data")
	assert.False(t, ok)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "LOCALITA FRAZIONE", fold("Località frazione"))
	assert.Equal(t, "QUANTITA", fold("Quantità"))
	assert.Equal(t, "L'ALBERO", fold("l’albero"))
}

func TestColumns(t *testing.T) {
	assert.Equal(t, []string{"VIA ROMA, 12", "VIA CAVOUR, 61"}, columns("VIA ROMA, 12          VIA CAVOUR, 61"))
	assert.Equal(t, []string{"A B", "C"}, columns("  A B\tC  "))
	assert.Nil(t, columns("    "))
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", ""}, splitLines("a\r\nb\rc\n"))
}

func TestIsNumericLine(t *testing.T) {
	assert.True(t, isNumericLine("04064060041"))
	assert.True(t, isNumericLine("19/05/25"))
	assert.False(t, isNumericLine("VIA 12"))
	assert.False(t, isNumericLine(" - "))
}
