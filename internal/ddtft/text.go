package ddtft

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	columnGapRe  = regexp.MustCompile(`[ \t]{2,}|\t`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
	itNumberRe   = regexp.MustCompile(`^-?(?:\d{1,3}(?:\.\d{3})+|\d+)(?:,\d+)?$`)
	numericDate  = regexp.MustCompile(`\b(\d{1,2})[/\-](\d{1,2})[/\-](\d{2,4})\b`)
	wordDateRe   = regexp.MustCompile(`\b(\d{1,2})\s+(GENNAIO|FEBBRAIO|MARZO|APRILE|MAGGIO|GIUGNO|LUGLIO|AGOSTO|SETTEMBRE|OTTOBRE|NOVEMBRE|DICEMBRE)\s+(\d{4})\b`)
	digitsOnlyRe = regexp.MustCompile(`^\d+$`)
)

var italianMonths = map[string]time.Month{
	"GENNAIO": time.January, "FEBBRAIO": time.February, "MARZO": time.March,
	"APRILE": time.April, "MAGGIO": time.May, "GIUGNO": time.June,
	"LUGLIO": time.July, "AGOSTO": time.August, "SETTEMBRE": time.September,
	"OTTOBRE": time.October, "NOVEMBRE": time.November, "DICEMBRE": time.December,
}

// fold upper-cases s and strips combining accents, so LOCALITÀ matches LOCALITA.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.NewReplacer("’", "'", "`", "'").Replace(out)
	return strings.ToUpper(out)
}

// splitLines splits text into lines, accepting any line-ending convention.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// collapse trims s and reduces every whitespace run to a single space.
func collapse(s string) string {
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}

// columns splits a line on runs of two or more spaces, the gap the text
// extractor leaves between layout columns.
func columns(line string) []string {
	var out []string
	for _, seg := range columnGapRe.Split(line, -1) {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// isItalianNumber reports whether s is written in Italian number format:
// "." as thousands separator and "," as decimal separator.
func isItalianNumber(s string) bool {
	return itNumberRe.MatchString(s)
}

// parseItalianNumber converts "2.310,12" to 2310.12.
func parseItalianNumber(s string) (decimal.Decimal, bool) {
	if !isItalianNumber(s) {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// makeDate builds a calendar date from day, month and year tokens. Two-digit
// years below 70 belong to this century.
func makeDate(dd, mm, yy string) (time.Time, bool) {
	day, err1 := strconv.Atoi(dd)
	month, err2 := strconv.Atoi(mm)
	year, err3 := strconv.Atoi(yy)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	switch {
	case len(yy) == 2 && year < 70:
		year += 2000
	case len(yy) == 2:
		year += 1900
	case len(yy) != 4:
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// parseDate reads the first date in s, numeric (19/05/25) or written (21 maggio 2025).
func parseDate(s string) (time.Time, bool) {
	if m := numericDate.FindStringSubmatch(s); m != nil {
		if t, ok := makeDate(m[1], m[2], m[3]); ok {
			return t, true
		}
	}
	if m := wordDateRe.FindStringSubmatch(fold(s)); m != nil {
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		t := time.Date(year, italianMonths[m[2]], day, 0, 0, 0, 0, time.UTC)
		if t.Day() == day {
			return t, true
		}
	}
	return time.Time{}, false
}

func isDigits(s string) bool {
	return digitsOnlyRe.MatchString(s)
}

// isNumericLine reports whether a line holds only digits and separators,
// such as a bare VAT number or a date.
func isNumericLine(s string) bool {
	hasDigit := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(" ./-,:", r):
		default:
			return false
		}
	}
	return hasDigit
}
