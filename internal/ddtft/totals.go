package ddtft

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const amountPattern = `(-?\d{1,3}(?:\.\d{3})+,\d{2}|-?\d+,\d{2})`

var (
	printedTotalRe    = regexp.MustCompile(`\bTOTALE(?:\s+(?:DOCUMENTO|FATTURA|DA\s+PAGARE|GENERALE))?\s*:?\s*(?:EUR|€)?\s*` + amountPattern)
	printedSubtotalRe = regexp.MustCompile(`\b(?:TOTALE\s+)?IMPONIBILE\s*:?\s*(?:EUR|€)?\s*` + amountPattern)
	printedVATRe      = regexp.MustCompile(`\b(?:TOTALE\s+)?IVA\s*:?\s*(?:EUR|€)?\s*` + amountPattern)
	// 01 10% ... 36,02 2,70: VAT summary row with taxable amount and tax.
	vatSummaryRe = regexp.MustCompile(`^\s*\d{2}\s+\d{1,2}\s*%.*?\s` + amountPattern + `\s+` + amountPattern + `\s*$`)
	amountRe     = regexp.MustCompile(amountPattern)
)

// totalTolerance is the largest difference between a printed and a
// computed total that still counts as agreement.
var totalTolerance = decimal.NewFromFloat(0.01)

// printedAmounts are the totals the document prints about itself.
type printedAmounts struct {
	subtotal, vat, total          decimal.Decimal
	hasSubtotal, hasVAT, hasTotal bool
}

func (a printedAmounts) count() int {
	n := 0
	for _, ok := range []bool{a.hasSubtotal, a.hasVAT, a.hasTotal} {
		if ok {
			n++
		}
	}
	return n
}

// reconcileTotals computes subtotal, VAT and total from the line items and
// checks them against the printed totals. Whatever the sources, the record
// always ends with total = subtotal + VAT.
func (p *Parser) reconcileTotals(d *draft) {
	const stageName = "totals"
	printed := findPrintedAmounts(d)

	if len(d.items) > 0 {
		subtotal, vat := computeTotals(d)
		computed := subtotal.Add(vat)
		d.subtotal, d.vatAmount = subtotal, vat

		if printed.hasTotal {
			if printed.total.Sub(computed).Abs().LessThanOrEqual(totalTolerance) {
				d.vatAmount = printed.total.Sub(subtotal)
			} else {
				d.diag(DiagTotalMismatch, stageName, 0, "printed total %s differs from computed total %s, computed value kept",
					printed.total.StringFixed(2), computed.StringFixed(2))
				p.log.Warn().
					Str("file", d.fileName).
					Str("printed_total", printed.total.StringFixed(2)).
					Str("computed_total", computed.StringFixed(2)).
					Msg("Printed total does not match line items")
			}
		}
	} else {
		switch {
		case printed.count() < 2:
			d.diag(DiagTotalsMissing, stageName, 0, "no line items and not enough printed totals to derive amounts")
		case !printed.hasTotal:
			d.subtotal, d.vatAmount = printed.subtotal, printed.vat
			d.diag(DiagTotalsDerived, stageName, 0, "amounts taken from printed totals, no line items")
		case !printed.hasVAT:
			d.subtotal, d.vatAmount = printed.subtotal, printed.total.Sub(printed.subtotal)
			d.diag(DiagTotalsDerived, stageName, 0, "amounts taken from printed totals, no line items")
		default:
			d.subtotal, d.vatAmount = printed.total.Sub(printed.vat), printed.vat
			d.diag(DiagTotalsDerived, stageName, 0, "amounts taken from printed totals, no line items")
		}
	}

	d.total = d.subtotal.Add(d.vatAmount)
}

// computeTotals sums the line totals and the VAT of each rate group. Each
// group's VAT is rounded to the cent before summing.
func computeTotals(d *draft) (decimal.Decimal, decimal.Decimal) {
	subtotal := decimal.Zero
	byRate := make(map[int]decimal.Decimal)
	for _, it := range d.items {
		subtotal = subtotal.Add(it.LineTotal)
		byRate[it.VATRate] = byRate[it.VATRate].Add(it.LineTotal)
	}

	rates := make([]int, 0, len(byRate))
	for r := range byRate {
		rates = append(rates, r)
	}
	sort.Ints(rates)

	vat := decimal.Zero
	for _, r := range rates {
		vat = vat.Add(byRate[r].Mul(decimal.NewFromInt(int64(r))).Div(hundred).Round(2))
	}
	return subtotal.Round(2), vat
}

// findPrintedAmounts reads the totals block. Labelled values win over VAT
// summary rows, which win over a bare amount printed twice on one line.
func findPrintedAmounts(d *draft) printedAmounts {
	var a printedAmounts
	summarySub, summaryVAT := decimal.Zero, decimal.Zero
	hasSummary := false
	var repeated decimal.Decimal
	hasRepeated := false

	for _, l := range d.lines {
		if looksLikeProductRow(l.up) {
			continue
		}
		if m := printedSubtotalRe.FindStringSubmatch(l.up); m != nil {
			if v, ok := parseItalianNumber(m[1]); ok {
				a.subtotal, a.hasSubtotal = v, true
			}
		}
		if m := printedVATRe.FindStringSubmatch(l.up); m != nil {
			if v, ok := parseItalianNumber(m[1]); ok {
				a.vat, a.hasVAT = v, true
			}
		}
		if m := printedTotalRe.FindStringSubmatch(l.up); m != nil {
			if v, ok := parseItalianNumber(m[1]); ok {
				a.total, a.hasTotal = v, true
			}
		}
		if m := vatSummaryRe.FindStringSubmatch(l.up); m != nil {
			sub, ok1 := parseItalianNumber(m[1])
			tax, ok2 := parseItalianNumber(m[2])
			if ok1 && ok2 {
				summarySub, summaryVAT = summarySub.Add(sub), summaryVAT.Add(tax)
				hasSummary = true
			}
		}
		if v, ok := repeatedAmount(l.up); ok {
			repeated, hasRepeated = v, true
		}
	}

	if hasSummary {
		if !a.hasSubtotal {
			a.subtotal, a.hasSubtotal = summarySub, true
		}
		if !a.hasVAT {
			a.vat, a.hasVAT = summaryVAT, true
		}
	}
	if !a.hasTotal && hasRepeated {
		a.total, a.hasTotal = repeated, true
	}
	return a
}

// repeatedAmount reports a line made of one amount printed at least twice,
// the way some templates repeat the document total in the footer.
func repeatedAmount(up string) (decimal.Decimal, bool) {
	fields := strings.Fields(up)
	if len(fields) < 2 {
		return decimal.Zero, false
	}
	for _, f := range fields {
		if f != fields[0] || !amountRe.MatchString(f) || amountRe.FindString(f) != f {
			return decimal.Zero, false
		}
	}
	return parseItalianNumber(fields[0])
}
