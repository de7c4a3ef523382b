package ddtft

import (
	"regexp"
	"strings"
	"time"
)

type orderPattern struct {
	re         *regexp.Regexp
	method     string
	confidence float64
}

// Order reference patterns, most specific first.
var orderPatterns = []orderPattern{
	{regexp.MustCompile(`\bRIF\.?\s*V[S.]?\s*\.?\s*ORDINE\s*(?:N[°R]?\.?)?\s*[:.]?\s*([A-Z0-9][A-Z0-9/\-]*)`), "customer_order_reference", confLabeled},
	{regexp.MustCompile(`\bODV\s+NR?\.?\s*([A-Z0-9][A-Z0-9/\-]*)`), "sales_order_reference", confLabeled},
	{regexp.MustCompile(`\bRIFERIMENTO\s+VOSTRO\s+ORDINE\s*[:.]?\s*(?:N[°R]?\.?\s*)?([A-Z0-9][A-Z0-9/\-]*)`), "customer_order_reference", confLabeled},
	{regexp.MustCompile(`\bVS\.?\s*ORDINE\s*[:.]?\s*(?:N[°R]?\.?\s*)?([A-Z0-9][A-Z0-9/\-]*)`), "customer_order_reference", confLabeled},
	{regexp.MustCompile(`\bORDINE\s+N[°R]?\.?\s*([A-Z0-9][A-Z0-9/\-]*)`), "order_label", confLabeled},
	{regexp.MustCompile(`\b(507[A-Z0-9]{8,})\b`), "order_code", confFileName},
}

var (
	invoiceNumberLineRe = regexp.MustCompile(`\bFT\s+\d+`)
	operatorLabelRe     = regexp.MustCompile(`\bOPERATORE\b`)
	operatorCodeRe      = regexp.MustCompile(`^\s*(\d{3})\s+[A-Z]`)
	operatorInlineRe    = regexp.MustCompile(`\bOPERATORE\b\s*:?\s*(\d{3})\b`)
	orderDateRe         = regexp.MustCompile(`\bDEL\s+(\d{1,2})[/\-](\d{1,2})(?:[/\-](\d{2,4}))?\b`)
	hasDigitRe          = regexp.MustCompile(`\d`)
)

// extractOrder finds the customer order reference. The operator code
// printed with "Operatore", any known staff code and any value equal to the
// document number are never order numbers.
func (p *Parser) extractOrder(d *draft) {
	const stageName = "order"
	operator := operatorCode(d)

	for _, pat := range orderPatterns {
		for i, l := range d.lines {
			if invoiceNumberLineRe.MatchString(l.up) {
				continue
			}
			m := pat.re.FindStringSubmatchIndex(l.up)
			if m == nil {
				continue
			}
			value := strings.Trim(l.up[m[2]:m[3]], "/-")
			if !hasDigitRe.MatchString(value) {
				continue
			}
			if value == operator || p.lookup.IsOperatorCode(value) {
				d.diag(DiagOrderIsOperator, stageName, l.no, "%s is the operator code, not an order number", value)
				continue
			}
			if !d.orderNumber.offer(value, pat.method, pat.confidence) {
				continue
			}
			d.orderDate.reset()
			if t, ok := orderDateNear(d, i, m[1]); ok {
				d.orderDate.offer(t, pat.method, pat.confidence)
			}
		}
	}

	if n := d.orderNumber.get(); n != "" && n == d.number.get() {
		d.diag(DiagOrderEqualsNumber, stageName, 0, "order number %s equals the document number, discarded", n)
		d.orderNumber.reset()
		d.orderDate.reset()
	}
	if t := d.orderDate.get(); !t.IsZero() && t.Equal(d.date.get()) {
		d.orderDate.reset()
	}
}

// operatorCode returns the code printed after "Operatore", on the same
// line or on one of the two lines below.
func operatorCode(d *draft) string {
	for i, l := range d.lines {
		if !operatorLabelRe.MatchString(l.up) {
			continue
		}
		if m := operatorInlineRe.FindStringSubmatch(l.up); m != nil {
			return m[1]
		}
		for j := i + 1; j < len(d.lines) && j <= i+2; j++ {
			if m := operatorCodeRe.FindStringSubmatch(d.lines[j].up); m != nil {
				return m[1]
			}
		}
	}
	return ""
}

// operatorLines marks the "Operatore" label lines and the code lines below them.
func operatorLines(d *draft) map[int]bool {
	out := make(map[int]bool)
	for i, l := range d.lines {
		if !operatorLabelRe.MatchString(l.up) {
			continue
		}
		out[i] = true
		for j := i + 1; j < len(d.lines) && j <= i+2; j++ {
			if operatorCodeRe.MatchString(d.lines[j].up) {
				out[j] = true
				break
			}
		}
	}
	return out
}

// orderDateNear reads "del dd/mm[/yy]" after the order reference or on the
// next line. A date without year takes the document's year.
func orderDateNear(d *draft, i, from int) (time.Time, bool) {
	candidates := []string{d.lines[i].up[from:]}
	if i+1 < len(d.lines) {
		candidates = append(candidates, d.lines[i+1].up)
	}
	for _, s := range candidates {
		m := orderDateRe.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		year := m[3]
		if year == "" {
			docDate := d.date.get()
			if docDate.IsZero() {
				continue
			}
			year = docDate.Format("2006")
		}
		if t, ok := makeDate(m[1], m[2], year); ok {
			return t, true
		}
	}
	return time.Time{}, false
}
