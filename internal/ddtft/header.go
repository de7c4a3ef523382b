package ddtft

import (
	"regexp"
	"strings"
	"time"

	"ddtft/pkg/models"
)

var (
	// FT 4904 21/05/25 10.32 20001 03247720042 01234567890
	invoiceRowRe = regexp.MustCompile(`^\s*(FT|NC)\s+(\d+)\s+(\d{1,2}/\d{1,2}/\d{2,4})\b(.*)$`)
	// 4521 19/05/25 1 20322 DONAC S.R.L.
	ddvRowRe = regexp.MustCompile(`^\s*(\d{4,6})\s+(\d{1,2}/\d{1,2}/\d{2,4})\s+(\d{1,3})\s+(\d{4,6})(?:\s+(.*))?$`)
	// 467321/05/25: number and date printed without a gap
	ddvJoinedRe = regexp.MustCompile(`^\s*(\d{4})(\d{1,2})/(\d{2})/(\d{2,4})\s*$`)
	// FTV_<seq>_<year>_<client code>_<number>_<ddmmyyyy>
	ftvFileNameRe = regexp.MustCompile(`FTV_(\d+)_(\d{4})_(\d{4,6})_(\d+)_(\d{2})(\d{2})(\d{4})`)

	labeledNumberRes = []*regexp.Regexp{
		regexp.MustCompile(`\bDDT\s+(?:N[°.]?\s*)?(\d+)`),
		regexp.MustCompile(`\bD\.D\.T\.\s*(?:N[°.]?\s*)?(\d+)`),
		regexp.MustCompile(`DOCUMENTO\s+DI\s+TRASPORTO\s+N[°.]?\s*(\d+)`),
		regexp.MustCompile(`\bFATTURA\s*N[°.]?\s*(\d+)`),
		regexp.MustCompile(`\bFATT\.\s*N[°.]?\s*(\d+)`),
		regexp.MustCompile(`NOTA\s+(?:DI\s+)?CREDITO\s*N[°.]?\s*(\d+)`),
		regexp.MustCompile(`\bNUMERO\s+DOCUMENTO\s*[:.]?\s*(\d+)`),
	}
	labeledDateRe = regexp.MustCompile(`\bDATA(?:\s+DOC(?:UMENTO)?\.?)?\s*[:.]?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`)
	labeledCodeRe = regexp.MustCompile(`\bCOD(?:ICE)?\.?\s*CLI(?:ENTE)?\.?\s*[:.]?\s*(\d{4,6})\b`)
	labeledVATRe  = regexp.MustCompile(`\bP(?:ARTITA)?\.?\s*I\.?V\.?A\.?\s*[:.]?\s*(?:IT)?\s*(\d{11})\b`)
	elevenDigitRe = regexp.MustCompile(`\b(\d{11})\b`)
	carrierWordRe = regexp.MustCompile(`\b(?:VETTORE|TRASPORTATORE|CARRIER|CORRIERE)\b`)
)

// headerRow is a fixed-format row carrying several header fields at once.
type headerRow struct {
	number string
	date   time.Time
	code   string
	vats   []string
	name   string
	line   int // 1-based line number
	index  int // position in draft lines
}

func (p *Parser) extractHeader(d *draft) {
	const stageName = "header"
	rejectedPlaceholder := false

	offerCode := func(code, method string, conf float64, lineNo int) {
		if code == "" {
			return
		}
		if p.lookup.IsPlaceholderClientCode(code) {
			if !rejectedPlaceholder {
				d.diag(DiagPlaceholderCode, stageName, lineNo, "client code %s is the seller's placeholder, ignored", code)
				rejectedPlaceholder = true
			}
			return
		}
		d.clientCode.offer(code, method, conf)
	}
	offerNumber := func(n, method string, conf float64) {
		if n != "" && !p.lookup.IsExcludedNumber(n) {
			d.number.offer(n, method, conf)
		}
	}
	offerVAT := func(v, method string, conf float64) {
		if len(v) == 11 && isDigits(v) && !p.lookup.IsSellerVAT(v) {
			d.vat.offer(v, method, conf)
		}
	}

	if row, ok := findInvoiceRow(d); ok {
		offerNumber(row.number, "invoice_header_row", confHeaderRow)
		d.date.offer(row.date, "invoice_header_row", confHeaderRow)
		offerCode(row.code, "invoice_header_row", confHeaderRow, row.line)
		for _, v := range row.vats {
			offerVAT(v, "invoice_header_row", confHeaderRow)
		}
	}

	if d.docType == models.DocumentTypeDDT {
		if row, ok := findDDVRow(d); ok {
			offerNumber(row.number, "ddv_header_row", confHeaderRow)
			d.date.offer(row.date, "ddv_header_row", confHeaderRow)
			offerCode(row.code, "ddv_header_row", confHeaderRow, row.line)
		}
		for _, l := range d.lines {
			if m := ddvJoinedRe.FindStringSubmatch(l.up); m != nil {
				if t, ok := makeDate(m[2], m[3], m[4]); ok {
					offerNumber(m[1], "ddv_joined_row", confHeaderRow)
					d.date.offer(t, "ddv_joined_row", confHeaderRow)
					break
				}
			}
		}
	}

	for _, re := range labeledNumberRes {
		for _, l := range d.lines {
			loc := re.FindStringSubmatchIndex(l.up)
			if loc == nil {
				continue
			}
			offerNumber(l.up[loc[2]:loc[3]], "labeled_number", confLabeled)
			if t, ok := parseDate(l.up[loc[1]:]); ok {
				d.date.offer(t, "labeled_number", confLabeled)
			}
			break
		}
	}

	for _, l := range d.lines {
		if m := labeledDateRe.FindStringSubmatch(l.up); m != nil {
			if t, ok := parseDate(m[1]); ok {
				d.date.offer(t, "labeled_date", confLabeled)
				break
			}
		}
	}

	for _, l := range d.lines {
		for _, m := range labeledCodeRe.FindAllStringSubmatch(l.up, -1) {
			offerCode(m[1], "labeled_client_code", confLabeled, l.no)
		}
	}

	if m := ftvFileNameRe.FindStringSubmatch(d.baseName); m != nil {
		offerCode(m[3], "file_name", confFileName, 0)
		offerNumber(m[4], "file_name", confFileName)
		if t, ok := makeDate(m[5], m[6], m[7]); ok {
			d.date.offer(t, "file_name", confFileName)
		}
	}

	for i, l := range d.lines {
		if d.carrier[i] || strings.Contains(l.up, "IBAN") {
			continue
		}
		for _, m := range labeledVATRe.FindAllStringSubmatch(l.up, -1) {
			offerVAT(m[1], "labeled_vat", confLabeled)
		}
	}
	for i, l := range d.lines {
		if d.carrier[i] || strings.Contains(l.up, "IBAN") {
			continue
		}
		for _, m := range elevenDigitRe.FindAllStringSubmatch(l.up, -1) {
			offerVAT(m[1], "first_eleven_digits", confFallback)
		}
	}

	for _, l := range d.lines {
		if t, ok := parseDate(l.up); ok {
			d.date.offer(t, "first_date", confFallback)
			break
		}
	}
}

// findInvoiceRow finds the FT/NC data row printed under the
// "Tipo documento ... Cod. Cli. ... Partita IVA" header of invoices.
func findInvoiceRow(d *draft) (headerRow, bool) {
	for i, l := range d.lines {
		m := invoiceRowRe.FindStringSubmatch(l.up)
		if m == nil {
			continue
		}
		t, ok := parseDate(m[3])
		if !ok {
			continue
		}
		row := headerRow{number: m[2], date: t, line: l.no, index: i}
		for _, tok := range strings.Fields(m[4]) {
			switch {
			case !isDigits(tok):
			case len(tok) == 11:
				row.vats = append(row.vats, tok)
			case row.code == "" && len(tok) >= 4 && len(tok) <= 6:
				row.code = tok
			}
		}
		return row, true
	}
	return headerRow{}, false
}

// findDDVRow finds the one-line delivery note header "number date page code [name]".
func findDDVRow(d *draft) (headerRow, bool) {
	for i, l := range d.lines {
		m := ddvRowRe.FindStringSubmatch(l.up)
		if m == nil {
			continue
		}
		t, ok := parseDate(m[2])
		if !ok {
			continue
		}
		return headerRow{number: m[1], date: t, code: m[4], name: strings.TrimSpace(m[5]), line: l.no, index: i}, true
	}
	return headerRow{}, false
}

// carrierBlock marks the lines that describe the carrier: the line naming
// the carrier section or a known carrier and up to three lines after it.
// The block ends with the carrier's postal code line, or earlier at a
// product row. Operator lines never start a block.
func (p *Parser) carrierBlock(d *draft) map[int]bool {
	const span = 3
	operator := operatorLines(d)
	out := make(map[int]bool)
	for i, l := range d.lines {
		if operator[i] || (!carrierWordRe.MatchString(l.up) && !p.lookup.IsCarrier(l.up)) {
			continue
		}
		for j := i; j <= i+span && j < len(d.lines); j++ {
			if j > i && looksLikeProductRow(d.lines[j].up) {
				break
			}
			out[j] = true
			if postalRe.MatchString(d.lines[j].up) {
				break
			}
		}
	}
	return out
}
