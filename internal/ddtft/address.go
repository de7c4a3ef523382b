package ddtft

import (
	"regexp"
	"strings"
)

var (
	// 12038 SAVIGLIANO CN, 12100 - CUNEO (CN)
	postalRe         = regexp.MustCompile(`\b(\d{5})\s*-?\s*([A-Z][A-Z'. \-]*?)\s+\(?([A-Z]{2})\)?(?:\s|$)`)
	deliveryMarkerRe = regexp.MustCompile(`\b(?:LUOGO\s+DI\s+(?:CONSEGNA|DESTINAZIONE)|INDIRIZZO\s+DI\s+CONSEGNA|DESTINAZIONE\s+MERCE|CONSEGNARE\s+A)\b`)
)

// addressScan is how many lines after the client block may hold the delivery address.
const addressScan = 15

// resolveAddress looks for the delivery address in the lines following the
// client block. The delivery column is the rightmost one when the layout
// prints billing and delivery side by side.
func (p *Parser) resolveAddress(d *draft) {
	const stageName = "address"

	start := d.clientLine
	if start < 0 {
		start = 0
	}
	markerSingle := false
	for i := 0; i < start && i < len(d.lines); i++ {
		if deliveryMarkerRe.MatchString(d.lines[i].up) {
			markerSingle = len(columns(d.lines[i].up)) == 1
		}
	}

	for i := start; i < len(d.lines) && i < start+addressScan; i++ {
		l := d.lines[i]
		if deliveryMarkerRe.MatchString(l.up) {
			markerSingle = len(columns(l.up)) == 1
			continue
		}
		if i > start && looksLikeProductRow(l.up) {
			break
		}
		if d.carrier[i] {
			continue
		}

		cols := columns(l.up)
		if len(cols) == 0 {
			continue
		}
		seg := cols[len(cols)-1]
		if p.lookup.IsSellerAddress(seg) {
			continue
		}
		street, tokens := lastStreet(seg)
		if street == "" {
			continue
		}

		var method string
		var conf float64
		switch {
		case len(cols) >= 2:
			method, conf = "two_column", confTwoColumn
		case tokens >= 2:
			method, conf = "trailing_street", confTrailingStreet
		case markerSingle:
			method, conf = "after_delivery_marker", confMarkerAddress
		default:
			method, conf = "single_column", confSingleColumn
		}

		postal := ""
		if loc := lastPostal(street); loc != nil {
			postal = normalizePostal(street[loc[0]:loc[1]])
			street = street[:loc[0]]
		} else {
			postal = p.postalBelow(d, i)
		}
		// A lone street line is an address only with its postal code.
		if postal == "" && method == "single_column" {
			continue
		}
		candidate := collapse(strings.TrimRight(strings.TrimSpace(street), ",-") + " " + postal)
		if candidate == "" || p.lookup.IsSellerAddress(candidate) {
			continue
		}
		d.address.offer(candidate, method, conf)
	}

	if n := d.orderNumber.get(); n != "" {
		if addr, ok := p.lookup.OrderAddress(n); ok {
			d.address.offer(addr, "order_lookup", confOrderLookup)
		}
	}
	if code := d.clientCode.get(); code != "" {
		if c, ok := p.lookup.ClientByCode(code); ok && c.DeliveryAddress != "" {
			d.address.offer(c.DeliveryAddress, "client_lookup", confClientAddress)
		}
	}
	if name := d.clientName.get(); name != "" {
		if c, ok := p.lookup.ClientByName(name); ok && c.DeliveryAddress != "" {
			d.address.offer(c.DeliveryAddress, "client_lookup", confClientAddress)
		}
	}

	if !d.address.set {
		d.diag(DiagAddressNotFound, stageName, 0, "delivery address not found")
	}
}

// lastStreet returns seg from its last street or locality token on, and the
// number of such tokens in seg. In "VIA MARGARITA, 8 LOC. TETTO GARETTO VIA
// SALUZZO, 65" only the last street is the delivery point.
func lastStreet(seg string) (string, int) {
	matches := streetTokenRe.FindAllStringSubmatchIndex(seg, -1)
	if len(matches) == 0 {
		return "", 0
	}
	last := matches[len(matches)-1]
	return seg[last[2]:], len(matches)
}

// lastPostal locates the last postal-code group in s.
func lastPostal(s string) []int {
	all := postalRe.FindAllStringSubmatchIndex(s, -1)
	if len(all) == 0 {
		return nil
	}
	m := all[len(all)-1]
	return []int{m[0], m[1]}
}

// normalizePostal rewrites a postal group as "CAP CITY PR".
func normalizePostal(s string) string {
	m := postalRe.FindStringSubmatch(s)
	if m == nil {
		return collapse(s)
	}
	return m[1] + " " + collapse(strings.Trim(m[2], " -")) + " " + m[3]
}

// postalBelow reads the postal group from the rightmost column of the one
// or two lines after a street line.
func (p *Parser) postalBelow(d *draft, i int) string {
	for j := i + 1; j < len(d.lines) && j <= i+2; j++ {
		if d.carrier[j] {
			return ""
		}
		cols := columns(d.lines[j].up)
		if len(cols) == 0 {
			continue
		}
		seg := cols[len(cols)-1]
		if loc := lastPostal(seg); loc != nil {
			return normalizePostal(seg[loc[0]:loc[1]])
		}
		if startsWithAddress(seg) {
			return ""
		}
	}
	return ""
}
