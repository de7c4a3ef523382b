package ddtft

import (
	"regexp"
	"strings"
	"unicode"

	"ddtft/pkg/models"
)

var (
	spettRe        = regexp.MustCompile(`\bSPETT(?:\.?LE|ABILE)\b\.?`)
	attenzioneRe   = regexp.MustCompile(`\bATTENZIONE\s*!!`)
	destinatarioRe = regexp.MustCompile(`\bDESTINATARIO\b\s*:?`)
	clientHeaderRe = regexp.MustCompile(`\bCLIENTE\b.*\bLUOGO\s+DI\s+CONSEGNA\b`)

	// Legal-form suffixes close a company name. The match must not start the string.
	legalSuffixRe = regexp.MustCompile(`(?:^|[\s,])(S\.R\.L\.?|SRLS?|S\.P\.A\.?|SPA|S\.N\.C\.?|SNC|S\.A\.S\.?|SAS|S\.S\.|S\.C\.(?:A\.R\.L\.?)?|SOC\.?\s*COOP\.?|COOP\.?|&\s*C\.|&\s*FIGLI|&\s*F\.LLI|SARL|LTD\.?|GMBH)(?:[\s,]|$)`)
	// Street and locality words. One starting inside a name line ends the name.
	streetTokenRe = regexp.MustCompile(`(?:^|\s)(VIA|V\.LE|VIALE|CORSO|C\.SO|P\.ZA|P\.ZZA|PIAZZA|STRADA|STR\.|LOC\.|LOCALITA'?|FRAZ\.|FRAZIONE)(?:\s|$)`)
	postalStartRe = regexp.MustCompile(`^\d{5}\b`)
	// A postal code inside a name line also ends the name.
	postalInNameRe = regexp.MustCompile(`(?:^|\s)(\d{5})(?:\s|$)`)
	productWordRe  = regexp.MustCompile(`\b(?:GRISSINI|BASTONCINI|PANE)\b`)
	letterheadRe   = regexp.MustCompile(`^(?:TEL|FAX|E-?MAIL|WWW|P\.?\s?IVA|C\.\s?F\.|COD\.?\s*FISC|REA|R\.E\.A\.|CAP\.?\s*SOC|CAPITALE)\b`)
)

// Phrases that belong to the layout, never to a client name.
var boilerplate = []string{
	"LUOGO DI CONSEGNA", "CONTRARIO", "RISARCIREMO", "ATTENZIONE", "SPETT",
	"DESTINATARIO", "PARTITA IVA", "COD. CLI", "CODICE CLIENTE", "TIPO DOCUMENTO",
	"PAGAMENTO", "OPERATORE", "IBAN", "BANCA", "NUMERO DI LOTTO", "VETTORE",
}

// maxNameScan is how many lines after an anchor may hold the client name.
const maxNameScan = 8

// anchor is a place in the text the client block starts from.
type anchor struct {
	index int    // line of the anchor
	rest  string // text after the anchor phrase on the same line, if it may hold the name
}

// nameCandidate is a client name read after an anchor.
type nameCandidate struct {
	name       string
	method     string
	confidence float64
	index      int
}

func (p *Parser) resolveClient(d *draft) {
	const stageName = "client"

	anchors := p.clientAnchors(d)
	if len(anchors) > 0 {
		d.clientLine = anchors[0].index
	}
	for _, a := range anchors {
		c, ok := p.scanName(d, a)
		if !ok {
			continue
		}
		d.clientName.offer(c.name, c.method, c.confidence)
		d.clientLine = c.index
		break
	}
	if !d.clientName.set && len(anchors) > 0 {
		if c, ok := p.fallbackName(d, anchors[0]); ok {
			d.clientName.offer(c.name, c.method, c.confidence)
		}
	}

	if code := d.clientCode.get(); code != "" {
		if c, ok := p.lookup.ClientByCode(code); ok {
			d.clientName.offer(c.Name, "client_code_lookup", confCodeLookup)
		}
	}

	if d.clientName.set && d.clientName.method != "metadata" && p.lookup.IsSellerFragment(fold(d.clientName.get())) {
		d.diag(DiagSellerInClientName, stageName, 0, "client name %q carries the seller's identity, discarded", d.clientName.get())
		d.clientName.reset()
	}
	if !d.clientName.set {
		d.diag(DiagClientNotFound, stageName, 0, "client name not found")
	}
}

// clientAnchors lists the anchors found in the text, strongest first.
func (p *Parser) clientAnchors(d *draft) []anchor {
	var out []anchor
	find := func(re *regexp.Regexp, keepRest bool) {
		for i, l := range d.lines {
			loc := re.FindStringIndex(l.up)
			if loc == nil {
				continue
			}
			a := anchor{index: i}
			if keepRest {
				a.rest = strings.TrimSpace(l.up[loc[1]:])
			}
			out = append(out, a)
			return
		}
	}

	find(spettRe, true)
	find(attenzioneRe, false)
	find(destinatarioRe, true)
	if d.docType == models.DocumentTypeDDT {
		if row, ok := findDDVRow(d); ok {
			out = append(out, anchor{index: row.index, rest: fold(row.name)})
		}
	}
	find(clientHeaderRe, false)
	if d.docType != models.DocumentTypeDDT {
		for i, l := range d.lines {
			if p.lookup.IsSellerFragment(l.up) {
				out = append(out, anchor{index: i})
				break
			}
		}
	}
	return out
}

// scanName accumulates name lines after an anchor until a legal suffix or
// an address closes the name. Only the left column of each line is read.
func (p *Parser) scanName(d *draft, a anchor) (nameCandidate, bool) {
	var parts []string
	first := -1

	// consider adds seg to the name and reports whether the scan is over.
	consider := func(i int, seg, raw string) bool {
		seg = strings.TrimSpace(seg)
		switch {
		case seg == "",
			p.isBoilerplate(seg, raw),
			p.lookup.IsSellerFragment(seg),
			looksLikeProductRow(seg),
			productWordRe.MatchString(seg),
			isNumericLine(seg):
			return len(parts) > 0
		case startsWithAddress(seg), postalStartRe.MatchString(seg):
			return true
		}
		if first < 0 {
			first = i
		}
		parts = append(parts, seg)
		return len(parts) >= 2
	}
	cut := func() (nameCandidate, bool, bool) {
		if len(parts) == 0 {
			return nameCandidate{}, false, false
		}
		if name, method, conf := truncateClientName(strings.Join(parts, " ")); method != "" {
			c, ok := p.finishName(name, first, method, conf)
			return c, ok, true
		}
		return nameCandidate{}, false, false
	}

	done := false
	if a.rest != "" {
		if cols := columns(a.rest); len(cols) > 0 {
			done = consider(a.index, cols[0], a.rest)
		}
	}
	for i := a.index + 1; !done && i < len(d.lines) && i <= a.index+maxNameScan; i++ {
		if c, ok, closed := cut(); closed {
			return c, ok
		}
		if d.carrier[i] {
			break
		}
		seg := ""
		if cols := columns(d.lines[i].up); len(cols) > 0 {
			seg = cols[0]
		}
		done = consider(i, seg, d.lines[i].raw)
	}
	if c, ok, closed := cut(); closed {
		return c, ok
	}
	if len(parts) == 0 {
		return nameCandidate{}, false
	}
	return p.finishName(strings.Join(parts, " "), first, "accumulated", confNameAccum)
}

func (p *Parser) finishName(name string, index int, method string, conf float64) (nameCandidate, bool) {
	name = collapseDuplicateHalves(collapse(name))
	name = strings.TrimRight(name, " ,;:-")
	if !p.plausibleName(name) {
		return nameCandidate{}, false
	}
	return nameCandidate{name: name, method: method, confidence: conf, index: index}, true
}

// fallbackName takes the first usable line after the anchor.
func (p *Parser) fallbackName(d *draft, a anchor) (nameCandidate, bool) {
	for i := a.index + 1; i < len(d.lines) && i <= a.index+maxNameScan; i++ {
		l := d.lines[i]
		seg := strings.TrimSpace(l.up)
		if cols := columns(l.up); len(cols) > 0 {
			seg = cols[0]
		}
		if seg == "" || d.carrier[i] || p.lookup.IsSellerFragment(seg) || isAllLower(l.raw) ||
			p.isBoilerplate(seg, l.raw) || isNumericLine(seg) || looksLikeProductRow(l.up) ||
			startsWithAddress(seg) || postalStartRe.MatchString(seg) {
			continue
		}
		name, _, _ := truncateClientName(collapse(seg))
		if p.plausibleName(name) {
			return nameCandidate{name: name, method: "first_line_after_anchor", confidence: confFallback, index: i}, true
		}
	}
	return nameCandidate{}, false
}

func (p *Parser) plausibleName(name string) bool {
	return len(name) >= 5 && !p.lookup.IsPlaceholderName(name) && !p.lookup.IsSellerFragment(fold(name))
}

func (p *Parser) isBoilerplate(seg, raw string) bool {
	if letterheadRe.MatchString(seg) || p.lookup.IsPlaceholderName(seg) {
		return true
	}
	for _, b := range boilerplate {
		if strings.Contains(seg, b) {
			return true
		}
	}
	return isSentence(raw)
}

func startsWithAddress(s string) bool {
	m := streetTokenRe.FindStringSubmatchIndex(s)
	return m != nil && m[2] == 0
}

// truncateClientName cuts a name line at its first legal-form suffix
// (keeping it) or at the start of an address or postal code (dropping it),
// whichever comes first. The method is empty when neither occurs.
func truncateClientName(s string) (string, string, float64) {
	suffixEnd, addrStart := -1, -1
	if m := legalSuffixRe.FindStringSubmatchIndex(s); m != nil && m[2] > 0 {
		suffixEnd = m[3]
	}
	for _, m := range streetTokenRe.FindAllStringSubmatchIndex(s, -1) {
		if m[2] > 0 {
			addrStart = m[2]
			break
		}
	}
	for _, m := range postalInNameRe.FindAllStringSubmatchIndex(s, -1) {
		if m[2] > 0 {
			if addrStart < 0 || m[2] < addrStart {
				addrStart = m[2]
			}
			break
		}
	}
	switch {
	case suffixEnd > 0 && (addrStart < 0 || suffixEnd <= addrStart):
		return strings.TrimSpace(s[:suffixEnd]), "legal_suffix", confNameSuffix
	case addrStart > 0:
		return strings.TrimRight(s[:addrStart], " ,-"), "address_boundary", confNameAddress
	}
	return s, "", 0
}

// collapseDuplicateHalves turns "MAROTTA SRL MAROTTA SRL", printed once per
// layout column, into "MAROTTA SRL".
func collapseDuplicateHalves(s string) string {
	words := strings.Fields(s)
	n := len(words)
	if n < 2 || n%2 != 0 {
		return s
	}
	for i := 0; i < n/2; i++ {
		if words[i] != words[n/2+i] {
			return s
		}
	}
	return strings.Join(words[:n/2], " ")
}

// isSentence reports whether raw reads like running text rather than a
// name: mostly lower-case letters over several words.
func isSentence(raw string) bool {
	var lower, letters int
	for _, r := range raw {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsLower(r) {
				lower++
			}
		}
	}
	return letters > 0 && lower*2 > letters && len(strings.Fields(raw)) >= 4
}

func isAllLower(raw string) bool {
	hasLetter := false
	for _, r := range raw {
		if unicode.IsUpper(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
