package ddtft

import (
	"regexp"
	"strings"
)

var metadataBlockRe = regexp.MustCompile(`(?s)\[METADATA_START\](.*?)\[METADATA_END\]`)

// Keys recognised inside a metadata block.
const (
	metaNumber  = "NUMERO_DOC"
	metaDate    = "DATA_DOC"
	metaCode    = "CODICE_CLIENTE"
	metaClient  = "NOME_CLIENTE"
	metaAddress = "INDIRIZZO_CONSEGNA"
	metaVAT     = "PIVA"
)

// splitMetadata removes the first metadata block from text and returns its
// KEY: value pairs. The block is replaced by as many newlines as it spanned
// so line numbers of the remaining text stay stable.
func splitMetadata(text string) (string, map[string]string) {
	loc := metadataBlockRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, nil
	}

	meta := make(map[string]string)
	for _, l := range splitLines(text[loc[2]:loc[3]]) {
		key, value, ok := strings.Cut(l, ":")
		if !ok {
			continue
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		value = collapse(value)
		if key == "" || value == "" {
			continue
		}
		if _, dup := meta[key]; !dup {
			meta[key] = value
		}
	}

	filler := strings.Repeat("\n", strings.Count(text[loc[0]:loc[1]], "\n"))
	return text[:loc[0]] + filler + text[loc[1]:], meta
}

// applyMetadata offers the metadata values at full confidence. Values that
// break a field's format are reported and ignored.
func (p *Parser) applyMetadata(d *draft) {
	const stageName = "metadata"
	if len(d.meta) == 0 {
		return
	}

	if v := d.meta[metaNumber]; v != "" {
		d.number.offer(v, "metadata", confMetadata)
	}
	if v := d.meta[metaDate]; v != "" {
		if t, ok := parseDate(v); ok {
			d.date.offer(t, "metadata", confMetadata)
		} else {
			d.diag(DiagInvalidMetadata, stageName, 0, "metadata %s %q is not a date", metaDate, v)
		}
	}
	if v := d.meta[metaCode]; v != "" {
		if isDigits(v) && len(v) >= 4 && len(v) <= 6 && !p.lookup.IsPlaceholderClientCode(v) {
			d.clientCode.offer(v, "metadata", confMetadata)
		} else {
			d.diag(DiagInvalidMetadata, stageName, 0, "metadata %s %q is not a client code", metaCode, v)
		}
	}
	if v := d.meta[metaClient]; v != "" {
		d.clientName.offer(v, "metadata", confMetadata)
	}
	if v := d.meta[metaAddress]; v != "" {
		d.address.offer(v, "metadata", confMetadata)
	}
	if v := d.meta[metaVAT]; v != "" {
		if isDigits(v) && len(v) == 11 && !p.lookup.IsSellerVAT(v) {
			d.vat.offer(v, "metadata", confMetadata)
		} else {
			d.diag(DiagInvalidMetadata, stageName, 0, "metadata %s %q is not a VAT number", metaVAT, v)
		}
	}
}
