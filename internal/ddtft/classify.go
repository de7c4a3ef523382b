package ddtft

import (
	"regexp"
	"strings"

	"ddtft/pkg/models"
)

// File name prefixes, checked in this order. A token must not be glued to
// other letters, so "SOFTWARE.PDF" is not an invoice.
var fileNameKinds = []struct {
	re   *regexp.Regexp
	kind models.DocumentType
}{
	{regexp.MustCompile(`(?:^|[^A-Z])DD[VT](?:[^A-Z]|$)`), models.DocumentTypeDDT},
	{regexp.MustCompile(`(?:^|[^A-Z])FTV?(?:[^A-Z]|$)`), models.DocumentTypeInvoice},
	{regexp.MustCompile(`(?:^|[^A-Z])NC(?:[^A-Z]|$)`), models.DocumentTypeCreditNote},
}

// Text markers used when the file name says nothing.
var (
	ddtTextRe        = regexp.MustCompile(`DOCUMENTO\s+DI\s+TRASPORTO|\bD\.D\.T\.|\bDDT\s+(?:N[°.]?\s*)?\d+`)
	creditNoteTextRe = regexp.MustCompile(`NOTA\s+(?:DI\s+)?CREDITO`)
	invoiceTextRe    = regexp.MustCompile(`\bFATTURA\b`)
)

// classifyFileName returns the document type encoded in a file name.
func classifyFileName(baseName string) (models.DocumentType, bool) {
	name := strings.ToUpper(baseName)
	for _, k := range fileNameKinds {
		if k.re.MatchString(name) {
			return k.kind, true
		}
	}
	return models.DocumentTypeUnknown, false
}

// classifyText looks for the document title in upper-cased text.
func classifyText(text string) models.DocumentType {
	switch {
	case ddtTextRe.MatchString(text):
		return models.DocumentTypeDDT
	case creditNoteTextRe.MatchString(text):
		return models.DocumentTypeCreditNote
	case invoiceTextRe.MatchString(text):
		return models.DocumentTypeInvoice
	}
	return models.DocumentTypeUnknown
}

func (p *Parser) classify(d *draft) {
	if kind, ok := classifyFileName(d.baseName); ok {
		d.docType = kind
		return
	}

	var b strings.Builder
	for _, l := range d.lines {
		b.WriteString(l.up)
		b.WriteByte('\n')
	}
	d.docType = classifyText(b.String())
	if d.docType == models.DocumentTypeUnknown {
		d.diag(DiagUnclassified, "classify", 0, "document type not recognised from file name %q or text", d.fileName)
	}
}
