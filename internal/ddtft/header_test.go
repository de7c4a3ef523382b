package ddtft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddtft/pkg/models"
)

func runStages(p *Parser, d *draft, names ...string) {
	for _, s := range stages {
		for _, n := range names {
			if s.name == n {
				s.run(p, d)
			}
		}
	}
}

func TestExtractHeaderInvoiceRow(t *testing.T) {
	p := newTestParser()
	d := p.newDraft("FATTURA\nFT 4904 21/05/25 10.32 701168 03247720042 01234567890\n", "fattura.pdf")
	runStages(p, d, "classify", "header")

	assert.Equal(t, models.DocumentTypeInvoice, d.docType)
	assert.Equal(t, "4904", d.number.get())
	assert.Equal(t, "2025-05-21", d.date.get().Format("2006-01-02"))
	assert.Equal(t, "701168", d.clientCode.get())
	assert.Equal(t, "01234567890", d.vat.get())
	assert.Equal(t, "invoice_header_row", d.number.method)
}

func TestExtractHeaderLabeledFields(t *testing.T) {
	p := newTestParser()
	text := `DDT N. 88 del 02/03/2025
Cod. Cliente: 701179
Partita IVA: IT 02345678901
Registro 275071
`
	d := p.newDraft(text, "scan.pdf")
	runStages(p, d, "classify", "header")

	assert.Equal(t, "88", d.number.get())
	assert.Equal(t, "labeled_number", d.number.method)
	assert.Equal(t, "2025-03-02", d.date.get().Format("2006-01-02"))
	assert.Equal(t, "701179", d.clientCode.get())
	assert.Equal(t, "02345678901", d.vat.get())
	assert.Equal(t, "labeled_vat", d.vat.method)
}

func TestExtractHeaderJoinedRow(t *testing.T) {
	p := newTestParser()
	d := p.newDraft("DOCUMENTO DI TRASPORTO\n467321/05/25\n", "DDV.pdf")
	runStages(p, d, "classify", "header")

	assert.Equal(t, "4673", d.number.get())
	assert.Equal(t, "2025-05-21", d.date.get().Format("2006-01-02"))
}

func TestExtractHeaderSkipsCarrierAndSeller(t *testing.T) {
	p := newTestParser()
	text := `DOCUMENTO DI TRASPORTO
P.IVA 03247720042
VETTORE
S.A.F.I.M. S.P.A 09843020018
IBAN IT60X0542811101000000123456
`
	d := p.newDraft(text, "DDV_1.pdf")
	runStages(p, d, "classify", "header")

	assert.Empty(t, d.vat.get())
	assert.False(t, d.vat.set)
}

func TestExtractHeaderPlaceholderCode(t *testing.T) {
	p := newTestParser()
	d := p.newDraft("FT 4904 21/05/25 1 20001 01234567890\nCod. Cli. 20001\n", "FT_4904.pdf")
	runStages(p, d, "classify", "header")

	assert.Empty(t, d.clientCode.get())
	require.Len(t, d.diagnostics, 1, "placeholder reported once")
	assert.Equal(t, DiagPlaceholderCode, d.diagnostics[0].Code)
}

func TestCarrierBlock(t *testing.T) {
	p := newTestParser()
	text := `VETTORE
S.A.F.I.M. S.P.A
VIA SUPEJA GALLINO 20/28
060041 AGNOLOTTI BRASATO PZ 1 1,00 1,00 10
VIA ROMA, 1`
	d := p.newDraft(text, "DDV.pdf")

	assert.True(t, d.carrier[0])
	assert.True(t, d.carrier[1])
	assert.True(t, d.carrier[2])
	assert.False(t, d.carrier[3], "carrier block stops at the first product row")
	assert.False(t, d.carrier[4])
}

func TestCarrierBlockEndsAtPostalCode(t *testing.T) {
	p := newTestParser()
	text := `Spett.le
NERI SRL
Vettore: BRT SPA VIA CORRIERI 9
10100 TORINO TO
VIA ROMA 1
14100 ASTI AT`
	d := p.newDraft(text, "FT_1.pdf")
	assert.Equal(t, map[int]bool{2: true, 3: true}, d.carrier)

	d = p.newDraft("VETTORE: BRT SPA VIA CORRIERI 9 10100 TORINO TO\nVIA ROMA 1", "FT_1.pdf")
	assert.Equal(t, map[int]bool{0: true}, d.carrier)
}

func TestCarrierBlockIgnoresOperatorLines(t *testing.T) {
	p := newTestParser()
	d := p.newDraft("Operatore\n507 S.A.F.I.M. ROSSI\nSpett.le\nNERI SRL", "DDV.pdf")
	assert.Empty(t, d.carrier)
}
