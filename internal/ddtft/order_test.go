package ddtft

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractOrder(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantNum  string
		wantDate string
	}{
		{
			name:     "customer reference with date",
			text:     "FT 4904 21/05/25 1 701168\nRif. Vs. Ordine n. 507A865AS02780 del 15/05/25",
			wantNum:  "507A865AS02780",
			wantDate: "2025-05-15",
		},
		{
			name:     "date without year takes the document year",
			text:     "FT 4904 21/05/25 1 701168\nVs. ordine: 4411 del 12/05",
			wantNum:  "4411",
			wantDate: "2025-05-12",
		},
		{
			name:     "date on the next line",
			text:     "FT 4904 21/05/25 1 701168\nODV Nr. 7781\ndel 10/05/2025",
			wantNum:  "7781",
			wantDate: "2025-05-10",
		},
		{
			name:    "bare order code",
			text:    "FT 4904 21/05/25 1 701168\nconsegna 507A085AS00704",
			wantNum: "507A085AS00704",
		},
		{
			name: "label without digits",
			text: "FT 4904 21/05/25 1 701168\nOrdine n. TELEFONICO",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser()
			d := p.newDraft(tt.text, "FT_4904.pdf")
			runStages(p, d, "classify", "header", "order")

			assert.Equal(t, tt.wantNum, d.orderNumber.get())
			if tt.wantDate == "" {
				assert.True(t, d.orderDate.get().IsZero())
			} else {
				assert.Equal(t, tt.wantDate, d.orderDate.get().Format("2006-01-02"))
			}
		})
	}
}

func TestExtractOrderDateEqualToDocumentDate(t *testing.T) {
	p := newTestParser()
	d := p.newDraft("FT 4904 21/05/25 1 701168\nRif. Vs. Ordine 8812 del 21/05/25", "FT_4904.pdf")
	runStages(p, d, "classify", "header", "order")

	assert.Equal(t, "8812", d.orderNumber.get())
	assert.True(t, d.orderDate.get().IsZero())
}

func TestOperatorCode(t *testing.T) {
	p := newTestParser()
	d := p.newDraft("Operatore\n\n507 SAFFIRIO FLAVIO", "DDV.pdf")
	assert.Equal(t, "507", operatorCode(d))

	d = p.newDraft("Operatore: 612 BIANCHI LUCA", "DDV.pdf")
	assert.Equal(t, "612", operatorCode(d))

	d = p.newDraft("507 SAFFIRIO FLAVIO", "DDV.pdf")
	assert.Empty(t, operatorCode(d))
}

func TestOperatorLines(t *testing.T) {
	p := newTestParser()
	d := p.newDraft("Operatore\n507 SAFFIRIO FLAVIO\nVETTORE\nOperatore: 612 BIANCHI LUCA", "DDV.pdf")
	assert.Equal(t, map[int]bool{0: true, 1: true, 3: true}, operatorLines(d))
}

func TestExtractOrderRejectsOperatorCodes(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"code under the label", "DDT N. 4605 del 03/06/25\nOperatore\n612 BIANCHI LUCA\nRif. Vs. Ordine n. 612"},
		{"code on the label line", "DDT N. 4605 del 03/06/25\nOperatore: 612 BIANCHI LUCA\nRif. Vs. Ordine n. 612"},
		{"known staff code without label", "DDT N. 4605 del 03/06/25\nRif. Vs. Ordine n. 507"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser()
			d := p.newDraft(tt.text, "DDV_4605_2025.pdf")
			runStages(p, d, "classify", "header", "order")

			assert.Empty(t, d.orderNumber.get())
			var codes []string
			for _, diag := range d.diagnostics {
				codes = append(codes, diag.Code)
			}
			assert.Contains(t, codes, DiagOrderIsOperator)
		})
	}
}
