package ddtft

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ddtft/pkg/models"
)

func TestClassifyFileName(t *testing.T) {
	tests := []struct {
		name string
		want models.DocumentType
		ok   bool
	}{
		{"DDV_4521_2025.pdf", models.DocumentTypeDDT, true},
		{"ddt 4521.PDF", models.DocumentTypeDDT, true},
		{"FTV_000123_2025_20145_4904_21052025.PDF", models.DocumentTypeInvoice, true},
		{"scansione-FT-4904.pdf", models.DocumentTypeInvoice, true},
		{"NC_12_2025.pdf", models.DocumentTypeCreditNote, true},
		{"SOFTWARE.pdf", models.DocumentTypeUnknown, false},
		{"ADDVANCE.pdf", models.DocumentTypeUnknown, false},
		{"scan.pdf", models.DocumentTypeUnknown, false},
	}
	for _, tt := range tests {
		got, ok := classifyFileName(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestClassifyText(t *testing.T) {
	assert.Equal(t, models.DocumentTypeDDT, classifyText("DOCUMENTO DI TRASPORTO N. 12"))
	assert.Equal(t, models.DocumentTypeDDT, classifyText("D.D.T. 4521"))
	assert.Equal(t, models.DocumentTypeCreditNote, classifyText("NOTA DI CREDITO N. 3 A STORNO FATTURA 4904"))
	assert.Equal(t, models.DocumentTypeInvoice, classifyText("FATTURA N. 4904"))
	assert.Equal(t, models.DocumentTypeUnknown, classifyText("LISTINO PREZZI"))
}

func TestClassifyFileNameBeatsText(t *testing.T) {
	p := newTestParser()
	d := p.newDraft("FATTURA\nRiferimento DDT 12", "DDV_12.pdf")
	p.classify(d)
	assert.Equal(t, models.DocumentTypeDDT, d.docType)
	assert.Empty(t, d.diagnostics)
}
