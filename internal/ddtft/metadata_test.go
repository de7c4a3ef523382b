package ddtft

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMetadata(t *testing.T) {
	text := "riga uno\n[METADATA_START]\nNUMERO_DOC: 77\nnome_cliente:  BAR   SPORT \nNUMERO_DOC: 78\nsenza separatore\n[METADATA_END]\nriga finale"
	body, meta := splitMetadata(text)

	assert.Equal(t, map[string]string{"NUMERO_DOC": "77", "NOME_CLIENTE": "BAR SPORT"}, meta)
	assert.Equal(t, strings.Count(text, "\n"), strings.Count(body, "\n"), "line numbers are preserved")
	assert.True(t, strings.HasSuffix(body, "riga finale"))
	assert.NotContains(t, body, "METADATA")
}

func TestSplitMetadataAbsent(t *testing.T) {
	body, meta := splitMetadata("solo testo")
	assert.Equal(t, "solo testo", body)
	assert.Nil(t, meta)
}

func TestApplyMetadata(t *testing.T) {
	p := newTestParser()
	text := `[METADATA_START]
NUMERO_DOC: 1234
DATA_DOC: 03/06/2025
CODICE_CLIENTE: 20001
INDIRIZZO_CONSEGNA: VIA ROMA 1 14100 ASTI AT
PIVA: 0123
[METADATA_END]`
	d := p.newDraft(text, "DDV.pdf")
	p.applyMetadata(d)

	assert.Equal(t, "1234", d.number.get())
	assert.Equal(t, "2025-06-03", d.date.get().Format("2006-01-02"))
	assert.Equal(t, "VIA ROMA 1 14100 ASTI AT", d.address.get())
	assert.False(t, d.clientCode.set, "placeholder code rejected")
	assert.False(t, d.vat.set, "malformed VAT rejected")

	require.Len(t, d.diagnostics, 2)
	for _, dg := range d.diagnostics {
		assert.Equal(t, DiagInvalidMetadata, dg.Code)
	}
}
