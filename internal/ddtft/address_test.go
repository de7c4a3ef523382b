package ddtft

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePostal(t *testing.T) {
	assert.Equal(t, "12100 CUNEO CN", normalizePostal("12100 - CUNEO CN"))
	assert.Equal(t, "14046 MOMBARUZZO AT", normalizePostal("14046   MOMBARUZZO (AT)"))
	assert.Equal(t, "14057 ISOLA D'ASTI AT", normalizePostal("14057 ISOLA D'ASTI AT"))
}

func TestLastStreet(t *testing.T) {
	street, n := lastStreet("VIA MARGARITA, 8 LOC. TETTO GARETTO VIA SALUZZO, 65")
	assert.Equal(t, "VIA SALUZZO, 65", street)
	assert.Equal(t, 3, n)

	street, n = lastStreet("FRAZ. SAN MARZANOTTO 12")
	assert.Equal(t, "FRAZ. SAN MARZANOTTO 12", street)
	assert.Equal(t, 1, n)

	street, _ = lastStreet("MAROTTA S.R.L.")
	assert.Empty(t, street)
}

func TestResolveAddress(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		want       string
		wantMethod string
	}{
		{
			name:       "single column with inline postal code",
			text:       "FATTURA\nSpett.le\nBOREALE S.R.L.\nCORSO ALESSANDRIA, 12 14100 ASTI AT\n",
			want:       "CORSO ALESSANDRIA, 12 14100 ASTI AT",
			wantMethod: "single_column",
		},
		{
			name:       "after a delivery marker",
			text:       "FATTURA\nSpett.le\nBOREALE S.R.L.\nLuogo di consegna:\nV.LE PARTIGIANI, 3\n14100 ASTI (AT)\n",
			want:       "V.LE PARTIGIANI, 3 14100 ASTI AT",
			wantMethod: "after_delivery_marker",
		},
		{
			name:       "seller address is never the delivery point",
			text:       "FATTURA\nSpett.le\nBOREALE S.R.L.\nC.SO G. MARCONI, 10/E 12050 MAGLIANO ALFIERI CN\n",
			want:       "",
			wantMethod: "",
		},
		{
			name:       "carrier address is skipped",
			text:       "FATTURA\nSpett.le\nBOREALE S.R.L.\nVIA CAVOUR, 61\n14100 ASTI AT\nVETTORE\nDEPOSITO          VIA SUPEJA GALLINO 20/28 10060 NONE TO\n",
			want:       "VIA CAVOUR, 61 14100 ASTI AT",
			wantMethod: "single_column",
		},
		{
			name:       "carrier block before the client address",
			text:       "FATTURA\nSpett.le\nNERI SRL\nVettore: BRT SPA VIA CORRIERI 9\n10100 TORINO TO\nVIA ROMA 1\n14100 ASTI AT\n",
			want:       "VIA ROMA 1 14100 ASTI AT",
			wantMethod: "single_column",
		},
		{
			name:       "client street sharing the seller street name",
			text:       "FATTURA\nSpett.le\nBAR ROSSI S.R.L.\nVIA G. MARCONI, 5\n14100 ASTI AT\n",
			want:       "VIA G. MARCONI, 5 14100 ASTI AT",
			wantMethod: "single_column",
		},
		{
			name:       "client house number sharing the seller one",
			text:       "FATTURA\nSpett.le\nBAR ROSSI S.R.L.\nVIA ROMA, 10/E\n14100 ASTI AT\n",
			want:       "VIA ROMA, 10/E 14100 ASTI AT",
			wantMethod: "single_column",
		},
		{
			name:       "seller street split from its postal code",
			text:       "FATTURA\nSpett.le\nBOREALE S.R.L.\nC.SO G. MARCONI, 10/E\n12050 MAGLIANO ALFIERI CN\n",
			want:       "",
			wantMethod: "",
		},
		{
			name:       "lone street without postal code yields to the client lookup",
			text:       "FATTURA\nSpett.le\nDONAC S.R.L.\nVIA ROMA, 1\nGrazie per l'acquisto\n",
			want:       "VIA SALUZZO, 65 12038 SAVIGLIANO CN",
			wantMethod: "client_lookup",
		},
		{
			name:       "name cut at the first legal suffix still finds the client",
			text:       "FATTURA\nSpett.le\nPIEMONTE CARNI DI CALDERA MASSIMO & C. S.A.S.\n",
			want:       "VIA CAVOUR, 61 14100 ASTI AT",
			wantMethod: "client_lookup",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser()
			d := p.newDraft(tt.text, "FT_1.pdf")
			runStages(p, d, "classify", "header", "order", "client", "address")

			assert.Equal(t, tt.want, d.address.get())
			assert.Equal(t, tt.wantMethod, d.address.method)
			if tt.want == "" {
				assert.Equal(t, DiagAddressNotFound, d.diagnostics[len(d.diagnostics)-1].Code)
			}
		})
	}
}

func TestResolveAddressOrderLookup(t *testing.T) {
	p := newTestParser()
	text := "FATTURA\nSpett.le\nPIEMONTE CARNI S.A.S.\nVIA ROMA, 1\nRif. Vs. Ordine n. 507A085AS00704\n"
	d := p.newDraft(text, "FT_1.pdf")
	runStages(p, d, "classify", "header", "order", "client", "address")

	assert.Equal(t, "VIA CAVOUR, 61 14100 ASTI AT", d.address.get())
	assert.Equal(t, "order_lookup", d.address.method)
}
