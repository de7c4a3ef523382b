package ddtft_test

import (
	"fmt"
	"log"

	"ddtft/internal/ddtft"
	"ddtft/internal/lookup"
)

// Example parses the text of a delivery note with the embedded reference data.
func Example() {
	text := `DOCUMENTO DI TRASPORTO
4521 19/05/25 1 20322 DONAC S.R.L.
VIA SALUZZO, 65
12038 SAVIGLIANO CN
060041 AGNOLOTTI BRASATO CARNE PZ 10 14,26 142,60 10
`
	record, err := ddtft.Parse(text, "DDV_4521_2025.pdf")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s %s del %s\n", record.DocumentType, record.DocumentNumber, record.DocumentDate.Format("02/01/2006"))
	fmt.Printf("Cliente: %s\n", record.ClientName)
	fmt.Printf("Consegna: %s\n", record.DeliveryAddress)
	fmt.Printf("Totale: %s\n", record.Total.StringFixed(2))
	// Output:
	// DDT 4521 del 19/05/2025
	// Cliente: DONAC S.R.L.
	// Consegna: VIA SALUZZO, 65 12038 SAVIGLIANO CN
	// Totale: 156.86
}

// ExampleNewParser shows a parser built on a custom reference dataset and
// how to surface records that need a manual check.
func ExampleNewParser() {
	ds, err := lookup.Load("clients.yaml")
	if err != nil {
		log.Fatalf("Failed to load lookup data: %v", err)
	}

	parser := ddtft.NewParser(ddtft.WithLookup(ds))
	record, err := parser.Parse("FT 4904 21/05/25 1 701168 01234567890", "FTV_4904.pdf")
	if err != nil {
		log.Fatal(err)
	}

	for _, reason := range record.ReviewReasons() {
		fmt.Println("check:", reason)
	}
}
