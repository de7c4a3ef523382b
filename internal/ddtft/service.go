// Package ddtft turns the text layer of delivery notes (DDT/DDV), invoices
// (FT/FTV) and credit notes (NC) issued by a single known seller into
// structured document records.
//
// Parsing is a fixed sequence of stages over a private draft:
//
//  1. metadata: an embedded [METADATA_START]...[METADATA_END] block
//  2. classify: document type from the file name, then from the text
//  3. header: document number, date, client code and VAT number
//  4. order: customer order reference and date
//  5. client: client name from the anchors printed near the recipient block
//  6. address: delivery address, preferring the delivery side of two-column layouts
//  7. items: product rows in the fixed layouts the seller prints
//  8. totals: subtotal, VAT and total reconciled with the printed values
//
// Every field records the method that produced it and that method's
// confidence. A stage overwrites a field only with a strictly more
// confident value, so an embedded metadata block always wins over
// heuristics. Data-quality problems never fail a parse; they are attached
// to the record as diagnostics.
//
// Parser values hold only read-only configuration and may be shared
// between goroutines.
package ddtft

import (
	"ddtft/pkg/models"
)

// DocumentParser defines the interface for document text parsers.
type DocumentParser interface {
	// Parse builds a record from extracted document text. fileName is a
	// classification hint and may be empty. The only error is ErrEmptyText.
	Parse(text, fileName string) (*models.DocumentRecord, error)
}

var _ DocumentParser = (*Parser)(nil)
