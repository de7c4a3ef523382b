package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType identifies the kind of commercial document a record was parsed from.
type DocumentType string

const (
	DocumentTypeDDT        DocumentType = "DDT"         // delivery note (DDT/DDV)
	DocumentTypeInvoice    DocumentType = "FATTURA"     // invoice (FT/FTV)
	DocumentTypeCreditNote DocumentType = "CREDIT_NOTE" // credit note (NC)
	DocumentTypeUnknown    DocumentType = "UNKNOWN"
)

// Unit is a unit of measure printed on a line item.
type Unit string

// Units lists every unit of measure a line item may carry.
var Units = []Unit{"PZ", "KG", "LT", "CF", "CT", "BT", "SC", "GR", "ML", "MT", "NR", "PF"}

// IsValid reports whether u is one of Units.
func (u Unit) IsValid() bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

// VATRates are the only VAT percentages a line item may end up with.
var VATRates = []int{4, 10, 22}

// IsValidVATRate reports whether rate is one of VATRates.
func IsValidVATRate(rate int) bool {
	for _, r := range VATRates {
		if r == rate {
			return true
		}
	}
	return false
}

type LineItem struct {
	Code            string          // 6-9 alphanumeric product code
	Description     string          // Product description as printed
	Unit            Unit            // Unit of measure
	Quantity        decimal.Decimal // Delivered quantity
	UnitPrice       decimal.Decimal // Price per unit before discount
	DiscountPercent decimal.Decimal // Line discount, zero when the layout has no discount column
	LineTotal       decimal.Decimal // Line amount as printed
	VATRate         int             // One of VATRates
	FreeGoods       bool            // Row carried the sconto merce marker
	Line            int             // 1-based source line number
}

// Diagnostic records a data-quality observation made while parsing.
// Diagnostics never abort parsing.
type Diagnostic struct {
	Code    string `json:"code"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// FieldProvenance tells which extraction method produced a field and how much it was trusted.
type FieldProvenance struct {
	Field      string  `json:"field"`
	Method     string  `json:"method"`
	Confidence float64 `json:"confidence"`
}

type DocumentRecord struct {
	// Classification
	DocumentType DocumentType
	FileName     string // Classification hint the record was parsed with

	// Header
	DocumentNumber string
	DocumentDate   time.Time // Zero when not found
	ClientCode     string    // 4-6 digits or empty
	VATNumber      string    // Exactly 11 digits or empty
	OrderNumber    string    // Never equal to DocumentNumber
	OrderDate      time.Time // Zero when not found, never equal to DocumentDate

	// Parties
	ClientName      string
	DeliveryAddress string

	// Body
	Items []LineItem

	// Amounts; Total always equals Subtotal + VATAmount
	Subtotal  decimal.Decimal
	VATAmount decimal.Decimal
	Total     decimal.Decimal

	// Parsing notes
	Diagnostics []Diagnostic
	Provenance  []FieldProvenance
}

// HasDiagnostic reports whether the record carries a diagnostic with the given code.
func (r *DocumentRecord) HasDiagnostic(code string) bool {
	for _, d := range r.Diagnostics {
		if d.Code == code {
			return true
		}
	}
	return false
}

// ReviewReasons lists why the record should be checked by a person before use.
// An empty result means nothing suspicious was found.
func (r *DocumentRecord) ReviewReasons() []string {
	var reasons []string
	if r.DocumentType == DocumentTypeUnknown {
		reasons = append(reasons, "document type not recognised")
		return reasons
	}
	if r.DocumentNumber == "" {
		reasons = append(reasons, "missing document number")
	}
	if r.ClientName == "" {
		reasons = append(reasons, "missing client name")
	}
	if r.DeliveryAddress == "" {
		reasons = append(reasons, "missing delivery address")
	}
	if len(r.Items) == 0 {
		reasons = append(reasons, "no line items")
	}
	for _, d := range r.Diagnostics {
		reasons = append(reasons, d.Message)
	}
	return reasons
}
