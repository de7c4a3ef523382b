package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ddtft/internal/lookup"
	"ddtft/pkg/models"
)

const dateLayout = "2006-01-02"

// DocumentOutput represents the JSON output structure for one parsed document
type DocumentOutput struct {
	// Document contains the extracted record
	Document DocumentData `json:"document"`

	// Diagnostics lists the data-quality observations made while parsing
	Diagnostics []models.Diagnostic `json:"diagnostics"`

	// Provenance tells how each field was obtained
	Provenance []models.FieldProvenance `json:"provenance"`

	// ReviewReasons is empty when the record can be used without a manual check
	ReviewReasons []string `json:"review_reasons"`

	// Metadata contains processing information
	Metadata ProcessingMetadata `json:"metadata"`
}

// DocumentData is the JSON view of models.DocumentRecord
type DocumentData struct {
	Type              models.DocumentType `json:"type"`
	Number            string              `json:"number,omitempty"`
	Date              string              `json:"date,omitempty"`
	ClientCode        string              `json:"client_code,omitempty"`
	VATNumber         string              `json:"vat_number,omitempty"`
	OrderNumber       string              `json:"order_number,omitempty"`
	OrderDate         string              `json:"order_date,omitempty"`
	ClientName        string              `json:"client_name,omitempty"`
	ClientDisplayName string              `json:"client_display_name,omitempty"`
	DeliveryAddress   string              `json:"delivery_address,omitempty"`
	Items             []ItemData          `json:"items"`
	Subtotal          decimal.Decimal     `json:"subtotal"`
	VATAmount         decimal.Decimal     `json:"vat_amount"`
	Total             decimal.Decimal     `json:"total"`
}

// ItemData is the JSON view of models.LineItem
type ItemData struct {
	Code            string          `json:"code"`
	Description     string          `json:"description"`
	Unit            models.Unit     `json:"unit"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	LineTotal       decimal.Decimal `json:"line_total"`
	VATRate         int             `json:"vat_rate"`
	FreeGoods       bool            `json:"free_goods,omitempty"`
	Line            int             `json:"line"`
}

// ProcessingMetadata contains information about the processing operation
type ProcessingMetadata struct {
	FileName           string        `json:"file_name"`
	FileSize           int64         `json:"file_size_bytes"`
	PageCount          int           `json:"page_count"`
	TextSource         string        `json:"text_source"`
	DatasetVersion     string        `json:"dataset_version"`
	ProcessedAt        time.Time     `json:"processed_at"`
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// convertToDocumentOutput converts a parsed record to its JSON output form
func convertToDocumentOutput(rec *models.DocumentRecord, ds *lookup.Dataset, meta ProcessingMetadata) *DocumentOutput {
	data := DocumentData{
		Type:            rec.DocumentType,
		Number:          rec.DocumentNumber,
		Date:            formatDate(rec.DocumentDate),
		ClientCode:      rec.ClientCode,
		VATNumber:       rec.VATNumber,
		OrderNumber:     rec.OrderNumber,
		OrderDate:       formatDate(rec.OrderDate),
		ClientName:      rec.ClientName,
		DeliveryAddress: rec.DeliveryAddress,
		Items:           make([]ItemData, 0, len(rec.Items)),
		Subtotal:        rec.Subtotal,
		VATAmount:       rec.VATAmount,
		Total:           rec.Total,
	}
	if rec.ClientName != "" {
		data.ClientDisplayName = ds.DisplayName(rec.ClientName)
	}
	for _, it := range rec.Items {
		data.Items = append(data.Items, ItemData{
			Code:            it.Code,
			Description:     it.Description,
			Unit:            it.Unit,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
			LineTotal:       it.LineTotal,
			VATRate:         it.VATRate,
			FreeGoods:       it.FreeGoods,
			Line:            it.Line,
		})
	}

	out := &DocumentOutput{
		Document:      data,
		Diagnostics:   rec.Diagnostics,
		Provenance:    rec.Provenance,
		ReviewReasons: rec.ReviewReasons(),
		Metadata:      meta,
	}
	if out.Diagnostics == nil {
		out.Diagnostics = []models.Diagnostic{}
	}
	if out.ReviewReasons == nil {
		out.ReviewReasons = []string{}
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// writeJSON writes v as indented JSON to outputPath, or to stdout when the path is empty
func writeJSON(v any, outputPath string, log zerolog.Logger) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal output to JSON")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(jsonData)).
			Msg("Output written to file")
		return nil
	}

	if _, err := os.Stdout.Write(jsonData); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Println()
	return nil
}
