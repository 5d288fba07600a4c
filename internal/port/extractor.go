package port

import "context"

// ExtractedLineItem is one line item as returned by the LLM extractor.
type ExtractedLineItem struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	LineTotal   *float64 `json:"line_total"`
}

// ExtractedFields is the near-canonical structure the LLM extractor returns.
// Field names already match the canonical model, so folding it into a
// domain.Document is a straight copy plus the description filter.
type ExtractedFields struct {
	Language      string              `json:"language"`
	DocumentType  string              `json:"document_type"`
	SupplierName  *string             `json:"supplier_name"`
	InvoiceNumber *string             `json:"invoice_number"`
	InvoiceDate   *string             `json:"invoice_date"`
	Currency      *string             `json:"currency"`
	Subtotal      *float64            `json:"subtotal"`
	TaxAmount     *float64            `json:"tax_amount"`
	Total         *float64            `json:"total"`
	LineItems     []ExtractedLineItem `json:"line_items"`
}

// FieldExtractor abstracts LLM-based field extraction over raw recognized
// text. Implementations never fail: any provider or parse error yields the
// degraded all-null structure with DocumentType "other" and Language
// "unknown".
type FieldExtractor interface {
	Extract(ctx context.Context, rawText, fileName string) *ExtractedFields
}

// DegradedFields returns the fixed structure a FieldExtractor falls back to
// on any failure.
func DegradedFields() *ExtractedFields {
	return &ExtractedFields{
		Language:     "unknown",
		DocumentType: "other",
	}
}
