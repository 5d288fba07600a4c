package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invodex/internal/domain"
	"invodex/internal/port"
)

func fptr(f float64) *float64 { return &f }

func currencyField(amount float64, code string, conf *float64, regions ...port.BoundingRegion) port.Field {
	return port.Field{
		Type:            "currency",
		ValueCurrency:   &port.CurrencyValue{Amount: fptr(amount), CurrencyCode: code},
		Confidence:      conf,
		BoundingRegions: regions,
	}
}

func invoiceResult() *port.AnalyzeResult {
	return &port.AnalyzeResult{
		Pages: []port.Page{{PageNumber: 1, Width: 1000, Height: 500, Unit: "pixel"}},
		Documents: []port.AnalyzedDocument{{
			DocType:    "invoice",
			Confidence: fptr(0.97),
			Fields: map[string]port.Field{
				"VendorName": {
					Type:        "string",
					ValueString: "Acme Ltd",
					Confidence:  fptr(0.95),
					BoundingRegions: []port.BoundingRegion{{
						PageNumber: 1,
						Polygon:    []float64{100, 50, 200, 50, 200, 150, 100, 150},
					}},
				},
				"InvoiceId":    {Type: "string", ValueString: "INV-7", Confidence: fptr(0.9)},
				"InvoiceDate":  {Type: "date", ValueDate: "2025-03-14"},
				"SubTotal":     currencyField(100, "", fptr(0.8)),
				"TotalTax":     currencyField(18, "", nil),
				"InvoiceTotal": currencyField(118, "ILS", fptr(0.92)),
				"Items": {
					Type: "array",
					ValueArray: []port.Field{
						{ValueObject: map[string]port.Field{
							"Description": {ValueString: "Widget"},
							"Quantity":    {ValueNumber: fptr(2)},
							"UnitPrice":   currencyField(50, "ILS", nil),
							"Amount":      currencyField(100, "ILS", nil),
						}},
						{ValueObject: map[string]port.Field{
							// No description: dropped.
							"Amount": currencyField(18, "ILS", nil),
						}},
					},
				},
			},
		}},
	}
}

func TestMapInvoice(t *testing.T) {
	doc := MapInvoice(invoiceResult(), "inv.pdf", "file:///inbox/inv.pdf", "he")

	assert.Equal(t, "inv.pdf", doc.FileName)
	assert.Equal(t, "file:///inbox/inv.pdf", doc.SourceURI)
	assert.Equal(t, "he", doc.Language)
	assert.Equal(t, domain.DocumentTypeInvoice, doc.DocumentType)

	require.NotNil(t, doc.SupplierName)
	assert.Equal(t, "Acme Ltd", *doc.SupplierName)
	require.NotNil(t, doc.InvoiceNumber)
	assert.Equal(t, "INV-7", *doc.InvoiceNumber)
	require.NotNil(t, doc.InvoiceDate)
	assert.Equal(t, "2025-03-14", *doc.InvoiceDate)

	require.NotNil(t, doc.Subtotal)
	assert.Equal(t, 100.0, *doc.Subtotal)
	require.NotNil(t, doc.TaxAmount)
	assert.Equal(t, 18.0, *doc.TaxAmount)
	require.NotNil(t, doc.Total)
	assert.Equal(t, 118.0, *doc.Total)
	require.NotNil(t, doc.Currency)
	assert.Equal(t, "ILS", *doc.Currency)

	require.Len(t, doc.LineItems, 1)
	assert.Equal(t, "Widget", doc.LineItems[0].Description)
	require.NotNil(t, doc.LineItems[0].Quantity)
	assert.Equal(t, 2.0, *doc.LineItems[0].Quantity)
	require.NotNil(t, doc.LineItems[0].LineTotal)
	assert.Equal(t, 100.0, *doc.LineItems[0].LineTotal)

	require.NotNil(t, doc.Confidence)
	assert.Equal(t, 0.97, *doc.Confidence)
	assert.Equal(t, 1, doc.PageCount)
}

func TestMapInvoiceBoundingBoxNormalization(t *testing.T) {
	doc := MapInvoice(invoiceResult(), "inv.pdf", "file:///inbox/inv.pdf", "en")

	box, ok := doc.BoundingBoxes[domain.FieldSupplierName]
	require.True(t, ok)
	assert.Equal(t, 1, box.Page)
	assert.Equal(t, [4]domain.Point{
		{X: 0.1, Y: 0.1},
		{X: 0.2, Y: 0.1},
		{X: 0.2, Y: 0.3},
		{X: 0.1, Y: 0.3},
	}, box.Points)
}

func TestMapInvoiceNoBoxWithoutPageDimensions(t *testing.T) {
	result := invoiceResult()
	result.Pages = nil

	doc := MapInvoice(result, "inv.pdf", "file:///inbox/inv.pdf", "en")
	assert.NotContains(t, doc.BoundingBoxes, domain.FieldSupplierName)
	// Field values are unaffected by missing geometry.
	require.NotNil(t, doc.SupplierName)
	assert.Equal(t, 1, doc.PageCount)
}

func TestMapInvoiceFieldConfidence(t *testing.T) {
	doc := MapInvoice(invoiceResult(), "inv.pdf", "file:///inbox/inv.pdf", "en")

	assert.Equal(t, 0.95, doc.FieldConfidence[domain.FieldSupplierName])
	assert.Equal(t, 0.92, doc.FieldConfidence[domain.FieldTotal])
	// TotalTax carries no confidence, so the canonical name is absent.
	assert.NotContains(t, doc.FieldConfidence, domain.FieldTaxAmount)
}

func TestMapInvoiceCurrencyCodeFallsBackToSubtotal(t *testing.T) {
	result := invoiceResult()
	fields := result.Documents[0].Fields
	fields["InvoiceTotal"] = port.Field{Type: "number", ValueNumber: fptr(118)}
	fields["SubTotal"] = currencyField(100, "USD", nil)

	doc := MapInvoice(result, "inv.pdf", "file:///inbox/inv.pdf", "en")
	require.NotNil(t, doc.Total)
	assert.Equal(t, 118.0, *doc.Total)
	require.NotNil(t, doc.Currency)
	assert.Equal(t, "USD", *doc.Currency)
}

func TestMapInvoiceEmptyAliasDoesNotShadowValue(t *testing.T) {
	result := invoiceResult()
	fields := result.Documents[0].Fields
	// TotalTax came back recognized but valueless; Tax carries the amount.
	fields["TotalTax"] = port.Field{Type: "currency", ValueCurrency: &port.CurrencyValue{}}
	fields["Tax"] = currencyField(18, "", nil)

	doc := MapInvoice(result, "inv.pdf", "file:///inbox/inv.pdf", "en")
	require.NotNil(t, doc.TaxAmount)
	assert.Equal(t, 18.0, *doc.TaxAmount)
}

func TestMapInvoiceNumberFallback(t *testing.T) {
	result := invoiceResult()
	fields := result.Documents[0].Fields
	delete(fields, "InvoiceId")
	fields["InvoiceNumber"] = port.Field{Type: "string", ValueString: "ALT-9"}

	doc := MapInvoice(result, "inv.pdf", "file:///inbox/inv.pdf", "en")
	require.NotNil(t, doc.InvoiceNumber)
	assert.Equal(t, "ALT-9", *doc.InvoiceNumber)
}

func TestMapInvoiceEmptyResult(t *testing.T) {
	doc := MapInvoice(&port.AnalyzeResult{}, "x.pdf", "file:///x.pdf", "en")

	assert.Nil(t, doc.SupplierName)
	assert.Nil(t, doc.InvoiceNumber)
	assert.Nil(t, doc.Subtotal)
	assert.Nil(t, doc.Total)
	assert.Nil(t, doc.Currency)
	assert.Nil(t, doc.LineItems)
	assert.Nil(t, doc.BoundingBoxes)
	assert.Nil(t, doc.FieldConfidence)
	assert.Equal(t, 1, doc.PageCount)
}

func TestMapInvoiceIdempotent(t *testing.T) {
	result := invoiceResult()
	first := MapInvoice(result, "inv.pdf", "file:///inbox/inv.pdf", "he")
	second := MapInvoice(result, "inv.pdf", "file:///inbox/inv.pdf", "he")
	assert.Equal(t, first, second)
}

func TestMapReceipt(t *testing.T) {
	result := &port.AnalyzeResult{
		Confidence: fptr(0.88),
		Pages:      []port.Page{{PageNumber: 1, Width: 800, Height: 600}},
		Documents: []port.AnalyzedDocument{{
			DocType: "receipt",
			Fields: map[string]port.Field{
				"MerchantName":    {Type: "string", ValueString: "Corner Cafe"},
				"TransactionDate": {Type: "date", ValueDate: "14/03/2025"},
				"Subtotal":        currencyField(40, "ILS", nil),
				"TotalTax":        currencyField(6.8, "", nil),
				"Total":           currencyField(46.8, "", nil),
				"Items": {
					Type: "array",
					ValueArray: []port.Field{
						{ValueObject: map[string]port.Field{
							"Description": {ValueString: "Espresso"},
							"Price":       currencyField(12, "", nil),
							"TotalPrice":  currencyField(24, "", nil),
						}},
					},
				},
			},
		}},
	}

	doc := MapReceipt(result, "rcpt.jpg", "file:///inbox/rcpt.jpg", "he")

	assert.Equal(t, domain.DocumentTypeReceipt, doc.DocumentType)
	require.NotNil(t, doc.SupplierName)
	assert.Equal(t, "Corner Cafe", *doc.SupplierName)
	assert.Nil(t, doc.InvoiceNumber)
	require.NotNil(t, doc.InvoiceDate)
	assert.Equal(t, "2025-03-14", *doc.InvoiceDate)
	require.NotNil(t, doc.Total)
	assert.Equal(t, 46.8, *doc.Total)
	// Total carries no code; Subtotal supplies it.
	require.NotNil(t, doc.Currency)
	assert.Equal(t, "ILS", *doc.Currency)

	require.Len(t, doc.LineItems, 1)
	assert.Equal(t, "Espresso", doc.LineItems[0].Description)
	require.NotNil(t, doc.LineItems[0].UnitPrice)
	assert.Equal(t, 12.0, *doc.LineItems[0].UnitPrice)
	require.NotNil(t, doc.LineItems[0].LineTotal)
	assert.Equal(t, 24.0, *doc.LineItems[0].LineTotal)
}

func TestMapInvoiceTopLevelFieldsFallback(t *testing.T) {
	result := &port.AnalyzeResult{
		Fields: map[string]port.Field{
			"VendorName": {Type: "string", ValueString: "Top Level Ltd"},
		},
	}
	doc := MapInvoice(result, "x.pdf", "file:///x.pdf", "en")
	require.NotNil(t, doc.SupplierName)
	assert.Equal(t, "Top Level Ltd", *doc.SupplierName)
}
