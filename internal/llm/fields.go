package llm

import (
	"invodex/internal/domain"
	"invodex/internal/port"
)

// FieldsToDocument folds an extractor result into the canonical model. The
// extractor already returns near-canonical names, so this is a straight copy
// plus the description filter on line items. This path produces no bounding
// boxes and no confidence.
func FieldsToDocument(f *port.ExtractedFields, fileName, sourceURI string) domain.Document {
	docType := domain.DocumentType(f.DocumentType)
	if !docType.Valid() {
		docType = domain.DocumentTypeOther
	}
	language := f.Language
	if language == "" {
		language = "unknown"
	}

	doc := domain.Document{
		FileName:      fileName,
		SourceURI:     sourceURI,
		Language:      language,
		DocumentType:  docType,
		SupplierName:  f.SupplierName,
		InvoiceNumber: f.InvoiceNumber,
		InvoiceDate:   f.InvoiceDate,
		Currency:      f.Currency,
		Subtotal:      f.Subtotal,
		TaxAmount:     f.TaxAmount,
		Total:         f.Total,
	}
	for _, item := range f.LineItems {
		if item.Description == "" {
			continue
		}
		doc.LineItems = append(doc.LineItems, domain.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	return doc
}
