package mapper

import (
	"invodex/internal/domain"
	"invodex/internal/port"
)

// schema is the field-name table for one provider payload shape. Each entry
// lists provider field names in a fixed fallback order; for geometry and
// confidence the first name with data wins and later ones never overwrite it.
type schema struct {
	supplierName  []string
	invoiceNumber []string
	invoiceDate   []string
	subtotal      []string
	taxAmount     []string
	total         []string
	items         []string

	itemDescription string
	itemQuantity    string
	itemUnitPrice   string
	itemLineTotal   string
}

// invoiceSchema matches the prebuilt-invoice payload.
var invoiceSchema = schema{
	supplierName:  []string{"VendorName", "CustomerName"},
	invoiceNumber: []string{"InvoiceId", "InvoiceNumber"},
	invoiceDate:   []string{"InvoiceDate"},
	subtotal:      []string{"SubTotal"},
	taxAmount:     []string{"TotalTax", "Tax"},
	total:         []string{"InvoiceTotal"},
	items:         []string{"Items"},

	itemDescription: "Description",
	itemQuantity:    "Quantity",
	itemUnitPrice:   "UnitPrice",
	itemLineTotal:   "Amount",
}

// receiptSchema matches the prebuilt-receipt payload.
var receiptSchema = schema{
	supplierName:  []string{"MerchantName"},
	invoiceNumber: nil,
	invoiceDate:   []string{"TransactionDate"},
	subtotal:      []string{"Subtotal"},
	taxAmount:     []string{"TotalTax", "Tax"},
	total:         []string{"Total"},
	items:         []string{"Items"},

	itemDescription: "Description",
	itemQuantity:    "Quantity",
	itemUnitPrice:   "Price",
	itemLineTotal:   "TotalPrice",
}

// MapInvoice converts an invoice-shaped analysis payload into the canonical
// model. Pure and best-effort: absent fields map to nil, never an error.
// The invoice/other document-type decision is the caller's, not the mapper's.
func MapInvoice(result *port.AnalyzeResult, fileName, sourceURI, language string) domain.Document {
	return mapWith(invoiceSchema, domain.DocumentTypeInvoice, result, fileName, sourceURI, language)
}

// MapReceipt converts a receipt-shaped analysis payload into the canonical
// model under the same best-effort contract as MapInvoice.
func MapReceipt(result *port.AnalyzeResult, fileName, sourceURI, language string) domain.Document {
	return mapWith(receiptSchema, domain.DocumentTypeReceipt, result, fileName, sourceURI, language)
}

func mapWith(s schema, docType domain.DocumentType, result *port.AnalyzeResult, fileName, sourceURI, language string) domain.Document {
	bag := newFieldBag(result)

	doc := domain.Document{
		FileName:     fileName,
		SourceURI:    sourceURI,
		Language:     language,
		DocumentType: docType,
	}

	doc.SupplierName = bag.str(s.supplierName...)
	doc.InvoiceNumber = bag.str(s.invoiceNumber...)
	doc.InvoiceDate = bag.date(s.invoiceDate...)

	doc.Subtotal, _ = bag.currency(s.subtotal...)
	doc.TaxAmount, _ = bag.currency(s.taxAmount...)

	var code *string
	doc.Total, code = bag.currency(s.total...)
	if code == nil {
		// Currency code resolution order: Total first, then Subtotal.
		_, code = bag.currency(s.subtotal...)
	}
	doc.Currency = code

	doc.LineItems = mapLineItems(s, bag)
	doc.Confidence = documentConfidence(result)
	doc.PageCount = pageCount(result)
	doc.BoundingBoxes = mapBoundingBoxes(s, bag, result)
	doc.FieldConfidence = mapFieldConfidence(s, bag)

	return doc
}

// mapLineItems enumerates the items array; entries without a description are
// discarded.
func mapLineItems(s schema, bag fieldBag) []domain.LineItem {
	var items []domain.LineItem
	for _, entry := range bag.array(s.items...) {
		obj := entry.ValueObject
		if obj == nil {
			continue
		}
		descField, ok := objectField(obj, s.itemDescription)
		if !ok || descField.ValueString == "" {
			continue
		}
		item := domain.LineItem{Description: descField.ValueString}
		if f, ok := objectField(obj, s.itemQuantity); ok {
			item.Quantity = f.ValueNumber
		}
		if f, ok := objectField(obj, s.itemUnitPrice); ok {
			item.UnitPrice, _ = currencyValue(f)
		}
		if f, ok := objectField(obj, s.itemLineTotal); ok {
			item.LineTotal, _ = currencyValue(f)
		}
		items = append(items, item)
	}
	return items
}

func documentConfidence(result *port.AnalyzeResult) *float64 {
	if result == nil {
		return nil
	}
	if len(result.Documents) > 0 && result.Documents[0].Confidence != nil {
		return result.Documents[0].Confidence
	}
	return result.Confidence
}

func pageCount(result *port.AnalyzeResult) int {
	if result == nil || len(result.Pages) == 0 {
		return 1
	}
	return len(result.Pages)
}

// canonicalFields returns the fixed canonical-name set and the provider
// aliases each name draws from, in iteration order.
func canonicalFields(s schema) []struct {
	canonical string
	names     []string
} {
	return []struct {
		canonical string
		names     []string
	}{
		{domain.FieldSupplierName, s.supplierName},
		{domain.FieldInvoiceNumber, s.invoiceNumber},
		{domain.FieldInvoiceDate, s.invoiceDate},
		{domain.FieldSubtotal, s.subtotal},
		{domain.FieldTaxAmount, s.taxAmount},
		{domain.FieldTotal, s.total},
	}
}

// mapBoundingBoxes normalizes the first bounding region of the first provider
// alias carrying geometry for each canonical field. Fields whose page
// dimensions are unknown produce no box at all.
func mapBoundingBoxes(s schema, bag fieldBag, result *port.AnalyzeResult) map[string]domain.BoundingBox {
	var pages []port.Page
	if result != nil {
		pages = result.Pages
	}
	boxes := make(map[string]domain.BoundingBox)
	for _, cf := range canonicalFields(s) {
		for _, name := range cf.names {
			f, ok := bag.fields[name]
			if !ok || len(f.BoundingRegions) == 0 {
				continue
			}
			box, ok := normalizeRegion(f.BoundingRegions[0], pages)
			if ok {
				boxes[cf.canonical] = box
			}
			break // first alias with geometry wins, normalized or not
		}
	}
	if len(boxes) == 0 {
		return nil
	}
	return boxes
}

// mapFieldConfidence collects per-field confidence under the same first-wins
// rule as geometry.
func mapFieldConfidence(s schema, bag fieldBag) map[string]float64 {
	conf := make(map[string]float64)
	for _, cf := range canonicalFields(s) {
		for _, name := range cf.names {
			f, ok := bag.fields[name]
			if !ok || f.Confidence == nil {
				continue
			}
			conf[cf.canonical] = *f.Confidence
			break
		}
	}
	if len(conf) == 0 {
		return nil
	}
	return conf
}

// normalizeRegion converts a provider polygon into a four-point box with
// coordinates in [0, 1]. It requires a polygon of at least four points and
// known positive dimensions for the referenced page; otherwise no box is
// produced (never an unnormalized one).
func normalizeRegion(region port.BoundingRegion, pages []port.Page) (domain.BoundingBox, bool) {
	if len(region.Polygon) < 8 {
		return domain.BoundingBox{}, false
	}
	var width, height float64
	for _, p := range pages {
		if p.PageNumber == region.PageNumber {
			width, height = p.Width, p.Height
			break
		}
	}
	if width <= 0 || height <= 0 {
		return domain.BoundingBox{}, false
	}
	box := domain.BoundingBox{Page: region.PageNumber}
	for i := 0; i < 4; i++ {
		box.Points[i] = domain.Point{
			X: region.Polygon[2*i] / width,
			Y: region.Polygon[2*i+1] / height,
		}
	}
	return box, true
}
