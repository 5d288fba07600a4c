package domain

// DocumentType classifies what kind of financial document a file turned out
// to be after extraction.
type DocumentType string

const (
	DocumentTypeInvoice   DocumentType = "invoice"
	DocumentTypeReceipt   DocumentType = "receipt"
	DocumentTypeOther     DocumentType = "other"
	DocumentTypeUncertain DocumentType = "uncertain"
)

// Valid reports whether t is one of the known document types.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeInvoice, DocumentTypeReceipt, DocumentTypeOther, DocumentTypeUncertain:
		return true
	}
	return false
}

// Canonical field names used as keys for bounding boxes and per-field
// confidence. Multiple provider field names map onto each of these.
const (
	FieldSupplierName  = "supplier_name"
	FieldInvoiceNumber = "invoice_number"
	FieldInvoiceDate   = "invoice_date"
	FieldSubtotal      = "subtotal"
	FieldTaxAmount     = "tax_amount"
	FieldTotal         = "total"
)
