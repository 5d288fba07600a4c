package domain

// Point is one polygon vertex in normalized page coordinates. Both X and Y
// lie in [0, 1] relative to the page's pixel dimensions.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox locates a field value on a page image. Points is an ordered
// four-corner polygon in normalized coordinates; Page is 1-based.
type BoundingBox struct {
	Page   int      `json:"page"`
	Points [4]Point `json:"points"`
}

// LineItem is one row of an invoice or receipt. Description is required for
// the item to survive mapping; the amounts are optional.
type LineItem struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	LineTotal   *float64 `json:"line_total"`
}

// Document is the canonical extraction result. Exactly one Document is
// produced per input file, even on failure: a failed file yields the degraded
// sentinel (see NewDegradedDocument) rather than no record at all.
type Document struct {
	FileName     string       `json:"file_name"`
	SourceURI    string       `json:"source_path"`
	FileURL      *string      `json:"file_url,omitempty"`
	Language     string       `json:"language"`
	DocumentType DocumentType `json:"document_type"`

	SupplierName  *string  `json:"supplier_name"`
	InvoiceNumber *string  `json:"invoice_number"`
	InvoiceDate   *string  `json:"invoice_date"`
	Currency      *string  `json:"currency"`
	Subtotal      *float64 `json:"subtotal"`
	TaxAmount     *float64 `json:"tax_amount"`
	Total         *float64 `json:"total"`

	LineItems []LineItem `json:"line_items,omitempty"`

	Confidence      *float64               `json:"confidence"`
	PageCount       int                    `json:"page_count"`
	BoundingBoxes   map[string]BoundingBox `json:"bounding_boxes,omitempty"`
	FieldConfidence map[string]float64     `json:"field_confidence,omitempty"`

	// NeedsReview is set when the arithmetic cross-check finds that
	// subtotal + tax disagrees with total beyond tolerance. The extracted
	// values themselves are kept as-is.
	NeedsReview bool `json:"needs_review"`
}

// NewDegradedDocument returns the all-null sentinel emitted in place of a
// crash when per-file processing fails. Confidence is pinned to 0.0 so
// downstream consumers can tell it apart from a document the provider simply
// had no data for.
func NewDegradedDocument(fileName, sourceURI, language string) Document {
	zero := 0.0
	return Document{
		FileName:     fileName,
		SourceURI:    sourceURI,
		Language:     language,
		DocumentType: DocumentTypeOther,
		Confidence:   &zero,
	}
}

// BatchCursor describes the slice of the discovered file list that one batch
// invocation processes: the half-open window
// [StartingPoint, min(StartingPoint+WindowSize, TotalFiles)).
// Cursor state is owned by the caller; the pipeline never persists it.
type BatchCursor struct {
	TotalFiles    int
	StartingPoint int
	WindowSize    int
}

// Window returns the clamped [lo, hi) bounds of the cursor's slice.
// A WindowSize of zero or less means "through the end of the list".
func (c BatchCursor) Window() (lo, hi int) {
	lo = c.StartingPoint
	if lo < 0 {
		lo = 0
	}
	if lo > c.TotalFiles {
		lo = c.TotalFiles
	}
	hi = lo + c.WindowSize
	if c.WindowSize <= 0 || hi > c.TotalFiles {
		hi = c.TotalFiles
	}
	return lo, hi
}
