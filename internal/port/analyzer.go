package port

import "context"

// AnalyzerKind selects the prebuilt analysis model the provider runs.
type AnalyzerKind string

const (
	AnalyzerInvoice AnalyzerKind = "prebuilt-invoice"
	AnalyzerReceipt AnalyzerKind = "prebuilt-receipt"
	AnalyzerRead    AnalyzerKind = "prebuilt-read"
)

// AnalyzeInput carries one document's bytes into the analysis provider.
type AnalyzeInput struct {
	Content     []byte
	ContentType string
	Analyzer    AnalyzerKind
	Locale      string
}

// CurrencyValue is a structured monetary value with an optional ISO-4217 code.
type CurrencyValue struct {
	Amount       *float64 `json:"amount"`
	CurrencyCode string   `json:"currencyCode"`
}

// BoundingRegion is a provider-reported polygon locating a field on a page.
// Polygon is a flat [x1,y1,x2,y2,...] sequence in page pixel coordinates.
type BoundingRegion struct {
	PageNumber int       `json:"pageNumber"`
	Polygon    []float64 `json:"polygon"`
}

// Field is one node of the provider's field bag. Exactly one of the Value*
// members is populated depending on the field's type.
type Field struct {
	Type            string           `json:"type"`
	ValueString     string           `json:"valueString"`
	ValueDate       string           `json:"valueDate"`
	ValueNumber     *float64         `json:"valueNumber"`
	ValueCurrency   *CurrencyValue   `json:"valueCurrency"`
	ValueArray      []Field          `json:"valueArray"`
	ValueObject     map[string]Field `json:"valueObject"`
	Content         string           `json:"content"`
	Confidence      *float64         `json:"confidence"`
	BoundingRegions []BoundingRegion `json:"boundingRegions"`
}

// Page carries per-page metadata needed to normalize bounding polygons.
type Page struct {
	PageNumber int     `json:"pageNumber"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Unit       string  `json:"unit"`
}

// AnalyzedDocument is one document the provider recognized in the input file.
type AnalyzedDocument struct {
	DocType    string           `json:"docType"`
	Fields     map[string]Field `json:"fields"`
	Confidence *float64         `json:"confidence"`
}

// AnalyzeResult is the parsed terminal payload of an analysis operation.
// It is transient: scoped to one file's processing and discarded after
// mapping.
type AnalyzeResult struct {
	Content   string             `json:"content"`
	Pages     []Page             `json:"pages"`
	Documents []AnalyzedDocument `json:"documents"`
	// Fields is the top-level field bag some analyzer models return instead
	// of a documents list.
	Fields     map[string]Field `json:"fields"`
	Confidence *float64         `json:"confidence"`
}

// DocumentAnalyzer abstracts the remote long-running document analysis
// provider. Implementations drive the operation to a terminal state and
// return the parsed payload.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeResult, error)
}
