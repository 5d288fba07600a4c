package classifier

import (
	"strings"

	"invodex/internal/domain"
)

// Keyword sets are bilingual (English/Hebrew). Matching is substring-based
// and case-insensitive, mirroring how these phrases appear in recognized
// text.
var receiptKeywords = []string{
	"receipt",
	"sales receipt",
	"קבלה",
}

var invoiceKeywords = []string{
	"invoice",
	"tax invoice",
	"חשבונית",
	"חשבונית מס",
	"חשבונית מס קבלה",
	"חשבון",
}

// monetaryKeywords are generic purchase signals consulted only when no
// document-type keyword hits at all.
var monetaryKeywords = []string{
	"total",
	"subtotal",
	"tax",
	"amount",
	"סך",
	`סה"כ`,
	`מע"מ`,
}

// DetectLanguage returns "he" when the text contains at least one code point
// in the Hebrew Unicode block (U+0590–U+05FF), else "en".
func DetectLanguage(text string) string {
	for _, r := range text {
		if r >= 0x0590 && r <= 0x05FF {
			return "he"
		}
	}
	return "en"
}

// Classify guesses the document type from recognized text. It is a
// deterministic keyword counter used as a secondary signal alongside the
// provider's own classification, never for routing.
func Classify(text string) (domain.DocumentType, float64) {
	if text == "" {
		return domain.DocumentTypeUncertain, 0.0
	}
	lower := strings.ToLower(text)

	receiptHits := countHits(lower, receiptKeywords)
	invoiceHits := countHits(lower, invoiceKeywords)

	if receiptHits+invoiceHits == 0 {
		if countHits(lower, monetaryKeywords) > 0 {
			return domain.DocumentTypeUncertain, 0.4
		}
		return domain.DocumentTypeOther, 0.3
	}
	if receiptHits > invoiceHits {
		return domain.DocumentTypeReceipt, score(receiptHits)
	}
	if invoiceHits > receiptHits {
		return domain.DocumentTypeInvoice, score(invoiceHits)
	}
	// tie or too close
	return domain.DocumentTypeUncertain, 0.45
}

// countHits sums occurrences, so repeated mentions strengthen the signal.
func countHits(lower string, keywords []string) int {
	hits := 0
	for _, k := range keywords {
		hits += strings.Count(lower, k)
	}
	return hits
}

func score(hits int) float64 {
	s := 0.4 + 0.2*float64(hits)
	if s > 1.0 {
		return 1.0
	}
	return s
}
