package pipeline

import (
	"log"
	"math"

	"invodex/internal/domain"
)

// reconcileTolerance is the maximum absolute difference tolerated between
// the reported total and subtotal + tax, after rounding to cents.
const reconcileTolerance = 0.02

// ReconcileTotals cross-checks the document's arithmetic. When subtotal,
// tax, and total are all present and subtotal + tax disagrees with total
// beyond tolerance, the document is flagged for review. The extracted values
// are never altered; the computed sum is not substituted.
func ReconcileTotals(doc *domain.Document) bool {
	if doc.Subtotal == nil || doc.TaxAmount == nil || doc.Total == nil {
		return false
	}
	computed := math.Round((*doc.Subtotal+*doc.TaxAmount)*100) / 100
	if math.Abs(computed-*doc.Total) <= reconcileTolerance {
		return false
	}
	log.Printf("pipeline.ReconcileTotals: %s: subtotal(%.2f)+tax(%.2f)=%.2f disagrees with total %.2f",
		doc.FileName, *doc.Subtotal, *doc.TaxAmount, computed, *doc.Total)
	doc.NeedsReview = true
	return true
}
