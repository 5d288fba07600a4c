package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"invodex/internal/domain"
)

func docWithAmounts(subtotal, tax, total *float64) *domain.Document {
	return &domain.Document{
		FileName:  "inv.pdf",
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     total,
	}
}

func TestReconcileTotalsWithinTolerance(t *testing.T) {
	doc := docWithAmounts(fp(100.00), fp(18.00), fp(118.01))
	flagged := ReconcileTotals(doc)
	assert.False(t, flagged)
	assert.False(t, doc.NeedsReview)
}

func TestReconcileTotalsBeyondTolerance(t *testing.T) {
	doc := docWithAmounts(fp(100.00), fp(18.00), fp(119.00))
	flagged := ReconcileTotals(doc)
	assert.True(t, flagged)
	assert.True(t, doc.NeedsReview)
	// Extracted values are kept as-is, never replaced by the computed sum.
	assert.Equal(t, 119.00, *doc.Total)
}

func TestReconcileTotalsExactTolerance(t *testing.T) {
	doc := docWithAmounts(fp(100.00), fp(18.00), fp(118.02))
	assert.False(t, ReconcileTotals(doc))
}

func TestReconcileTotalsSkipsMissingAmounts(t *testing.T) {
	tests := []struct {
		name string
		doc  *domain.Document
	}{
		{"missing subtotal", docWithAmounts(nil, fp(18.00), fp(119.00))},
		{"missing tax", docWithAmounts(fp(100.00), nil, fp(119.00))},
		{"missing total", docWithAmounts(fp(100.00), fp(18.00), nil)},
		{"all missing", docWithAmounts(nil, nil, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, ReconcileTotals(tt.doc))
			assert.False(t, tt.doc.NeedsReview)
		})
	}
}

func TestReconcileTotalsRoundsToCents(t *testing.T) {
	// Floating point noise in the sum must not trip the check.
	doc := docWithAmounts(fp(0.1), fp(0.2), fp(0.3))
	assert.False(t, ReconcileTotals(doc))
}
