package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchCursorWindow(t *testing.T) {
	tests := []struct {
		name   string
		cursor BatchCursor
		wantLo int
		wantHi int
	}{
		{"full list", BatchCursor{TotalFiles: 5, StartingPoint: 0, WindowSize: 0}, 0, 5},
		{"inner window", BatchCursor{TotalFiles: 5, StartingPoint: 2, WindowSize: 2}, 2, 4},
		{"window clamped to end", BatchCursor{TotalFiles: 5, StartingPoint: 4, WindowSize: 3}, 4, 5},
		{"start past end", BatchCursor{TotalFiles: 5, StartingPoint: 9, WindowSize: 2}, 5, 5},
		{"negative start", BatchCursor{TotalFiles: 5, StartingPoint: -3, WindowSize: 2}, 0, 2},
		{"negative window means rest", BatchCursor{TotalFiles: 5, StartingPoint: 1, WindowSize: -1}, 1, 5},
		{"empty list", BatchCursor{TotalFiles: 0, StartingPoint: 0, WindowSize: 10}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := tt.cursor.Window()
			assert.Equal(t, tt.wantLo, lo)
			assert.Equal(t, tt.wantHi, hi)
			assert.GreaterOrEqual(t, hi, lo)
		})
	}
}

func TestBatchCursorWindowsPartitionList(t *testing.T) {
	// Successive windows advance by the handled count and tile the list with
	// no gaps and no overlaps.
	const total = 7
	covered := 0
	for start := 0; start < total; {
		lo, hi := BatchCursor{TotalFiles: total, StartingPoint: start, WindowSize: 3}.Window()
		require.Equal(t, start, lo)
		covered += hi - lo
		start = hi
	}
	assert.Equal(t, total, covered)
}

func TestNewDegradedDocument(t *testing.T) {
	doc := NewDegradedDocument("a.pdf", "file:///inbox/a.pdf", "en")

	assert.Equal(t, "a.pdf", doc.FileName)
	assert.Equal(t, "file:///inbox/a.pdf", doc.SourceURI)
	assert.Equal(t, "en", doc.Language)
	assert.Equal(t, DocumentTypeOther, doc.DocumentType)
	require.NotNil(t, doc.Confidence)
	assert.Equal(t, 0.0, *doc.Confidence)
	assert.Nil(t, doc.SupplierName)
	assert.Nil(t, doc.Total)
	assert.False(t, doc.NeedsReview)
}

func TestDocumentTypeValid(t *testing.T) {
	for _, dt := range []DocumentType{DocumentTypeInvoice, DocumentTypeReceipt, DocumentTypeOther, DocumentTypeUncertain} {
		assert.True(t, dt.Valid(), string(dt))
	}
	assert.False(t, DocumentType("memo").Valid())
	assert.False(t, DocumentType("").Valid())
}
