package port

import (
	"context"

	"invodex/internal/domain"
)

// DocumentRepository persists canonical extraction results. Records are
// keyed on source URI: reprocessing a file replaces its previous record.
type DocumentRepository interface {
	UpsertBatch(ctx context.Context, docs []domain.Document) error
	GetBySourceURI(ctx context.Context, sourceURI string) (*domain.Document, error)
	ListNeedsReview(ctx context.Context, limit int) ([]domain.Document, error)
}
