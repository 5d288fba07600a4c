package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invodex/internal/domain"
)

// MockDocumentRepository is a mock implementation of port.DocumentRepository.
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) UpsertBatch(ctx context.Context, docs []domain.Document) error {
	args := m.Called(ctx, docs)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetBySourceURI(ctx context.Context, sourceURI string) (*domain.Document, error) {
	args := m.Called(ctx, sourceURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListNeedsReview(ctx context.Context, limit int) ([]domain.Document, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}
