package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invodex/internal/port"
)

// MockFieldExtractor is a mock implementation of port.FieldExtractor.
type MockFieldExtractor struct {
	mock.Mock
}

func (m *MockFieldExtractor) Extract(ctx context.Context, rawText, fileName string) *port.ExtractedFields {
	args := m.Called(ctx, rawText, fileName)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*port.ExtractedFields)
}
