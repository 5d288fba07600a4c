package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invodex/internal/port"
)

// MockFileDiscovery is a mock implementation of port.FileDiscovery.
type MockFileDiscovery struct {
	mock.Mock
}

func (m *MockFileDiscovery) Discover(ctx context.Context, path string, recursive bool) ([]string, error) {
	args := m.Called(ctx, path, recursive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockByteReader is a mock implementation of port.ByteReader.
type MockByteReader struct {
	mock.Mock
}

func (m *MockByteReader) ReadBytes(ctx context.Context, uri string) (*port.FileContent, error) {
	args := m.Called(ctx, uri)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.FileContent), args.Error(1)
}

// MockFileLifecycle is a mock implementation of port.FileLifecycle.
type MockFileLifecycle struct {
	mock.Mock
}

func (m *MockFileLifecycle) MarkProcessed(ctx context.Context, uri string) (string, bool, error) {
	args := m.Called(ctx, uri)
	return args.String(0), args.Bool(1), args.Error(2)
}
