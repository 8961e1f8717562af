// Package mocks holds testify mocks of the collaborators the controller and
// handlers depend on.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipe-assistant/backend/internal/model"
	"github.com/pageza/recipe-assistant/backend/internal/service"
)

// MockGenerator is a mock implementation of service.Generator
type MockGenerator struct {
	mock.Mock
}

// Generate mocks the Generate method
func (m *MockGenerator) Generate(ctx context.Context, prompt, tone string) ([]model.Recipe, error) {
	args := m.Called(ctx, prompt, tone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

// MockExtractor is a mock implementation of service.Extractor
type MockExtractor struct {
	mock.Mock
}

// Extract mocks the Extract method
func (m *MockExtractor) Extract(ctx context.Context, file service.Upload) (string, error) {
	args := m.Called(ctx, file)
	return args.String(0), args.Error(1)
}

// MockKVStore is a mock implementation of store.KVStore
type MockKVStore struct {
	mock.Mock
}

// Get mocks the Get method
func (m *MockKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

// Set mocks the Set method
func (m *MockKVStore) Set(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

// Delete mocks the Delete method
func (m *MockKVStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
