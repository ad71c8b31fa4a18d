// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pdfviewer/internal/model"
	"pdfviewer/internal/repository"
)

var _ repository.DocumentRepository = (*MockDocumentRepository)(nil)

// MockDocumentRepository is a testify mock of repository.DocumentRepository.
// A nil first return value stands for "no row".
type MockDocumentRepository struct {
	mock.Mock
}

func document(args mock.Arguments) (*model.Document, error) {
	doc, _ := args.Get(0).(*model.Document)
	return doc, args.Error(1)
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	return document(m.Called(ctx, doc))
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*model.Document, error) {
	return document(m.Called(ctx, id))
}

func (m *MockDocumentRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	args := m.Called(ctx, pq)
	page, _ := args.Get(0).(*repository.PageResult[model.Document])
	return page, args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
