// Package mocks provides testify mocks for the service interfaces.
package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"pdfviewer/internal/model"
	"pdfviewer/internal/service"
)

var _ service.DocumentService = (*MockDocumentService)(nil)

// MockDocumentService also satisfies viewer.DocumentLookup through Get.
type MockDocumentService struct {
	mock.Mock
}

func document(args mock.Arguments) (*model.Document, error) {
	doc, _ := args.Get(0).(*model.Document)
	return doc, args.Error(1)
}

func (m *MockDocumentService) Upload(ctx context.Context, r io.Reader, originalFilename string, title string, size int64) (*model.Document, error) {
	return document(m.Called(ctx, r, originalFilename, title, size))
}

func (m *MockDocumentService) List(ctx context.Context, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, limit, offset)
	res, _ := args.Get(0).(*service.DocumentListResult)
	return res, args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id string) (*model.Document, error) {
	return document(m.Called(ctx, id))
}

func (m *MockDocumentService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
