// Package mock provides function-field mock implementations of civdoc
// interfaces for testing.
package mock

import (
	"context"

	"github.com/civdoc/civdoc"
)

var _ civdoc.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of civdoc.DocumentService.
type DocumentService struct {
	CreateDocumentsFn           func(ctx context.Context, docs []*civdoc.Document) error
	FindDocumentByReferenceIDFn func(ctx context.Context, referenceID string) (*civdoc.Document, error)
	FindNearestFn               func(ctx context.Context, vector []float32, k int) ([]*civdoc.Document, error)
	FindDocumentsByTypeFn       func(ctx context.Context, typeOf string) ([]*civdoc.Document, error)
	DeleteAllDocumentsFn        func(ctx context.Context) error
}

func (s *DocumentService) CreateDocuments(ctx context.Context, docs []*civdoc.Document) error {
	return s.CreateDocumentsFn(ctx, docs)
}

func (s *DocumentService) FindDocumentByReferenceID(ctx context.Context, referenceID string) (*civdoc.Document, error) {
	return s.FindDocumentByReferenceIDFn(ctx, referenceID)
}

func (s *DocumentService) FindNearest(ctx context.Context, vector []float32, k int) ([]*civdoc.Document, error) {
	return s.FindNearestFn(ctx, vector, k)
}

func (s *DocumentService) FindDocumentsByType(ctx context.Context, typeOf string) ([]*civdoc.Document, error) {
	return s.FindDocumentsByTypeFn(ctx, typeOf)
}

func (s *DocumentService) DeleteAllDocuments(ctx context.Context) error {
	return s.DeleteAllDocumentsFn(ctx)
}
