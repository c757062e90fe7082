package interfaces

import (
	"context"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
)

// DocumentRepository defines the interface for Document data persistence
type DocumentRepository interface {
	// Create creates a new document entry
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// Get retrieves a document by ID
	Get(ctx context.Context, id model.DocumentID) (*model.Document, error)

	// List retrieves documents with optional filtering
	List(ctx context.Context, opts ...ListDocumentOption) ([]*model.Document, error)

	// ListWithPagination retrieves documents with pagination
	// Returns documents, total count, and error
	ListWithPagination(ctx context.Context, limit, offset int) ([]*model.Document, int, error)

	// FindBySourceRef retrieves a document by its origin reference.
	// Returns nil, nil when no document matches.
	FindBySourceRef(ctx context.Context, sourceRef string) (*model.Document, error)

	// Update updates an existing document
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByEmbedding retrieves the documents most similar to the given
	// embedding together with their similarity scores, most similar first
	FindByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.ScoredDocument, error)

	// Delete deletes a document by ID
	Delete(ctx context.Context, id model.DocumentID) error
}
