package index

import (
	"context"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
)

// Service builds embedding vectors for documents and search queries
type Service interface {
	// BuildEmbedding returns the embedding for a document's searchable
	// text (name, tags and extracted text, truncated to the input budget)
	BuildEmbedding(ctx context.Context, doc *model.Document) ([]float32, error)

	// EmbedQuery returns the embedding for a search query
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}
