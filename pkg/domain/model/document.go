package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
)

// EmbeddingDimension is the dimension of the embedding vector
// Gemini text-embedding-004 uses 768 dimensions
const EmbeddingDimension = 768

// DocumentID is a UUID-based identifier for Document
type DocumentID string

// NewDocumentID generates a new UUID v4 DocumentID
func NewDocumentID() DocumentID {
	return DocumentID(uuid.New().String())
}

// String returns the string representation of the DocumentID
func (id DocumentID) String() string {
	return string(id)
}

// ScoredDocument is a vector search hit. Score is cosine similarity
// against the query embedding; higher means more similar.
type ScoredDocument struct {
	Doc   *Document
	Score float64
}

// Document represents a stored policy/evidence document with its search index
type Document struct {
	ID          DocumentID
	Name        string
	ContentType string
	Size        int64
	StorageKey  string // blob location within the storage backend
	Source      types.DocumentSource
	SourceRef   string // origin URL for ingested documents (Notion page, GitHub issue)
	ContentHash string // SHA-256 of the extracted text, used to skip unchanged re-ingestion
	Text        string // extracted plain text used for indexing
	Embedding   []float32
	Status      types.DocumentStatus
	Tags        []string
	UploadedBy  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
