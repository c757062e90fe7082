package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type documentRepository struct {
	mu        sync.RWMutex
	documents map[model.DocumentID]*model.Document
}

func newDocumentRepository() *documentRepository {
	return &documentRepository{
		documents: make(map[model.DocumentID]*model.Document),
	}
}

// copyDocument creates a deep copy of a document
func copyDocument(d *model.Document) *model.Document {
	copied := &model.Document{
		ID:          d.ID,
		Name:        d.Name,
		ContentType: d.ContentType,
		Size:        d.Size,
		StorageKey:  d.StorageKey,
		Source:      d.Source,
		SourceRef:   d.SourceRef,
		ContentHash: d.ContentHash,
		Text:        d.Text,
		Status:      d.Status,
		UploadedBy:  d.UploadedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}

	if d.Embedding != nil {
		copied.Embedding = make([]float32, len(d.Embedding))
		copy(copied.Embedding, d.Embedding)
	}
	if d.Tags != nil {
		copied.Tags = make([]string, len(d.Tags))
		copy(copied.Tags, d.Tags)
	}

	return copied
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyDocument(doc)
	if created.ID == "" {
		created.ID = model.NewDocumentID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.documents[created.ID] = created
	return copyDocument(created), nil
}

func (r *documentRepository) Get(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, exists := r.documents[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "document not found", goerr.V("id", id))
	}

	return copyDocument(doc), nil
}

func (r *documentRepository) List(ctx context.Context, opts ...interfaces.ListDocumentOption) ([]*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg := interfaces.BuildListDocumentConfig(opts...)

	documents := make([]*model.Document, 0, len(r.documents))
	for _, doc := range r.documents {
		if source := cfg.Source(); source != nil && doc.Source != *source {
			continue
		}
		if status := cfg.Status(); status != nil && doc.Status != *status {
			continue
		}
		if tag := cfg.Tag(); tag != nil && !hasTag(doc.Tags, *tag) {
			continue
		}
		documents = append(documents, copyDocument(doc))
	}

	return documents, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (r *documentRepository) ListWithPagination(ctx context.Context, limit, offset int) ([]*model.Document, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*model.Document, 0, len(r.documents))
	for _, doc := range r.documents {
		all = append(all, copyDocument(doc))
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	totalCount := len(all)

	if offset >= len(all) {
		return []*model.Document{}, totalCount, nil
	}

	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	return all[offset:end], totalCount, nil
}

func (r *documentRepository) FindBySourceRef(ctx context.Context, sourceRef string) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, doc := range r.documents {
		if doc.SourceRef != "" && doc.SourceRef == sourceRef {
			return copyDocument(doc), nil
		}
	}

	return nil, nil
}

func (r *documentRepository) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.documents[doc.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "document not found", goerr.V("id", doc.ID))
	}

	updated := copyDocument(doc)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.documents[updated.ID] = updated
	return copyDocument(updated), nil
}

func (r *documentRepository) FindByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.ScoredDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []*model.ScoredDocument
	for _, doc := range r.documents {
		if len(doc.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, &model.ScoredDocument{
			Doc:   copyDocument(doc),
			Score: cosineSimilarity(embedding, doc.Embedding),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if limit < 0 {
		limit = 0
	}
	if limit > len(candidates) {
		limit = len(candidates)
	}

	return candidates[:limit], nil
}

func (r *documentRepository) Delete(ctx context.Context, id model.DocumentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.documents[id]; !exists {
		return goerr.Wrap(ErrNotFound, "document not found", goerr.V("id", id))
	}

	delete(r.documents, id)
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
