package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// documentDocument is the Firestore representation of model.Document.
// Embedding is stored as firestore.Vector32 so that FindNearest vector
// search works against the vector index.
type documentDocument struct {
	ID          string             `firestore:"id"`
	Name        string             `firestore:"name"`
	ContentType string             `firestore:"content_type"`
	Size        int64              `firestore:"size"`
	StorageKey  string             `firestore:"storage_key"`
	Source      string             `firestore:"source"`
	SourceRef   string             `firestore:"source_ref"`
	ContentHash string             `firestore:"content_hash"`
	Text        string             `firestore:"text"`
	Embedding   firestore.Vector32 `firestore:"embedding,omitempty"`
	Status      string             `firestore:"status"`
	Tags        []string           `firestore:"tags"`
	UploadedBy  string             `firestore:"uploaded_by"`
	CreatedAt   time.Time          `firestore:"created_at"`
	UpdatedAt   time.Time          `firestore:"updated_at"`
}

func toDocumentDocument(d *model.Document) *documentDocument {
	doc := &documentDocument{
		ID:          d.ID.String(),
		Name:        d.Name,
		ContentType: d.ContentType,
		Size:        d.Size,
		StorageKey:  d.StorageKey,
		Source:      d.Source.String(),
		SourceRef:   d.SourceRef,
		ContentHash: d.ContentHash,
		Text:        d.Text,
		Status:      d.Status.String(),
		Tags:        d.Tags,
		UploadedBy:  d.UploadedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if len(d.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(d.Embedding)
	}
	return doc
}

func (d *documentDocument) toModel() *model.Document {
	doc := &model.Document{
		ID:          model.DocumentID(d.ID),
		Name:        d.Name,
		ContentType: d.ContentType,
		Size:        d.Size,
		StorageKey:  d.StorageKey,
		Source:      types.DocumentSource(d.Source),
		SourceRef:   d.SourceRef,
		ContentHash: d.ContentHash,
		Text:        d.Text,
		Status:      types.DocumentStatus(d.Status),
		Tags:        d.Tags,
		UploadedBy:  d.UploadedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if len(d.Embedding) > 0 {
		doc.Embedding = []float32(d.Embedding)
	}
	return doc
}

func snapshotToDocument(doc *firestore.DocumentSnapshot) (*model.Document, error) {
	var d documentDocument
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return d.toModel(), nil
}

type documentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newDocumentRepository(client *firestore.Client) *documentRepository {
	return &documentRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *documentRepository) documentsCollection() string {
	return prefixed(r.collectionPrefix, "documents")
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	now := time.Now().UTC()
	created := toDocumentDocument(doc)
	if created.ID == "" {
		created.ID = model.NewDocumentID().String()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	docRef := r.client.Collection(r.documentsCollection()).Doc(created.ID)
	if _, err := docRef.Set(ctx, created); err != nil {
		return nil, goerr.Wrap(err, "failed to create document")
	}

	return created.toModel(), nil
}

func (r *documentRepository) Get(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	docRef := r.client.Collection(r.documentsCollection()).Doc(id.String())
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "document not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get document", goerr.V("id", id))
	}

	d, err := snapshotToDocument(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal document", goerr.V("id", id))
	}

	return d, nil
}

func (r *documentRepository) List(ctx context.Context, opts ...interfaces.ListDocumentOption) ([]*model.Document, error) {
	cfg := interfaces.BuildListDocumentConfig(opts...)

	query := r.client.Collection(r.documentsCollection()).Query
	if source := cfg.Source(); source != nil {
		query = query.Where("source", "==", source.String())
	}
	if s := cfg.Status(); s != nil {
		query = query.Where("status", "==", s.String())
	}
	if tag := cfg.Tag(); tag != nil {
		query = query.Where("tags", "array-contains", *tag)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	documents := make([]*model.Document, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents")
		}

		d, err := snapshotToDocument(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal document")
		}

		documents = append(documents, d)
	}

	return documents, nil
}

func (r *documentRepository) ListWithPagination(ctx context.Context, limit, offset int) ([]*model.Document, int, error) {
	// Get total count first
	allDocs, err := r.client.Collection(r.documentsCollection()).Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to count documents")
	}
	totalCount := len(allDocs)

	query := r.client.Collection(r.documentsCollection()).
		OrderBy("created_at", firestore.Desc).
		Offset(offset).
		Limit(limit)

	iter := query.Documents(ctx)
	defer iter.Stop()

	documents := make([]*model.Document, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, goerr.Wrap(err, "failed to iterate documents")
		}

		d, err := snapshotToDocument(doc)
		if err != nil {
			return nil, 0, goerr.Wrap(err, "failed to unmarshal document")
		}

		documents = append(documents, d)
	}

	return documents, totalCount, nil
}

func (r *documentRepository) FindBySourceRef(ctx context.Context, sourceRef string) (*model.Document, error) {
	iter := r.client.Collection(r.documentsCollection()).
		Where("source_ref", "==", sourceRef).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query document by source ref", goerr.V("sourceRef", sourceRef))
	}

	d, err := snapshotToDocument(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal document", goerr.V("sourceRef", sourceRef))
	}

	return d, nil
}

func (r *documentRepository) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	docRef := r.client.Collection(r.documentsCollection()).Doc(doc.ID.String())

	snapshot, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "document not found", goerr.V("id", doc.ID))
		}
		return nil, goerr.Wrap(err, "failed to get document", goerr.V("id", doc.ID))
	}

	var existing documentDocument
	if err := snapshot.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal document", goerr.V("id", doc.ID))
	}

	updated := toDocumentDocument(doc)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update document", goerr.V("id", doc.ID))
	}

	return updated.toModel(), nil
}

// distanceResultField is where FindNearest writes the computed cosine
// distance into each result document
const distanceResultField = "vector_distance"

func (r *documentRepository) FindByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.ScoredDocument, error) {
	vq := r.client.Collection(r.documentsCollection()).
		FindNearest("embedding", firestore.Vector32(embedding), limit, firestore.DistanceMeasureCosine,
			&firestore.FindNearestOptions{DistanceResultField: distanceResultField})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	results := make([]*model.ScoredDocument, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to search documents by embedding")
		}

		d, err := snapshotToDocument(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal document")
		}

		// Cosine distance is 1 - similarity; report similarity so both
		// backends score the same way
		var score float64
		if dist, ok := doc.Data()[distanceResultField].(float64); ok {
			score = 1 - dist
		}

		results = append(results, &model.ScoredDocument{Doc: d, Score: score})
	}

	return results, nil
}

func (r *documentRepository) Delete(ctx context.Context, id model.DocumentID) error {
	docRef := r.client.Collection(r.documentsCollection()).Doc(id.String())

	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "document not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get document", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete document", goerr.V("id", id))
	}

	return nil
}
