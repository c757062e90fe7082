package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/model/auth"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/jungkj/riscura-sub000/pkg/service/index"
	"github.com/jungkj/riscura-sub000/pkg/service/storage"
	"github.com/jungkj/riscura-sub000/pkg/utils/errutil"
)

const (
	// MaxUploadSize bounds a single document upload
	MaxUploadSize = 32 << 20 // 32 MiB

	// maxIndexedTextBytes bounds the extracted text kept on the document
	maxIndexedTextBytes = 1 << 20 // 1 MiB

	// DefaultSearchLimit is the number of search hits returned when the
	// caller does not ask for a specific count
	DefaultSearchLimit = 10

	// MaxSearchLimit caps the number of search hits per query
	MaxSearchLimit = 50
)

// DocumentUseCase manages document blobs and their search index
type DocumentUseCase struct {
	repo           interfaces.Repository
	storageService storage.Service
	indexService   index.Service
}

func NewDocumentUseCase(repo interfaces.Repository, storageService storage.Service, indexService index.Service) *DocumentUseCase {
	return &DocumentUseCase{
		repo:           repo,
		storageService: storageService,
		indexService:   indexService,
	}
}

// UploadDocument stores the blob and indexes its text. When embedding
// fails the document is kept with status pending so a later reindex
// can pick it up; when the metadata write fails the blob is removed
// again.
func (uc *DocumentUseCase) UploadDocument(ctx context.Context, name, contentType string, r io.Reader, tags []string) (*model.Document, error) {
	if uc.storageService == nil {
		return nil, goerr.New("document storage is not configured")
	}
	if name == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "document name is required")
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read upload")
	}
	if len(data) > MaxUploadSize {
		return nil, goerr.Wrap(ErrInvalidInput, "document exceeds the upload size limit",
			goerr.V("max_bytes", MaxUploadSize))
	}
	if len(data) == 0 {
		return nil, goerr.Wrap(ErrInvalidInput, "document is empty")
	}

	key := "documents/" + uuid.New().String()
	if err := uc.storageService.Put(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return nil, goerr.Wrap(err, "failed to store document blob", goerr.V("key", key))
	}

	doc := &model.Document{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		StorageKey:  key,
		Source:      types.DocumentSourceUpload,
		Status:      types.DocumentStatusPending,
		Tags:        tags,
		UploadedBy:  auth.ActorFromContext(ctx),
	}

	if text, ok := index.ExtractText(contentType, data); ok {
		doc.Text = truncateText(text, maxIndexedTextBytes)
	}

	if uc.indexService != nil && doc.Text != "" {
		embedding, err := uc.indexService.BuildEmbedding(ctx, doc)
		if err != nil {
			// Keep the document as pending; reindex can retry later
			errutil.Handle(ctx, err, "failed to build document embedding")
		} else {
			doc.Embedding = embedding
			doc.Status = types.DocumentStatusIndexed
		}
	}

	created, err := uc.repo.Document().Create(ctx, doc)
	if err != nil {
		// Rollback: remove the blob so no orphan remains
		if delErr := uc.storageService.Delete(ctx, key); delErr != nil {
			errutil.Handle(ctx, delErr, "failed to remove orphaned document blob")
		}
		return nil, goerr.Wrap(err, "failed to create document", goerr.V("key", key))
	}

	recordAudit(ctx, uc.repo, types.AuditActionUploadDocument, "document", string(created.ID), map[string]any{
		"name":   created.Name,
		"size":   created.Size,
		"status": string(created.Status),
	})

	return created, nil
}

// GetDocument returns a single document's metadata
func (uc *DocumentUseCase) GetDocument(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	doc, err := uc.repo.Document().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrDocumentNotFound, "document not found", goerr.V(DocumentIDKey, id))
	}
	return doc, nil
}

// DocumentFilter narrows a document listing
type DocumentFilter struct {
	Source *types.DocumentSource
	Status *types.DocumentStatus
	Tag    string
}

// ListDocuments returns documents matching the filter
func (uc *DocumentUseCase) ListDocuments(ctx context.Context, filter DocumentFilter) ([]*model.Document, error) {
	var opts []interfaces.ListDocumentOption
	if filter.Source != nil {
		opts = append(opts, interfaces.WithDocumentSource(*filter.Source))
	}
	if filter.Status != nil {
		opts = append(opts, interfaces.WithDocumentStatus(*filter.Status))
	}
	if filter.Tag != "" {
		opts = append(opts, interfaces.WithDocumentTag(filter.Tag))
	}

	docs, err := uc.repo.Document().List(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list documents")
	}

	return docs, nil
}

// DownloadDocument returns the blob of an uploaded document. The
// caller must close the reader. Ingested documents carry no blob and
// cannot be downloaded.
func (uc *DocumentUseCase) DownloadDocument(ctx context.Context, id model.DocumentID) (io.ReadCloser, *model.Document, error) {
	doc, err := uc.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if doc.StorageKey == "" {
		return nil, nil, goerr.Wrap(ErrInvalidInput, "document has no stored blob",
			goerr.V(DocumentIDKey, id),
			goerr.V("source", doc.Source))
	}
	if uc.storageService == nil {
		return nil, nil, goerr.New("document storage is not configured")
	}

	rc, err := uc.storageService.Get(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to read document blob",
			goerr.V(DocumentIDKey, id),
			goerr.V("key", doc.StorageKey))
	}

	return rc, doc, nil
}

// DeleteDocument removes the document and its blob. A blob already
// missing from storage is tolerated.
func (uc *DocumentUseCase) DeleteDocument(ctx context.Context, id model.DocumentID) error {
	doc, err := uc.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	if doc.StorageKey != "" && uc.storageService != nil {
		if err := uc.storageService.Delete(ctx, doc.StorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return goerr.Wrap(err, "failed to delete document blob",
				goerr.V(DocumentIDKey, id),
				goerr.V("key", doc.StorageKey))
		}
	}

	if err := uc.repo.Document().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete document", goerr.V(DocumentIDKey, id))
	}

	recordAudit(ctx, uc.repo, types.AuditActionDeleteDocument, "document", string(id), map[string]any{
		"name": doc.Name,
	})

	return nil
}

// ReindexDocument rebuilds the embedding of a document from its stored
// text. A failed embedding marks the document failed so it shows up in
// the dashboard.
func (uc *DocumentUseCase) ReindexDocument(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	if uc.indexService == nil {
		return nil, goerr.New("document index is not configured")
	}

	doc, err := uc.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	embedding, err := uc.indexService.BuildEmbedding(ctx, doc)
	if err != nil {
		doc.Status = types.DocumentStatusFailed
		if _, updErr := uc.repo.Document().Update(ctx, doc); updErr != nil {
			errutil.Handle(ctx, updErr, "failed to mark document as failed")
		}
		return nil, goerr.Wrap(err, "failed to rebuild document embedding", goerr.V(DocumentIDKey, id))
	}

	doc.Embedding = embedding
	doc.Status = types.DocumentStatusIndexed

	updated, err := uc.repo.Document().Update(ctx, doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update document", goerr.V(DocumentIDKey, id))
	}

	recordAudit(ctx, uc.repo, types.AuditActionReindexDocument, "document", string(id), map[string]any{
		"name": updated.Name,
	})

	return updated, nil
}

// SearchDocuments returns the indexed documents most similar to the
// query with their similarity scores, most similar first
func (uc *DocumentUseCase) SearchDocuments(ctx context.Context, query string, limit int) ([]*model.ScoredDocument, error) {
	if uc.indexService == nil {
		return nil, goerr.New("document index is not configured")
	}
	if query == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "search query is required")
	}

	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	embedding, err := uc.indexService.EmbedQuery(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed search query")
	}

	hits, err := uc.repo.Document().FindByEmbedding(ctx, embedding, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search documents")
	}

	return hits, nil
}

// truncateText cuts s at the byte limit without splitting a rune
func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}

	cut := s[:max]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
