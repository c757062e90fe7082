package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/jungkj/riscura-sub000/pkg/usecase"
	"github.com/jungkj/riscura-sub000/pkg/utils/safe"
)

type documentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size"`
	Source      string    `json:"source"`
	SourceRef   string    `json:"source_ref,omitempty"`
	Status      string    `json:"status"`
	Tags        []string  `json:"tags,omitempty"`
	UploadedBy  string    `json:"uploaded_by,omitempty"`
	Text        string    `json:"text,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// newDocumentResponse maps a document for the API. The extracted text
// is only included when withText is set; list responses stay small.
func newDocumentResponse(doc *model.Document, withText bool) documentResponse {
	resp := documentResponse{
		ID:          string(doc.ID),
		Name:        doc.Name,
		ContentType: doc.ContentType,
		Size:        doc.Size,
		Source:      doc.Source.String(),
		SourceRef:   doc.SourceRef,
		Status:      doc.Status.String(),
		Tags:        doc.Tags,
		UploadedBy:  doc.UploadedBy,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if withText {
		resp.Text = doc.Text
	}
	return resp
}

func newDocumentResponses(docs []*model.Document) []documentResponse {
	resp := make([]documentResponse, len(docs))
	for i, doc := range docs {
		resp[i] = newDocumentResponse(doc, false)
	}
	return resp
}

// documentSearchHit is a search result with its similarity score
type documentSearchHit struct {
	documentResponse
	Score float64 `json:"score"`
}

func newDocumentSearchHits(hits []*model.ScoredDocument) []documentSearchHit {
	resp := make([]documentSearchHit, len(hits))
	for i, hit := range hits {
		resp[i] = documentSearchHit{
			documentResponse: newDocumentResponse(hit.Doc, false),
			Score:            hit.Score,
		}
	}
	return resp
}

func documentListHandler(uc *usecase.DocumentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := usecase.DocumentFilter{Tag: q.Get("tag")}

		if raw := q.Get("source"); raw != "" {
			source := types.DocumentSource(raw)
			if !source.IsValid() {
				handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "invalid source filter", goerr.V("source", raw)))
				return
			}
			filter.Source = &source
		}
		if raw := q.Get("status"); raw != "" {
			status, err := types.ParseDocumentStatus(raw)
			if err != nil {
				handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "invalid status filter", goerr.V("status", raw)))
				return
			}
			filter.Status = &status
		}

		docs, err := uc.ListDocuments(r.Context(), filter)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"documents": newDocumentResponses(docs),
		})
	}
}

// documentUploadHandler accepts a multipart upload with a "file" part
// and optional "name" and "tags" fields
func documentUploadHandler(uc *usecase.DocumentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(usecase.MaxUploadSize); err != nil {
			handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "invalid multipart form",
				goerr.V("reason", err.Error())))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "file part is required"))
			return
		}
		defer safe.Close(r.Context(), file)

		name := r.FormValue("name")
		if name == "" {
			name = header.Filename
		}

		contentType := header.Header.Get("Content-Type")

		var tags []string
		for _, raw := range r.MultipartForm.Value["tags"] {
			for _, tag := range strings.Split(raw, ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					tags = append(tags, tag)
				}
			}
		}

		doc, err := uc.UploadDocument(r.Context(), name, contentType, file, tags)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusCreated, newDocumentResponse(doc, false))
	}
}

func documentGetHandler(uc *usecase.DocumentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := model.DocumentID(chi.URLParam(r, "documentID"))

		doc, err := uc.GetDocument(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newDocumentResponse(doc, true))
	}
}

func documentDeleteHandler(uc *usecase.DocumentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := model.DocumentID(chi.URLParam(r, "documentID"))

		if err := uc.DeleteDocument(r.Context(), id); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// documentDownloadHandler streams the stored blob
func documentDownloadHandler(uc *usecase.DocumentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := model.DocumentID(chi.URLParam(r, "documentID"))

		rc, doc, err := uc.DownloadDocument(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		defer safe.Close(r.Context(), rc)

		if doc.ContentType != "" {
			w.Header().Set("Content-Type", doc.ContentType)
		} else {
			w.Header().Set("Content-Type", "application/octet-stream")
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name))
		if doc.Size > 0 {
			w.Header().Set("Content-Length", fmt.Sprintf("%d", doc.Size))
		}

		safe.Copy(r.Context(), w, rc)
	}
}

func documentReindexHandler(uc *usecase.DocumentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := model.DocumentID(chi.URLParam(r, "documentID"))

		doc, err := uc.ReindexDocument(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newDocumentResponse(doc, false))
	}
}

func documentSearchHandler(uc *usecase.DocumentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		limit, err := queryInt(r, "limit", 0)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		hits, err := uc.SearchDocuments(r.Context(), query, limit)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"documents": newDocumentSearchHits(hits),
		})
	}
}
