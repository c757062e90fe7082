package http_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/service/storage"
	"github.com/jungkj/riscura-sub000/pkg/usecase"
)

// mockIndexService returns canned embeddings keyed by document text or
// query string, falling back to a fixed vector
type mockIndexService struct {
	vectors  map[string][]float32
	embedErr error
	queryErr error
}

func (m *mockIndexService) BuildEmbedding(ctx context.Context, doc *model.Document) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.vectors[doc.Text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockIndexService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if v, ok := m.vectors[query]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func testStorage(t *testing.T) storage.Service {
	t.Helper()

	blobs, err := storage.NewLocal(t.TempDir())
	gt.NoError(t, err).Required()
	return blobs
}

// uploadDocument sends a multipart upload. The part carries an explicit
// Content-Type so text extraction kicks in for text uploads.
func uploadDocument(t *testing.T, handler http.Handler, filename, contentType, content, tags string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	gt.NoError(t, err).Required()
	_, err = io.WriteString(part, content)
	gt.NoError(t, err).Required()

	if tags != "" {
		gt.NoError(t, mw.WriteField("tags", tags)).Required()
	}
	gt.NoError(t, mw.Close()).Required()

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

type documentPayload struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ContentType string   `json:"content_type"`
	Size        int64    `json:"size"`
	Source      string   `json:"source"`
	Status      string   `json:"status"`
	Tags        []string `json:"tags"`
	UploadedBy  string   `json:"uploaded_by"`
	Text        string   `json:"text"`
}

func TestDocumentAPI_Upload(t *testing.T) {
	handler, _ := setupServer(t,
		usecase.WithStorage(testStorage(t)),
		usecase.WithIndex(&mockIndexService{}),
	)

	content := "All production data must be encrypted at rest."
	rec := uploadDocument(t, handler, "encryption-policy.txt", "text/plain", content, "policy, security")
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	var doc documentPayload
	parseJSON(t, rec, &doc)
	gt.Value(t, doc.ID).NotEqual("")
	gt.Value(t, doc.Name).Equal("encryption-policy.txt")
	gt.Value(t, doc.Status).Equal("indexed")
	gt.Value(t, doc.Source).Equal("upload")
	gt.Value(t, doc.Size).Equal(int64(len(content)))
	gt.Array(t, doc.Tags).Length(2).Has("policy")
	gt.Value(t, doc.UploadedBy).Equal("anonymous@localhost")
	// List-shaped responses omit the extracted text
	gt.Value(t, doc.Text).Equal("")

	t.Run("get includes extracted text", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/documents/"+doc.ID, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var got documentPayload
		parseJSON(t, rec, &got)
		gt.Value(t, got.Text).Equal(content)
	})

	t.Run("binary upload stays pending", func(t *testing.T) {
		rec := uploadDocument(t, handler, "soc2-report.pdf", "application/pdf", "%PDF-1.7 ...", "")
		gt.Value(t, rec.Code).Equal(http.StatusCreated)

		var doc documentPayload
		parseJSON(t, rec, &doc)
		gt.Value(t, doc.Status).Equal("pending")

		rec = doRequest(t, handler, http.MethodGet, "/api/documents/"+doc.ID, nil)
		var got documentPayload
		parseJSON(t, rec, &got)
		gt.Value(t, got.Text).Equal("")
	})

	t.Run("empty file", func(t *testing.T) {
		rec := uploadDocument(t, handler, "empty.txt", "text/plain", "", "")
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("missing file part", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		gt.NoError(t, mw.WriteField("tags", "policy")).Required()
		gt.NoError(t, mw.Close()).Required()

		req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("not multipart", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/documents", map[string]any{"name": "nope"})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestDocumentAPI_UploadWithoutStorage(t *testing.T) {
	handler, _ := setupServer(t)

	rec := uploadDocument(t, handler, "policy.txt", "text/plain", "some text", "")
	gt.Value(t, rec.Code).Equal(http.StatusInternalServerError)
}

func TestDocumentAPI_ListFilters(t *testing.T) {
	handler, _ := setupServer(t,
		usecase.WithStorage(testStorage(t)),
		usecase.WithIndex(&mockIndexService{}),
	)

	rec := uploadDocument(t, handler, "acceptable-use.md", "text/markdown", "# Acceptable use", "policy")
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	rec = uploadDocument(t, handler, "pentest-2026.txt", "text/plain", "Findings ...", "report")
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	type listResponse struct {
		Documents []documentPayload `json:"documents"`
	}

	t.Run("all", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/documents", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp listResponse
		parseJSON(t, rec, &resp)
		gt.Array(t, resp.Documents).Length(2)
	})

	t.Run("by tag", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/documents?tag=policy", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp listResponse
		parseJSON(t, rec, &resp)
		gt.Array(t, resp.Documents).Length(1).Required()
		gt.Value(t, resp.Documents[0].Name).Equal("acceptable-use.md")
	})

	t.Run("by status", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/documents?status=indexed", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp listResponse
		parseJSON(t, rec, &resp)
		gt.Array(t, resp.Documents).Length(2)
	})

	t.Run("invalid source filter", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/documents?source=carrier-pigeon", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/documents?status=lost", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestDocumentAPI_Download(t *testing.T) {
	handler, _ := setupServer(t,
		usecase.WithStorage(testStorage(t)),
		usecase.WithIndex(&mockIndexService{}),
	)

	content := "Visitor badges must be returned at the front desk."
	rec := uploadDocument(t, handler, "visitor-policy.txt", "text/plain", content, "")
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	var doc documentPayload
	parseJSON(t, rec, &doc)

	rec = doRequest(t, handler, http.MethodGet, "/api/documents/"+doc.ID+"/download", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, rec.Header().Get("Content-Type")).Equal("text/plain")
	gt.Value(t, rec.Header().Get("Content-Disposition")).Equal(`attachment; filename="visitor-policy.txt"`)
	gt.Value(t, rec.Body.String()).Equal(content)

	t.Run("unknown document", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/documents/no-such-id/download", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestDocumentAPI_Delete(t *testing.T) {
	handler, _ := setupServer(t,
		usecase.WithStorage(testStorage(t)),
		usecase.WithIndex(&mockIndexService{}),
	)

	rec := uploadDocument(t, handler, "old-policy.txt", "text/plain", "obsolete", "")
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	var doc documentPayload
	parseJSON(t, rec, &doc)

	rec = doRequest(t, handler, http.MethodDelete, "/api/documents/"+doc.ID, nil)
	gt.Value(t, rec.Code).Equal(http.StatusNoContent)

	rec = doRequest(t, handler, http.MethodGet, "/api/documents/"+doc.ID, nil)
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)

	t.Run("delete unknown document", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodDelete, "/api/documents/no-such-id", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestDocumentAPI_Search(t *testing.T) {
	encryptionText := "All production data must be encrypted at rest."
	leaveText := "Employees accrue leave at two days per month."

	idx := &mockIndexService{
		vectors: map[string][]float32{
			encryptionText:            {1, 0, 0},
			leaveText:                 {0, 1, 0},
			"encryption requirements": {0.9, 0.2, 0},
		},
	}
	handler, _ := setupServer(t,
		usecase.WithStorage(testStorage(t)),
		usecase.WithIndex(idx),
	)

	rec := uploadDocument(t, handler, "encryption-policy.txt", "text/plain", encryptionText, "")
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	rec = uploadDocument(t, handler, "leave-policy.txt", "text/plain", leaveText, "")
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	type searchHitPayload struct {
		documentPayload
		Score float64 `json:"score"`
	}
	type searchResponse struct {
		Documents []searchHitPayload `json:"documents"`
	}

	t.Run("most similar first with scores", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/documents/search?q=encryption+requirements", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp searchResponse
		parseJSON(t, rec, &resp)
		gt.Array(t, resp.Documents).Length(2).Required()
		gt.Value(t, resp.Documents[0].Name).Equal("encryption-policy.txt")
		gt.B(t, resp.Documents[0].Score > 0).True()
		gt.B(t, resp.Documents[0].Score > resp.Documents[1].Score).True()
	})

	t.Run("limit caps the hits", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/documents/search?q=encryption+requirements&limit=1", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp searchResponse
		parseJSON(t, rec, &resp)
		gt.Array(t, resp.Documents).Length(1).Required()
		gt.Value(t, resp.Documents[0].Name).Equal("encryption-policy.txt")
	})

	t.Run("query is required", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/documents/search", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("invalid limit", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/documents/search?q=x&limit=ten", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestDocumentAPI_SearchWithoutIndex(t *testing.T) {
	handler, _ := setupServer(t, usecase.WithStorage(testStorage(t)))

	rec := doRequest(t, handler, http.MethodGet, "/api/documents/search?q=anything", nil)
	gt.Value(t, rec.Code).Equal(http.StatusInternalServerError)
}

func TestDocumentAPI_Reindex(t *testing.T) {
	idx := &mockIndexService{embedErr: errors.New("embedding model offline")}
	handler, _ := setupServer(t,
		usecase.WithStorage(testStorage(t)),
		usecase.WithIndex(idx),
	)

	// The failed embedding is tolerated at upload time
	rec := uploadDocument(t, handler, "dr-plan.txt", "text/plain", "Recovery procedures ...", "")
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	var doc documentPayload
	parseJSON(t, rec, &doc)
	gt.Value(t, doc.Status).Equal("pending")

	// Once the model is back, reindex picks the document up
	idx.embedErr = nil
	rec = doRequest(t, handler, http.MethodPost, "/api/documents/"+doc.ID+"/reindex", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var reindexed documentPayload
	parseJSON(t, rec, &reindexed)
	gt.Value(t, reindexed.Status).Equal("indexed")

	t.Run("reindex unknown document", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/documents/no-such-id/reindex", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}
