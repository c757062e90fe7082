package index

import (
	"context"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/service/llm"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// maxEmbeddingInput caps the text sent to the embedding model. The
// Gemini embedding models reject inputs beyond ~2k tokens, so longer
// document bodies are truncated before embedding.
const maxEmbeddingInput = 8192

// client implements Service interface
type client struct {
	llmClient gollem.LLMClient
}

// New creates an index service with the provided LLM client
func New(llmClient gollem.LLMClient) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	return &client{llmClient: llmClient}, nil
}

// BuildEmbedding returns the embedding for a document's searchable text
func (c *client) BuildEmbedding(ctx context.Context, doc *model.Document) ([]float32, error) {
	if doc == nil {
		return nil, goerr.New("document is required")
	}

	input := buildEmbeddingInput(doc)
	if input == "" {
		return nil, goerr.New("document has no text to embed", goerr.V("documentID", doc.ID))
	}

	embedding, err := c.embed(ctx, input)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build document embedding", goerr.V("documentID", doc.ID))
	}
	return embedding, nil
}

// EmbedQuery returns the embedding for a search query
func (c *client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, goerr.New("search query is required")
	}

	embedding, err := c.embed(ctx, truncateToMaxBytes(query, maxEmbeddingInput))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed search query")
	}
	return embedding, nil
}

// buildEmbeddingInput assembles the text representing a document for
// vector search: name, tags and body. Documents without extracted text
// (binary uploads) are still searchable by name and tags.
func buildEmbeddingInput(doc *model.Document) string {
	var sb strings.Builder
	sb.WriteString(doc.Name)

	if len(doc.Tags) > 0 {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(doc.Tags, " "))
	}
	if doc.Text != "" {
		sb.WriteString("\n\n")
		sb.WriteString(doc.Text)
	}

	return truncateToMaxBytes(strings.TrimSpace(sb.String()), maxEmbeddingInput)
}

// embed calls the embedding model with retry and converts the result to float32
func (c *client) embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := llm.Retry(ctx, "generate embedding", func(ctx context.Context) ([][]float64, error) {
		return c.llmClient.GenerateEmbedding(ctx, model.EmbeddingDimension, []string{text})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding")
	}

	if len(embeddings) == 0 {
		return nil, goerr.New("no embedding returned")
	}

	result := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		result[i] = float32(v)
	}
	return result, nil
}

// ExtractText returns the plain text of data when the content type is
// text-based. The second return value reports whether extraction is
// supported for the content type.
func ExtractText(contentType string, data []byte) (string, bool) {
	if !IsTextContent(contentType) {
		return "", false
	}
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

// IsTextContent reports whether plain text can be extracted from the
// given content type. Markdown and JSON uploads are treated as text.
func IsTextContent(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	if strings.HasPrefix(mt, "text/") {
		return true
	}

	switch mt {
	case "application/json", "application/xml", "application/x-yaml", "application/yaml":
		return true
	}
	return false
}

// truncateToMaxBytes cuts s at the byte limit without splitting a rune
func truncateToMaxBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}

	cut := s[:max]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
