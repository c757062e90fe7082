package core

import (
	"context"
	"fmt"

	"github.com/jungkj/riscura-sub000/pkg/agent/tool"
	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/service/index"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// snippetLength bounds the document text returned per search hit
const snippetLength = 300

// searchDocumentsTool searches indexed documents using vector similarity
type searchDocumentsTool struct {
	repo  interfaces.Repository
	index index.Service
}

func (t *searchDocumentsTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "core__search_documents",
		Description: "Search indexed documents (policies, evidence, findings) using semantic (vector) similarity for the given query",
		Parameters: map[string]*gollem.Parameter{
			"query": {
				Type:        gollem.TypeString,
				Description: "Search query text",
				Required:    true,
			},
			"limit": {
				Type:        gollem.TypeInteger,
				Description: "Maximum number of results to return (default: 5)",
				Required:    false,
			},
		},
	}
}

func (t *searchDocumentsTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	tool.Update(ctx, fmt.Sprintf("Searching documents: %s", query))

	limit := 5
	if v, err := extractInt64(args, "limit"); err == nil && v > 0 {
		limit = int(v)
	}

	embedding, err := t.index.EmbedQuery(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed search query",
			goerr.V("query", query),
		)
	}

	results, err := t.repo.Document().FindByEmbedding(ctx, embedding, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search documents by embedding",
			goerr.V("limit", limit),
		)
	}

	items := make([]map[string]any, len(results))
	for i, hit := range results {
		items[i] = map[string]any{
			"id":      string(hit.Doc.ID),
			"name":    hit.Doc.Name,
			"source":  hit.Doc.Source.String(),
			"tags":    hit.Doc.Tags,
			"score":   hit.Score,
			"snippet": snippet(hit.Doc.Text, snippetLength),
		}
	}
	return map[string]any{"documents": items}, nil
}

// snippet returns the first n runes of s, with an ellipsis when truncated
func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
