package notion

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/m-mizutani/goerr/v2"
)

// maxBlockDepth caps recursive block fetches; Notion pages can nest
// toggles and lists arbitrarily deep
const maxBlockDepth = 10

const notionPageSize = 100

// client implements Service interface
type client struct {
	api *notionapi.Client
}

// New creates a new Notion service with the provided API token
func New(token string) (Service, error) {
	if token == "" {
		return nil, goerr.New("Notion API token is required")
	}

	return &client{
		api: notionapi.NewClient(
			notionapi.Token(token),
			notionapi.WithRetry(3), // Retry up to 3 times on rate limit (HTTP 429)
		),
	}, nil
}

// QueryDatabasePages iterates over every page of a database, yielding
// each page with its content already flattened to Markdown text. A
// page that fails to load yields an error and the iteration continues.
func (c *client) QueryDatabasePages(ctx context.Context, dbID string) iter.Seq2[*Page, error] {
	return func(yield func(*Page, error) bool) {
		req := &notionapi.DatabaseQueryRequest{PageSize: notionPageSize}

		for {
			resp, err := c.api.Database.Query(ctx, notionapi.DatabaseID(dbID), req)
			if err != nil {
				yield(nil, goerr.Wrap(err, "failed to query database", goerr.V("db_id", dbID)))
				return
			}

			for _, pageObj := range resp.Results {
				page, err := c.loadPage(ctx, pageObj.ID.String())
				if !yield(page, err) {
					return
				}
			}

			if !resp.HasMore {
				return
			}
			req.StartCursor = resp.NextCursor
		}
	}
}

// GetPage retrieves a single page with its content flattened to plain text
func (c *client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	return c.loadPage(ctx, pageID)
}

func (c *client) loadPage(ctx context.Context, pageID string) (*Page, error) {
	pageObj, err := c.api.Page.Get(ctx, notionapi.PageID(pageID))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get page", goerr.V("page_id", pageID))
	}

	blocks, err := c.fetchBlockTree(ctx, pageID, 0)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch page blocks", goerr.V("page_id", pageID))
	}

	return &Page{
		ID:             pageObj.ID.String(),
		Title:          pageTitle(pageObj.Properties),
		URL:            pageObj.URL,
		Text:           blocks.ToMarkdown(),
		CreatedTime:    time.Time(pageObj.CreatedTime),
		LastEditedTime: time.Time(pageObj.LastEditedTime),
	}, nil
}

// pageTitle finds the title property of a page
func pageTitle(props notionapi.Properties) string {
	for _, prop := range props {
		tp, ok := prop.(*notionapi.TitleProperty)
		if !ok {
			continue
		}

		var sb strings.Builder
		for _, rt := range tp.Title {
			sb.WriteString(rt.PlainText)
		}
		return strings.TrimSpace(sb.String())
	}
	return ""
}

// fetchBlockTree retrieves the children of a page or block, descending
// into nested blocks up to maxBlockDepth.
func (c *client) fetchBlockTree(ctx context.Context, blockID string, depth int) (Blocks, error) {
	var blocks Blocks
	pagination := &notionapi.Pagination{PageSize: notionPageSize}

	for {
		resp, err := c.api.Block.GetChildren(ctx, notionapi.BlockID(blockID), pagination)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get block children", goerr.V("block_id", blockID))
		}

		for _, blockObj := range resp.Results {
			block := Block{
				ID:      blockObj.GetID().String(),
				Type:    string(blockObj.GetType()),
				Content: blockContent(blockObj),
			}

			if blockObj.GetHasChildren() && depth < maxBlockDepth {
				children, err := c.fetchBlockTree(ctx, blockObj.GetID().String(), depth+1)
				if err != nil {
					return nil, goerr.Wrap(err, "failed to fetch child blocks",
						goerr.V("block_id", blockObj.GetID()), goerr.V("block_type", blockObj.GetType()))
				}
				block.Children = children
			}

			blocks = append(blocks, block)
		}

		if !resp.HasMore {
			return blocks, nil
		}
		pagination.StartCursor = notionapi.Cursor(resp.NextCursor)
	}
}

func richContent(rt []notionapi.RichText) map[string]interface{} {
	return map[string]interface{}{"rich_text": rt}
}

// blockContent extracts the renderable content of a block. Types
// without text content (dividers, unsupported types) yield nil.
func blockContent(b notionapi.Block) interface{} {
	switch v := b.(type) {
	case *notionapi.ParagraphBlock:
		return richContent(v.Paragraph.RichText)
	case *notionapi.Heading1Block:
		return richContent(v.Heading1.RichText)
	case *notionapi.Heading2Block:
		return richContent(v.Heading2.RichText)
	case *notionapi.Heading3Block:
		return richContent(v.Heading3.RichText)
	case *notionapi.BulletedListItemBlock:
		return richContent(v.BulletedListItem.RichText)
	case *notionapi.NumberedListItemBlock:
		return richContent(v.NumberedListItem.RichText)
	case *notionapi.QuoteBlock:
		return richContent(v.Quote.RichText)
	case *notionapi.CalloutBlock:
		return richContent(v.Callout.RichText)
	case *notionapi.ToggleBlock:
		return richContent(v.Toggle.RichText)
	case *notionapi.CodeBlock:
		m := richContent(v.Code.RichText)
		m["language"] = v.Code.Language
		return m
	case *notionapi.ToDoBlock:
		m := richContent(v.ToDo.RichText)
		m["checked"] = v.ToDo.Checked
		return m
	default:
		return nil
	}
}
