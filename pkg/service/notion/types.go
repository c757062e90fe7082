package notion

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/jomei/notionapi"
)

// Service provides interface to Notion API
type Service interface {
	// QueryDatabasePages retrieves all pages of a database
	// Returns an iterator that yields Page and error pairs
	QueryDatabasePages(ctx context.Context, dbID string) iter.Seq2[*Page, error]

	// GetPage retrieves a single page with its content flattened to plain text
	GetPage(ctx context.Context, pageID string) (*Page, error)
}

// Page represents a Notion page with its content flattened to plain text
type Page struct {
	ID             string
	Title          string
	URL            string
	Text           string
	CreatedTime    time.Time
	LastEditedTime time.Time
}

// Block represents a Notion block with recursive children
type Block struct {
	ID       string
	Type     string
	Content  interface{}
	Children Blocks
}

// Blocks is a slice of Block with helper methods
type Blocks []Block

// ToMarkdown renders the block tree as Markdown. Nested blocks are
// indented two spaces per level, and numbered lists restart whenever
// the run of numbered_list_item siblings is broken.
func (b Blocks) ToMarkdown() string {
	var sb strings.Builder
	b.render(&sb, 0)
	return sb.String()
}

func (b Blocks) render(w *strings.Builder, depth int) {
	pad := strings.Repeat("  ", depth)

	// Numbering is local to each run of consecutive numbered items
	// within this slice, so a plain counter is enough.
	counter := 0

	for i, block := range b {
		switch block.Type {
		case "heading_1":
			fmt.Fprintf(w, "%s# %s\n", pad, richTextOf(block.Content))

		case "heading_2":
			fmt.Fprintf(w, "%s## %s\n", pad, richTextOf(block.Content))

		case "heading_3":
			fmt.Fprintf(w, "%s### %s\n", pad, richTextOf(block.Content))

		case "bulleted_list_item":
			fmt.Fprintf(w, "%s- %s\n", pad, richTextOf(block.Content))

		case "numbered_list_item":
			if i == 0 || b[i-1].Type != "numbered_list_item" {
				counter = 1
			} else {
				counter++
			}
			fmt.Fprintf(w, "%s%d. %s\n", pad, counter, richTextOf(block.Content))

		case "quote", "callout":
			fmt.Fprintf(w, "%s> %s\n", pad, richTextOf(block.Content))

		case "divider":
			fmt.Fprintf(w, "%s---\n", pad)

		case "code":
			m, ok := block.Content.(map[string]interface{})
			if !ok {
				break
			}
			lang, _ := m["language"].(string)
			fmt.Fprintf(w, "%s```%s\n%s%s\n%s```\n", pad, lang, pad, richTextOf(m), pad)

		case "to_do":
			m, ok := block.Content.(map[string]interface{})
			if !ok {
				break
			}
			box := "[ ]"
			if checked, _ := m["checked"].(bool); checked {
				box = "[x]"
			}
			fmt.Fprintf(w, "%s- %s %s\n", pad, box, richTextOf(m))

		case "toggle":
			fmt.Fprintf(w, "%s<details><summary>%s</summary>\n", pad, richTextOf(block.Content))
			block.Children.render(w, depth+1)
			fmt.Fprintf(w, "%s</details>\n", pad)
			continue // children already rendered inside the details tag

		default:
			// Unsupported block types degrade to their plain text
			if text := richTextOf(block.Content); text != "" {
				fmt.Fprintf(w, "%s%s\n", pad, text)
			}
		}

		if len(block.Children) > 0 {
			block.Children.render(w, depth+1)
		}
	}
}

// richTextOf extracts the rendered text from a block's content, which
// may be a property map holding a rich text array or the array itself.
func richTextOf(content interface{}) string {
	if m, ok := content.(map[string]interface{}); ok {
		for _, key := range []string{"rich_text", "text"} {
			if v, ok := m[key]; ok {
				return joinSpans(v)
			}
		}
	}
	return joinSpans(content)
}

func joinSpans(v interface{}) string {
	var spans []notionapi.RichText

	switch rt := v.(type) {
	case []notionapi.RichText:
		spans = rt
	case []interface{}:
		for _, item := range rt {
			if span, ok := item.(notionapi.RichText); ok {
				spans = append(spans, span)
			}
		}
	}

	var sb strings.Builder
	for _, span := range spans {
		sb.WriteString(renderSpan(span))
	}
	return sb.String()
}

// renderSpan converts a single rich text span to Markdown, applying
// annotation markers inside-out and the link wrapper last.
func renderSpan(rt notionapi.RichText) string {
	text := rt.PlainText

	if a := rt.Annotations; a != nil {
		marks := []struct {
			on   bool
			mark string
		}{
			{a.Bold, "**"},
			{a.Italic, "*"},
			{a.Code, "`"},
			{a.Strikethrough, "~~"},
		}
		for _, m := range marks {
			if m.on {
				text = m.mark + text + m.mark
			}
		}
	}

	if rt.Href != "" {
		text = fmt.Sprintf("[%s](%s)", text, rt.Href)
	}

	return text
}
