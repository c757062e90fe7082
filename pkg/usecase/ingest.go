package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	goslack "github.com/slack-go/slack"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/jungkj/riscura-sub000/pkg/service/github"
	"github.com/jungkj/riscura-sub000/pkg/service/index"
	"github.com/jungkj/riscura-sub000/pkg/service/notion"
	"github.com/jungkj/riscura-sub000/pkg/service/slack"
	"github.com/jungkj/riscura-sub000/pkg/utils/errutil"
)

// Ingestion source selectors
const (
	IngestSourceNotion = "notion"
	IngestSourceGitHub = "github"
	IngestSourceAll    = "all"
)

// IngestSources bundles the configured external content sources
type IngestSources struct {
	Notion           notion.Service
	NotionDatabaseID string
	GitHub           github.Service
	GitHubOwner      string
	GitHubRepo       string
	GitHubLabel      string
}

// IngestUseCase pulls external content into the document store
type IngestUseCase struct {
	repo          interfaces.Repository
	indexService  index.Service
	slackService  slack.Service
	notifyChannel string
	sources       IngestSources
}

func NewIngestUseCase(repo interfaces.Repository, indexService index.Service, slackService slack.Service, notifyChannel string, sources IngestSources) *IngestUseCase {
	return &IngestUseCase{
		repo:          repo,
		indexService:  indexService,
		slackService:  slackService,
		notifyChannel: notifyChannel,
		sources:       sources,
	}
}

// IngestResult counts the outcome of one ingestion run
type IngestResult struct {
	Created int
	Updated int
	Skipped int
	Failed  int
}

// Ingest pulls documents from the selected source. Per-document
// failures are logged and counted, not fatal; an unreachable source
// aborts the run.
func (uc *IngestUseCase) Ingest(ctx context.Context, source string) (*IngestResult, error) {
	result := &IngestResult{}

	switch source {
	case IngestSourceNotion:
		if err := uc.ingestNotion(ctx, result); err != nil {
			return nil, err
		}
	case IngestSourceGitHub:
		if err := uc.ingestGitHub(ctx, result); err != nil {
			return nil, err
		}
	case IngestSourceAll, "":
		if !uc.notionConfigured() && !uc.githubConfigured() {
			return nil, goerr.New("no ingestion source is configured")
		}
		if uc.notionConfigured() {
			if err := uc.ingestNotion(ctx, result); err != nil {
				return nil, err
			}
		}
		if uc.githubConfigured() {
			if err := uc.ingestGitHub(ctx, result); err != nil {
				return nil, err
			}
		}
		source = IngestSourceAll
	default:
		return nil, goerr.Wrap(ErrInvalidInput, "unknown ingestion source",
			goerr.V("source", source))
	}

	recordAudit(ctx, uc.repo, types.AuditActionIngestDocuments, "ingestion", source, map[string]any{
		"created": result.Created,
		"updated": result.Updated,
		"skipped": result.Skipped,
		"failed":  result.Failed,
	})

	if result.Created+result.Updated > 0 {
		uc.postIngestNotice(ctx, source, result)
	}

	return result, nil
}

func (uc *IngestUseCase) notionConfigured() bool {
	return uc.sources.Notion != nil && uc.sources.NotionDatabaseID != ""
}

func (uc *IngestUseCase) githubConfigured() bool {
	return uc.sources.GitHub != nil && uc.sources.GitHubOwner != "" && uc.sources.GitHubRepo != ""
}

func (uc *IngestUseCase) ingestNotion(ctx context.Context, result *IngestResult) error {
	if !uc.notionConfigured() {
		return goerr.New("Notion ingestion is not configured")
	}

	for page, err := range uc.sources.Notion.QueryDatabasePages(ctx, uc.sources.NotionDatabaseID) {
		if err != nil {
			errutil.Handle(ctx, err, "failed to fetch Notion pages")
			result.Failed++
			break
		}

		doc := &model.Document{
			Name:        page.Title,
			ContentType: "text/markdown",
			Source:      types.DocumentSourceNotion,
			SourceRef:   page.URL,
			Text:        truncateText(page.Text, maxIndexedTextBytes),
		}
		uc.upsertDocument(ctx, doc, result)
	}

	return nil
}

func (uc *IngestUseCase) ingestGitHub(ctx context.Context, result *IngestResult) error {
	if !uc.githubConfigured() {
		return goerr.New("GitHub ingestion is not configured")
	}

	for finding, err := range uc.sources.GitHub.FetchFindings(ctx, uc.sources.GitHubOwner, uc.sources.GitHubRepo, uc.sources.GitHubLabel) {
		if err != nil {
			errutil.Handle(ctx, err, "failed to fetch GitHub findings")
			result.Failed++
			break
		}

		doc := &model.Document{
			Name:        finding.Title,
			ContentType: "text/markdown",
			Source:      types.DocumentSourceGitHub,
			SourceRef:   finding.URL,
			Text:        truncateText(buildFindingText(finding), maxIndexedTextBytes),
			Tags:        finding.Labels,
		}
		uc.upsertDocument(ctx, doc, result)
	}

	return nil
}

// upsertDocument creates, refreshes or skips one ingested document.
// The content hash decides whether the source changed since the last
// run.
func (uc *IngestUseCase) upsertDocument(ctx context.Context, doc *model.Document, result *IngestResult) {
	if doc.SourceRef == "" {
		errutil.Handle(ctx, goerr.New("ingested document has no source reference", goerr.V("name", doc.Name)), "skipping document")
		result.Failed++
		return
	}

	hash := sha256.Sum256([]byte(doc.Text))
	doc.ContentHash = hex.EncodeToString(hash[:])
	doc.Size = int64(len(doc.Text))

	existing, err := uc.repo.Document().FindBySourceRef(ctx, doc.SourceRef)
	if err != nil {
		errutil.Handle(ctx, err, "failed to look up document by source reference")
		result.Failed++
		return
	}

	if existing != nil && existing.ContentHash == doc.ContentHash {
		result.Skipped++
		return
	}

	doc.Status = types.DocumentStatusPending
	if uc.indexService != nil && doc.Text != "" {
		embedding, err := uc.indexService.BuildEmbedding(ctx, doc)
		if err != nil {
			errutil.Handle(ctx, err, "failed to build embedding for ingested document")
		} else {
			doc.Embedding = embedding
			doc.Status = types.DocumentStatusIndexed
		}
	}

	if existing == nil {
		if _, err := uc.repo.Document().Create(ctx, doc); err != nil {
			errutil.Handle(ctx, err, "failed to create ingested document")
			result.Failed++
			return
		}
		result.Created++
		return
	}

	existing.Name = doc.Name
	existing.ContentType = doc.ContentType
	existing.Size = doc.Size
	existing.Text = doc.Text
	existing.ContentHash = doc.ContentHash
	existing.Embedding = doc.Embedding
	existing.Status = doc.Status
	existing.Tags = doc.Tags

	if _, err := uc.repo.Document().Update(ctx, existing); err != nil {
		errutil.Handle(ctx, err, "failed to update ingested document")
		result.Failed++
		return
	}
	result.Updated++
}

// buildFindingText flattens a GitHub finding and its comments to
// markdown
func buildFindingText(finding *github.Finding) string {
	var sb strings.Builder
	sb.WriteString(finding.Body)

	if len(finding.Comments) > 0 {
		sb.WriteString("\n\n## Comments\n")
		for _, c := range finding.Comments {
			sb.WriteString(fmt.Sprintf("\n**%s** (%s):\n\n%s\n", c.Author, c.CreatedAt.Format("2006-01-02"), c.Body))
		}
	}

	return sb.String()
}

// postIngestNotice posts a run summary to the notification channel
// (best-effort).
func (uc *IngestUseCase) postIngestNotice(ctx context.Context, source string, result *IngestResult) {
	if uc.slackService == nil || uc.notifyChannel == "" {
		return
	}

	fallback := fmt.Sprintf("Document ingestion from %s: %d created, %d updated, %d skipped, %d failed",
		source, result.Created, result.Updated, result.Skipped, result.Failed)

	fields := []*goslack.TextBlockObject{
		goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("*Source:*\n%s", source), false, false),
		goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("*Created:*\n%d", result.Created), false, false),
		goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("*Updated:*\n%d", result.Updated), false, false),
		goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("*Skipped:*\n%d", result.Skipped), false, false),
	}
	if result.Failed > 0 {
		fields = append(fields, goslack.NewTextBlockObject(goslack.MarkdownType,
			fmt.Sprintf("*Failed:*\n%d", result.Failed), false, false))
	}

	blocks := []goslack.Block{
		goslack.NewHeaderBlock(
			goslack.NewTextBlockObject(goslack.PlainTextType, "📥 Document ingestion completed", true, false),
		),
		goslack.NewSectionBlock(nil, fields, nil),
	}

	if _, err := uc.slackService.PostMessage(ctx, uc.notifyChannel, blocks, fallback); err != nil {
		errutil.Handle(ctx, err, "failed to post ingestion summary to Slack")
	}
}
