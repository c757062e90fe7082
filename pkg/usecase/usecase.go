package usecase

import (
	"github.com/m-mizutani/gollem"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model/config"
	"github.com/jungkj/riscura-sub000/pkg/service/github"
	"github.com/jungkj/riscura-sub000/pkg/service/index"
	"github.com/jungkj/riscura-sub000/pkg/service/notion"
	"github.com/jungkj/riscura-sub000/pkg/service/slack"
	"github.com/jungkj/riscura-sub000/pkg/service/storage"
)

// UseCases bundles all use cases behind a single entry point for the
// controllers and the CLI. Optional services (Slack, LLM, storage,
// ingestion sources) are wired through options; use cases degrade
// gracefully when they are absent.
type UseCases struct {
	repo           interfaces.Repository
	riskConfig     *config.RiskConfig
	workflowConfig *config.WorkflowConfig
	slackService   slack.Service
	storageService storage.Service
	indexService   index.Service
	llmClient      gollem.LLMClient
	notifyChannel  string

	notionService    notion.Service
	notionDatabaseID string
	githubService    github.Service
	githubOwner      string
	githubRepo       string
	githubLabel      string

	Risk          *RiskUseCase
	Control       *ControlUseCase
	Questionnaire *QuestionnaireUseCase
	Workflow      *WorkflowUseCase
	Document      *DocumentUseCase
	Assistant     *AssistantUseCase
	Metrics       *MetricsUseCase
	Audit         *AuditUseCase
	Ingest        *IngestUseCase
	Auth          AuthUseCaseInterface
}

type Option func(*UseCases)

// WithRiskConfig sets the risk scoring configuration
func WithRiskConfig(cfg *config.RiskConfig) Option {
	return func(uc *UseCases) {
		uc.riskConfig = cfg
	}
}

// WithWorkflowConfig sets the workflow template configuration
func WithWorkflowConfig(cfg *config.WorkflowConfig) Option {
	return func(uc *UseCases) {
		uc.workflowConfig = cfg
	}
}

// WithSlack sets the Slack service for channel management and notifications
func WithSlack(svc slack.Service) Option {
	return func(uc *UseCases) {
		uc.slackService = svc
	}
}

// WithNotifyChannel sets the Slack channel for broadcast notices
func WithNotifyChannel(channelID string) Option {
	return func(uc *UseCases) {
		uc.notifyChannel = channelID
	}
}

// WithStorage sets the blob storage backend for document contents
func WithStorage(svc storage.Service) Option {
	return func(uc *UseCases) {
		uc.storageService = svc
	}
}

// WithIndex sets the embedding service for document search
func WithIndex(svc index.Service) Option {
	return func(uc *UseCases) {
		uc.indexService = svc
	}
}

// WithLLM sets the LLM client for the assistant agent
func WithLLM(client gollem.LLMClient) Option {
	return func(uc *UseCases) {
		uc.llmClient = client
	}
}

// WithAuth sets the authentication use case
func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

// WithNotion sets the Notion client and the database to ingest
func WithNotion(svc notion.Service, databaseID string) Option {
	return func(uc *UseCases) {
		uc.notionService = svc
		uc.notionDatabaseID = databaseID
	}
}

// WithGitHub sets the GitHub client and the repository to ingest findings from
func WithGitHub(svc github.Service, owner, repo, label string) Option {
	return func(uc *UseCases) {
		uc.githubService = svc
		uc.githubOwner = owner
		uc.githubRepo = repo
		uc.githubLabel = label
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:           repo,
		riskConfig:     &config.RiskConfig{},
		workflowConfig: &config.WorkflowConfig{},
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Risk = NewRiskUseCase(repo, uc.riskConfig, uc.slackService)
	uc.Control = NewControlUseCase(repo)
	uc.Questionnaire = NewQuestionnaireUseCase(repo)
	uc.Workflow = NewWorkflowUseCase(repo, uc.workflowConfig)
	uc.Document = NewDocumentUseCase(repo, uc.storageService, uc.indexService)
	uc.Assistant = NewAssistantUseCase(repo, uc.llmClient, uc.indexService, uc.riskConfig)
	uc.Metrics = NewMetricsUseCase(repo, uc.riskConfig)
	uc.Audit = NewAuditUseCase(repo)
	uc.Ingest = NewIngestUseCase(repo, uc.indexService, uc.slackService, uc.notifyChannel, IngestSources{
		Notion:           uc.notionService,
		NotionDatabaseID: uc.notionDatabaseID,
		GitHub:           uc.githubService,
		GitHubOwner:      uc.githubOwner,
		GitHubRepo:       uc.githubRepo,
		GitHubLabel:      uc.githubLabel,
	})

	return uc
}

// RiskConfig exposes the scoring configuration so controllers can
// decorate risks with computed score and severity.
func (uc *UseCases) RiskConfig() *config.RiskConfig {
	return uc.riskConfig
}
