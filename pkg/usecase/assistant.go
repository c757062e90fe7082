package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/jungkj/riscura-sub000/pkg/agent/tool"
	"github.com/jungkj/riscura-sub000/pkg/agent/tool/core"
	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/model/auth"
	"github.com/jungkj/riscura-sub000/pkg/domain/model/config"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/jungkj/riscura-sub000/pkg/service/index"
	"github.com/jungkj/riscura-sub000/pkg/service/llm"
	"github.com/jungkj/riscura-sub000/pkg/utils/logging"
)

//go:embed prompt/agent_system.md
var agentSystemPromptTmpl string

var agentSystemPrompt = template.Must(template.New("agent_system").Parse(agentSystemPromptTmpl))

// DefaultConversationPageSize is the conversation listing page size
// when the caller does not ask for a specific count
const DefaultConversationPageSize = 20

// AssistantUseCase runs the register-aware AI assistant
type AssistantUseCase struct {
	repo         interfaces.Repository
	llmClient    gollem.LLMClient
	indexService index.Service
	riskConfig   *config.RiskConfig
}

func NewAssistantUseCase(repo interfaces.Repository, llmClient gollem.LLMClient, indexService index.Service, riskConfig *config.RiskConfig) *AssistantUseCase {
	return &AssistantUseCase{
		repo:         repo,
		llmClient:    llmClient,
		indexService: indexService,
		riskConfig:   riskConfig,
	}
}

// CreateConversation starts an empty conversation. The title is set
// from the first chat message.
func (uc *AssistantUseCase) CreateConversation(ctx context.Context) (*model.Conversation, error) {
	conv := &model.Conversation{
		StartedBy: auth.ActorFromContext(ctx),
	}

	created, err := uc.repo.Conversation().Create(ctx, conv)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create conversation")
	}

	return created, nil
}

// ConversationDetail bundles a conversation with its messages and
// insights
type ConversationDetail struct {
	Conversation *model.Conversation
	Messages     []*model.Message
	Insights     []*model.Insight
}

// GetConversation returns a conversation with its full transcript
func (uc *AssistantUseCase) GetConversation(ctx context.Context, id model.ConversationID) (*ConversationDetail, error) {
	conv, err := uc.repo.Conversation().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrConversationNotFound, "conversation not found", goerr.V(ConversationIDKey, id))
	}

	messages, err := uc.repo.Conversation().ListMessages(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list messages", goerr.V(ConversationIDKey, id))
	}

	insights, err := uc.repo.Conversation().ListInsights(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list insights", goerr.V(ConversationIDKey, id))
	}

	return &ConversationDetail{
		Conversation: conv,
		Messages:     messages,
		Insights:     insights,
	}, nil
}

// ListConversations returns conversations newest first with the total
// count
func (uc *AssistantUseCase) ListConversations(ctx context.Context, limit, offset int) ([]*model.Conversation, int, error) {
	if limit <= 0 {
		limit = DefaultConversationPageSize
	}
	if offset < 0 {
		offset = 0
	}

	conversations, total, err := uc.repo.Conversation().ListWithPagination(ctx, limit, offset)
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to list conversations")
	}

	return conversations, total, nil
}

// DeleteConversation removes a conversation with its messages and
// insights
func (uc *AssistantUseCase) DeleteConversation(ctx context.Context, id model.ConversationID) error {
	if _, err := uc.repo.Conversation().Get(ctx, id); err != nil {
		return goerr.Wrap(ErrConversationNotFound, "conversation not found", goerr.V(ConversationIDKey, id))
	}

	if err := uc.repo.Conversation().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete conversation", goerr.V(ConversationIDKey, id))
	}

	return nil
}

// ChatResult is the outcome of one assistant exchange
type ChatResult struct {
	Reply     string
	ToolCalls []string // tool names in call order
}

// Chat sends one user message through the agent. The agent sees the
// register through its tools and the transcript through the system
// prompt; the exchange is persisted before returning.
func (uc *AssistantUseCase) Chat(ctx context.Context, conversationID model.ConversationID, message string) (*ChatResult, error) {
	if uc.llmClient == nil {
		return nil, goerr.New("assistant is not configured")
	}
	if message == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "message is required")
	}

	conv, err := uc.repo.Conversation().Get(ctx, conversationID)
	if err != nil {
		return nil, goerr.Wrap(ErrConversationNotFound, "conversation not found", goerr.V(ConversationIDKey, conversationID))
	}

	history, err := uc.repo.Conversation().ListMessages(ctx, conversationID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list messages", goerr.V(ConversationIDKey, conversationID))
	}

	systemPrompt := uc.buildSystemPrompt(history)
	tools := core.New(uc.repo, uc.indexService, uc.riskConfig, conversationID)

	// Tool progress updates go to the log; the HTTP layer has no
	// streaming channel.
	ctx = tool.WithUpdate(ctx, func(ctx context.Context, message string) {
		logging.From(ctx).Debug("tool progress", "message", message)
	})

	trace := &toolTrace{}
	agent := gollem.New(uc.llmClient,
		gollem.WithSystemPrompt(systemPrompt),
		gollem.WithTools(tools...),
		gollem.WithToolMiddleware(
			func(next gollem.ToolHandler) gollem.ToolHandler {
				return func(ctx context.Context, req *gollem.ToolExecRequest) (*gollem.ToolExecResponse, error) {
					logger := logging.From(ctx)
					started := time.Now()
					trace.add(req.Tool.Name)
					resp, err := next(ctx, req)
					if resp != nil && resp.Error != nil {
						logger.Warn("tool execution failed",
							"tool", req.Tool.Name,
							"error", resp.Error.Error(),
						)
					} else {
						logger.Debug("tool executed",
							"tool", req.Tool.Name,
							"elapsed", time.Since(started),
						)
					}
					return resp, err
				}
			},
		),
	)

	resp, err := llm.Retry(ctx, "assistant chat", func(ctx context.Context) (*gollem.ExecuteResponse, error) {
		return agent.Execute(ctx, gollem.Text(message))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to execute assistant agent",
			goerr.V(ConversationIDKey, conversationID))
	}

	reply := strings.Join(resp.Texts, "\n")
	inputTokens := model.EstimateTokens(message)
	outputTokens := model.EstimateTokens(reply)

	seq := len(history)
	exchange := []*model.Message{
		{
			ConversationID: conversationID,
			Role:           types.MessageRoleUser,
			Content:        message,
			InputTokens:    inputTokens,
		},
	}
	for _, name := range trace.names() {
		exchange = append(exchange, &model.Message{
			ConversationID: conversationID,
			Role:           types.MessageRoleTool,
			ToolName:       name,
		})
	}
	exchange = append(exchange, &model.Message{
		ConversationID: conversationID,
		Role:           types.MessageRoleAssistant,
		Content:        reply,
		OutputTokens:   outputTokens,
	})

	for _, msg := range exchange {
		seq++
		msg.Seq = seq
		if err := uc.repo.Conversation().AddMessage(ctx, msg); err != nil {
			return nil, goerr.Wrap(err, "failed to persist message",
				goerr.V(ConversationIDKey, conversationID),
				goerr.V("seq", msg.Seq))
		}
	}

	if conv.Title == "" {
		conv.Title = model.NewConversationTitle(message)
	}
	conv.Usage.Add(inputTokens, outputTokens)

	if _, err := uc.repo.Conversation().Update(ctx, conv); err != nil {
		return nil, goerr.Wrap(err, "failed to update conversation",
			goerr.V(ConversationIDKey, conversationID))
	}

	return &ChatResult{
		Reply:     reply,
		ToolCalls: trace.names(),
	}, nil
}

// toolTrace records tool call names across the agent loop. The agent
// may run tools concurrently, so access is guarded.
type toolTrace struct {
	mu    sync.Mutex
	calls []string
}

func (t *toolTrace) add(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, name)
}

func (t *toolTrace) names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.calls...)
}

// agentPromptMessage represents one transcript entry for the system
// prompt template
type agentPromptMessage struct {
	Role     string
	ToolName string
	Content  string
}

// agentPromptScale represents one likelihood/impact level for the
// template
type agentPromptScale struct {
	ID    string
	Name  string
	Score int
}

// agentPromptData holds all data for the agent system prompt template
type agentPromptData struct {
	CurrentTime string
	Categories  []string
	Likelihood  []agentPromptScale
	Impact      []agentPromptScale
	Messages    []agentPromptMessage
}

func (uc *AssistantUseCase) buildSystemPrompt(history []*model.Message) string {
	data := agentPromptData{
		CurrentTime: time.Now().UTC().Format(time.RFC3339),
	}

	for _, cat := range uc.riskConfig.Categories {
		data.Categories = append(data.Categories, fmt.Sprintf("%s (%s)", cat.ID, cat.Name))
	}
	for _, l := range uc.riskConfig.Likelihood {
		data.Likelihood = append(data.Likelihood, agentPromptScale{ID: l.ID, Name: l.Name, Score: l.Score})
	}
	for _, i := range uc.riskConfig.Impact {
		data.Impact = append(data.Impact, agentPromptScale{ID: i.ID, Name: i.Name, Score: i.Score})
	}

	for _, msg := range history {
		data.Messages = append(data.Messages, agentPromptMessage{
			Role:     msg.Role.String(),
			ToolName: msg.ToolName,
			Content:  msg.Content,
		})
	}

	var buf bytes.Buffer
	if err := agentSystemPrompt.Execute(&buf, data); err != nil {
		// Template execution should not fail with valid data; return fallback
		return "You are the AI assistant of a risk management platform. Use your tools to answer from the actual register."
	}

	return buf.String()
}
