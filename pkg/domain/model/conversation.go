package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
)

// ConversationID is a UUID-based identifier for Conversation
type ConversationID string

// NewConversationID generates a new UUID v4 ConversationID
func NewConversationID() ConversationID {
	return ConversationID(uuid.New().String())
}

// TokenUsage accumulates token accounting for a conversation
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	Requests     int
}

// Add accumulates another usage sample
func (u *TokenUsage) Add(input, output int) {
	u.InputTokens += input
	u.OutputTokens += output
	u.Requests++
}

// Total returns input plus output tokens
func (u TokenUsage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Conversation represents one assistant chat thread
type Conversation struct {
	ID        ConversationID
	Title     string // first user message, truncated
	StartedBy string // email address
	Usage     TokenUsage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ConversationTitleLimit bounds the auto-generated conversation title
const ConversationTitleLimit = 80

// NewConversationTitle derives a title from the first user message
func NewConversationTitle(message string) string {
	title := message
	if len(title) > ConversationTitleLimit {
		title = title[:ConversationTitleLimit]
	}
	return title
}

// Message represents a single entry in a conversation. Tool messages
// record the agent's tool calls so a session can be replayed.
type Message struct {
	ConversationID ConversationID
	Seq            int // 1-origin position within the conversation
	Role           types.MessageRole
	Content        string
	ToolName       string // set for tool messages
	InputTokens    int
	OutputTokens   int
	CreatedAt      time.Time
}

// EstimateTokens approximates the token count of a text when the
// provider does not report usage. Four characters per token, minimum 1
// for non-empty text.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// Insight represents an analysis note the assistant recorded against a
// conversation, surfaced as a highlight by the UI.
type Insight struct {
	ID             string // UUID v7, time ordered
	ConversationID ConversationID
	Title          string
	Body           string
	RiskIDs        []int64 // risks the insight refers to
	CreatedAt      time.Time
}

// NewInsightID generates a time-ordered UUID v7 identifier
func NewInsightID() string {
	return uuid.Must(uuid.NewV7()).String()
}
