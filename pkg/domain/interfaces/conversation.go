package interfaces

import (
	"context"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
)

// ConversationRepository defines the interface for assistant
// conversation persistence
type ConversationRepository interface {
	// Create creates a new conversation
	Create(ctx context.Context, conv *model.Conversation) (*model.Conversation, error)

	// Get retrieves a conversation by ID
	Get(ctx context.Context, id model.ConversationID) (*model.Conversation, error)

	// ListWithPagination retrieves conversations with pagination, newest first
	// Returns conversations, total count, and error
	ListWithPagination(ctx context.Context, limit, offset int) ([]*model.Conversation, int, error)

	// Update updates an existing conversation (title, token usage)
	Update(ctx context.Context, conv *model.Conversation) (*model.Conversation, error)

	// AddMessage appends a message to a conversation. Seq must be the
	// next position in the conversation.
	AddMessage(ctx context.Context, msg *model.Message) error

	// ListMessages retrieves all messages of a conversation in order
	ListMessages(ctx context.Context, id model.ConversationID) ([]*model.Message, error)

	// AddInsight records an insight against a conversation
	AddInsight(ctx context.Context, insight *model.Insight) error

	// ListInsights retrieves all insights of a conversation in order
	ListInsights(ctx context.Context, id model.ConversationID) ([]*model.Insight, error)

	// Delete deletes a conversation with its messages and insights
	Delete(ctx context.Context, id model.ConversationID) error
}
