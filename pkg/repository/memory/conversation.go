package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type conversationRepository struct {
	mu            sync.RWMutex
	conversations map[model.ConversationID]*model.Conversation
	messages      map[model.ConversationID][]*model.Message
	insights      map[model.ConversationID][]*model.Insight
}

func newConversationRepository() *conversationRepository {
	return &conversationRepository{
		conversations: make(map[model.ConversationID]*model.Conversation),
		messages:      make(map[model.ConversationID][]*model.Message),
		insights:      make(map[model.ConversationID][]*model.Insight),
	}
}

// copyConversation creates a copy of a conversation
func copyConversation(c *model.Conversation) *model.Conversation {
	copied := *c
	return &copied
}

// copyMessage creates a copy of a message
func copyMessage(m *model.Message) *model.Message {
	copied := *m
	return &copied
}

// copyInsight creates a deep copy of an insight
func copyInsight(i *model.Insight) *model.Insight {
	copied := *i
	if i.RiskIDs != nil {
		copied.RiskIDs = make([]int64, len(i.RiskIDs))
		copy(copied.RiskIDs, i.RiskIDs)
	}
	return &copied
}

func (r *conversationRepository) Create(ctx context.Context, conv *model.Conversation) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyConversation(conv)
	if created.ID == "" {
		created.ID = model.NewConversationID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.conversations[created.ID] = created
	return copyConversation(created), nil
}

func (r *conversationRepository) Get(ctx context.Context, id model.ConversationID) (*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, exists := r.conversations[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("id", id))
	}

	return copyConversation(conv), nil
}

func (r *conversationRepository) ListWithPagination(ctx context.Context, limit, offset int) ([]*model.Conversation, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*model.Conversation, 0, len(r.conversations))
	for _, conv := range r.conversations {
		all = append(all, copyConversation(conv))
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	totalCount := len(all)

	if offset >= len(all) {
		return []*model.Conversation{}, totalCount, nil
	}

	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	return all[offset:end], totalCount, nil
}

func (r *conversationRepository) Update(ctx context.Context, conv *model.Conversation) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.conversations[conv.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("id", conv.ID))
	}

	updated := copyConversation(conv)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.conversations[updated.ID] = updated
	return copyConversation(updated), nil
}

func (r *conversationRepository) AddMessage(ctx context.Context, msg *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conversations[msg.ConversationID]; !exists {
		return goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("id", msg.ConversationID))
	}
	if msg.Seq < 1 {
		return goerr.New("message seq must be positive", goerr.V("seq", msg.Seq))
	}
	for _, m := range r.messages[msg.ConversationID] {
		if m.Seq == msg.Seq {
			return goerr.New("message seq already used",
				goerr.V("id", msg.ConversationID), goerr.V("seq", msg.Seq))
		}
	}

	added := copyMessage(msg)
	if added.CreatedAt.IsZero() {
		added.CreatedAt = time.Now().UTC()
	}
	r.messages[msg.ConversationID] = append(r.messages[msg.ConversationID], added)

	return nil
}

func (r *conversationRepository) ListMessages(ctx context.Context, id model.ConversationID) ([]*model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.conversations[id]; !exists {
		return nil, goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("id", id))
	}

	msgs := r.messages[id]
	result := make([]*model.Message, 0, len(msgs))
	for _, m := range msgs {
		result = append(result, copyMessage(m))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Seq < result[j].Seq
	})

	return result, nil
}

func (r *conversationRepository) AddInsight(ctx context.Context, insight *model.Insight) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conversations[insight.ConversationID]; !exists {
		return goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("id", insight.ConversationID))
	}

	added := copyInsight(insight)
	if added.ID == "" {
		added.ID = model.NewInsightID()
	}
	if added.CreatedAt.IsZero() {
		added.CreatedAt = time.Now().UTC()
	}
	r.insights[insight.ConversationID] = append(r.insights[insight.ConversationID], added)

	return nil
}

func (r *conversationRepository) ListInsights(ctx context.Context, id model.ConversationID) ([]*model.Insight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.conversations[id]; !exists {
		return nil, goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("id", id))
	}

	insights := r.insights[id]
	result := make([]*model.Insight, 0, len(insights))
	for _, i := range insights {
		result = append(result, copyInsight(i))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (r *conversationRepository) Delete(ctx context.Context, id model.ConversationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conversations[id]; !exists {
		return goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("id", id))
	}

	delete(r.conversations, id)
	delete(r.messages, id)
	delete(r.insights, id)
	return nil
}
