package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type conversationDocument struct {
	ID           string    `firestore:"id"`
	Title        string    `firestore:"title"`
	StartedBy    string    `firestore:"started_by"`
	InputTokens  int       `firestore:"input_tokens"`
	OutputTokens int       `firestore:"output_tokens"`
	Requests     int       `firestore:"requests"`
	CreatedAt    time.Time `firestore:"created_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
}

func toConversationDocument(c *model.Conversation) *conversationDocument {
	return &conversationDocument{
		ID:           string(c.ID),
		Title:        c.Title,
		StartedBy:    c.StartedBy,
		InputTokens:  c.Usage.InputTokens,
		OutputTokens: c.Usage.OutputTokens,
		Requests:     c.Usage.Requests,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (d *conversationDocument) toModel() *model.Conversation {
	return &model.Conversation{
		ID:        model.ConversationID(d.ID),
		Title:     d.Title,
		StartedBy: d.StartedBy,
		Usage: model.TokenUsage{
			InputTokens:  d.InputTokens,
			OutputTokens: d.OutputTokens,
			Requests:     d.Requests,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type messageDocument struct {
	ConversationID string    `firestore:"conversation_id"`
	Seq            int       `firestore:"seq"`
	Role           string    `firestore:"role"`
	Content        string    `firestore:"content"`
	ToolName       string    `firestore:"tool_name"`
	InputTokens    int       `firestore:"input_tokens"`
	OutputTokens   int       `firestore:"output_tokens"`
	CreatedAt      time.Time `firestore:"created_at"`
}

func toMessageDocument(m *model.Message) *messageDocument {
	return &messageDocument{
		ConversationID: string(m.ConversationID),
		Seq:            m.Seq,
		Role:           m.Role.String(),
		Content:        m.Content,
		ToolName:       m.ToolName,
		InputTokens:    m.InputTokens,
		OutputTokens:   m.OutputTokens,
		CreatedAt:      m.CreatedAt,
	}
}

func (d *messageDocument) toModel() *model.Message {
	return &model.Message{
		ConversationID: model.ConversationID(d.ConversationID),
		Seq:            d.Seq,
		Role:           types.MessageRole(d.Role),
		Content:        d.Content,
		ToolName:       d.ToolName,
		InputTokens:    d.InputTokens,
		OutputTokens:   d.OutputTokens,
		CreatedAt:      d.CreatedAt,
	}
}

type insightDocument struct {
	ID             string    `firestore:"id"`
	ConversationID string    `firestore:"conversation_id"`
	Title          string    `firestore:"title"`
	Body           string    `firestore:"body"`
	RiskIDs        []int64   `firestore:"risk_ids"`
	CreatedAt      time.Time `firestore:"created_at"`
}

func toInsightDocument(i *model.Insight) *insightDocument {
	return &insightDocument{
		ID:             i.ID,
		ConversationID: string(i.ConversationID),
		Title:          i.Title,
		Body:           i.Body,
		RiskIDs:        i.RiskIDs,
		CreatedAt:      i.CreatedAt,
	}
}

func (d *insightDocument) toModel() *model.Insight {
	return &model.Insight{
		ID:             d.ID,
		ConversationID: model.ConversationID(d.ConversationID),
		Title:          d.Title,
		Body:           d.Body,
		RiskIDs:        d.RiskIDs,
		CreatedAt:      d.CreatedAt,
	}
}

type conversationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newConversationRepository(client *firestore.Client) *conversationRepository {
	return &conversationRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *conversationRepository) conversationsCollection() string {
	return prefixed(r.collectionPrefix, "conversations")
}

func (r *conversationRepository) messagesCollection() string {
	return prefixed(r.collectionPrefix, "conversation_messages")
}

func (r *conversationRepository) insightsCollection() string {
	return prefixed(r.collectionPrefix, "insights")
}

// messageDocID keys a message by conversation and position so that a
// duplicate seq fails on write.
func messageDocID(id model.ConversationID, seq int) string {
	return fmt.Sprintf("%s_%d", id, seq)
}

func (r *conversationRepository) Create(ctx context.Context, conv *model.Conversation) (*model.Conversation, error) {
	now := time.Now().UTC()
	created := toConversationDocument(conv)
	if created.ID == "" {
		created.ID = string(model.NewConversationID())
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	docRef := r.client.Collection(r.conversationsCollection()).Doc(created.ID)
	if _, err := docRef.Set(ctx, created); err != nil {
		return nil, goerr.Wrap(err, "failed to create conversation")
	}

	return created.toModel(), nil
}

func (r *conversationRepository) Get(ctx context.Context, id model.ConversationID) (*model.Conversation, error) {
	docRef := r.client.Collection(r.conversationsCollection()).Doc(string(id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get conversation", goerr.V("id", id))
	}

	var convDoc conversationDocument
	if err := doc.DataTo(&convDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal conversation", goerr.V("id", id))
	}

	return convDoc.toModel(), nil
}

func (r *conversationRepository) ListWithPagination(ctx context.Context, limit, offset int) ([]*model.Conversation, int, error) {
	// Get total count first
	allDocs, err := r.client.Collection(r.conversationsCollection()).Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to count conversations")
	}
	totalCount := len(allDocs)

	query := r.client.Collection(r.conversationsCollection()).
		OrderBy("created_at", firestore.Desc).
		Offset(offset).
		Limit(limit)

	iter := query.Documents(ctx)
	defer iter.Stop()

	conversations := make([]*model.Conversation, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, goerr.Wrap(err, "failed to iterate conversations")
		}

		var convDoc conversationDocument
		if err := doc.DataTo(&convDoc); err != nil {
			return nil, 0, goerr.Wrap(err, "failed to unmarshal conversation")
		}

		conversations = append(conversations, convDoc.toModel())
	}

	return conversations, totalCount, nil
}

func (r *conversationRepository) Update(ctx context.Context, conv *model.Conversation) (*model.Conversation, error) {
	docRef := r.client.Collection(r.conversationsCollection()).Doc(string(conv.ID))

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("id", conv.ID))
		}
		return nil, goerr.Wrap(err, "failed to get conversation", goerr.V("id", conv.ID))
	}

	var existing conversationDocument
	if err := doc.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal conversation", goerr.V("id", conv.ID))
	}

	updated := toConversationDocument(conv)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update conversation", goerr.V("id", conv.ID))
	}

	return updated.toModel(), nil
}

func (r *conversationRepository) AddMessage(ctx context.Context, msg *model.Message) error {
	if msg.Seq < 1 {
		return goerr.New("message seq must be positive", goerr.V("seq", msg.Seq))
	}

	if _, err := r.Get(ctx, msg.ConversationID); err != nil {
		return err
	}

	added := toMessageDocument(msg)
	if added.CreatedAt.IsZero() {
		added.CreatedAt = time.Now().UTC()
	}

	docRef := r.client.Collection(r.messagesCollection()).Doc(messageDocID(msg.ConversationID, msg.Seq))
	if _, err := docRef.Create(ctx, added); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.New("message seq already used",
				goerr.V("id", msg.ConversationID), goerr.V("seq", msg.Seq))
		}
		return goerr.Wrap(err, "failed to add message", goerr.V("id", msg.ConversationID))
	}

	return nil
}

func (r *conversationRepository) ListMessages(ctx context.Context, id model.ConversationID) ([]*model.Message, error) {
	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}

	iter := r.client.Collection(r.messagesCollection()).
		Where("conversation_id", "==", string(id)).
		OrderBy("seq", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	messages := make([]*model.Message, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate messages", goerr.V("id", id))
		}

		var msgDoc messageDocument
		if err := doc.DataTo(&msgDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal message")
		}

		messages = append(messages, msgDoc.toModel())
	}

	return messages, nil
}

func (r *conversationRepository) AddInsight(ctx context.Context, insight *model.Insight) error {
	if _, err := r.Get(ctx, insight.ConversationID); err != nil {
		return err
	}

	added := toInsightDocument(insight)
	if added.ID == "" {
		added.ID = model.NewInsightID()
	}
	if added.CreatedAt.IsZero() {
		added.CreatedAt = time.Now().UTC()
	}

	docRef := r.client.Collection(r.insightsCollection()).Doc(added.ID)
	if _, err := docRef.Set(ctx, added); err != nil {
		return goerr.Wrap(err, "failed to add insight", goerr.V("id", insight.ConversationID))
	}

	return nil
}

func (r *conversationRepository) ListInsights(ctx context.Context, id model.ConversationID) ([]*model.Insight, error) {
	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}

	iter := r.client.Collection(r.insightsCollection()).
		Where("conversation_id", "==", string(id)).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	insights := make([]*model.Insight, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate insights", goerr.V("id", id))
		}

		var insightDoc insightDocument
		if err := doc.DataTo(&insightDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal insight")
		}

		insights = append(insights, insightDoc.toModel())
	}

	return insights, nil
}

func (r *conversationRepository) Delete(ctx context.Context, id model.ConversationID) error {
	docRef := r.client.Collection(r.conversationsCollection()).Doc(string(id))

	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get conversation", goerr.V("id", id))
	}

	if err := r.deleteWhere(ctx, r.messagesCollection(), id); err != nil {
		return err
	}
	if err := r.deleteWhere(ctx, r.insightsCollection(), id); err != nil {
		return err
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete conversation", goerr.V("id", id))
	}

	return nil
}

func (r *conversationRepository) deleteWhere(ctx context.Context, collection string, id model.ConversationID) error {
	iter := r.client.Collection(collection).
		Where("conversation_id", "==", string(id)).
		Documents(ctx)
	defer iter.Stop()

	bulkWriter := r.client.BulkWriter(ctx)

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate for deletion",
				goerr.V("collection", collection), goerr.V("id", id))
		}

		if _, err := bulkWriter.Delete(doc.Ref); err != nil {
			return goerr.Wrap(err, "failed to delete document",
				goerr.V("collection", collection), goerr.V("id", id))
		}
	}

	bulkWriter.End()

	return nil
}
