package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type responseRepository struct {
	mu        sync.RWMutex
	responses map[int64]*model.QuestionnaireResponse
	nextID    int64
}

func newResponseRepository() *responseRepository {
	return &responseRepository{
		responses: make(map[int64]*model.QuestionnaireResponse),
		nextID:    1,
	}
}

// copyAnswer creates a deep copy of an answer value
func copyAnswer(a model.Answer) model.Answer {
	copied := model.Answer{
		QuestionID: a.QuestionID,
		UpdatedAt:  a.UpdatedAt,
	}
	switch v := a.Value.(type) {
	case []string:
		s := make([]string, len(v))
		copy(s, v)
		copied.Value = s
	case []interface{}:
		s := make([]interface{}, len(v))
		copy(s, v)
		copied.Value = s
	default:
		copied.Value = a.Value
	}
	return copied
}

// copyResponse creates a deep copy of a questionnaire response
func copyResponse(resp *model.QuestionnaireResponse) *model.QuestionnaireResponse {
	copied := &model.QuestionnaireResponse{
		ID:              resp.ID,
		QuestionnaireID: resp.QuestionnaireID,
		Respondent:      resp.Respondent,
		Status:          resp.Status,
		CreatedAt:       resp.CreatedAt,
		UpdatedAt:       resp.UpdatedAt,
	}

	if resp.Answers != nil {
		copied.Answers = make([]model.Answer, len(resp.Answers))
		for i, a := range resp.Answers {
			copied.Answers[i] = copyAnswer(a)
		}
	}
	if resp.Score != nil {
		score := *resp.Score
		copied.Score = &score
	}
	if resp.SubmittedAt != nil {
		submittedAt := *resp.SubmittedAt
		copied.SubmittedAt = &submittedAt
	}

	return copied
}

func (r *responseRepository) Create(ctx context.Context, resp *model.QuestionnaireResponse) (*model.QuestionnaireResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyResponse(resp)
	created.ID = r.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	r.responses[created.ID] = created
	return copyResponse(created), nil
}

func (r *responseRepository) Get(ctx context.Context, id int64) (*model.QuestionnaireResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resp, exists := r.responses[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "response not found", goerr.V("id", id))
	}

	return copyResponse(resp), nil
}

func (r *responseRepository) ListByQuestionnaire(ctx context.Context, questionnaireID int64) ([]*model.QuestionnaireResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.QuestionnaireResponse
	for _, resp := range r.responses {
		if resp.QuestionnaireID == questionnaireID {
			result = append(result, copyResponse(resp))
		}
	}

	return result, nil
}

func (r *responseRepository) Update(ctx context.Context, resp *model.QuestionnaireResponse) (*model.QuestionnaireResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.responses[resp.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "response not found", goerr.V("id", resp.ID))
	}

	updated := copyResponse(resp)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.responses[updated.ID] = updated
	return copyResponse(updated), nil
}

func (r *responseRepository) DeleteByQuestionnaire(ctx context.Context, questionnaireID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, resp := range r.responses {
		if resp.QuestionnaireID == questionnaireID {
			delete(r.responses, id)
		}
	}

	return nil
}
