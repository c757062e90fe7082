package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type questionnaireRepository struct {
	mu             sync.RWMutex
	questionnaires map[int64]*model.Questionnaire
	nextID         int64
}

func newQuestionnaireRepository() *questionnaireRepository {
	return &questionnaireRepository{
		questionnaires: make(map[int64]*model.Questionnaire),
		nextID:         1,
	}
}

// copyQuestionnaire creates a deep copy of a questionnaire
func copyQuestionnaire(q *model.Questionnaire) *model.Questionnaire {
	copied := &model.Questionnaire{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Status:      q.Status,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}

	if q.Questions != nil {
		copied.Questions = make([]model.Question, len(q.Questions))
		for i, question := range q.Questions {
			copiedQuestion := question
			if question.Options != nil {
				copiedQuestion.Options = make([]model.QuestionOption, len(question.Options))
				copy(copiedQuestion.Options, question.Options)
			}
			copied.Questions[i] = copiedQuestion
		}
	}

	return copied
}

func (r *questionnaireRepository) Create(ctx context.Context, q *model.Questionnaire) (*model.Questionnaire, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := copyQuestionnaire(q)
	created.ID = r.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	r.questionnaires[created.ID] = created
	return copyQuestionnaire(created), nil
}

func (r *questionnaireRepository) Get(ctx context.Context, id int64) (*model.Questionnaire, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, exists := r.questionnaires[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "questionnaire not found", goerr.V("id", id))
	}

	return copyQuestionnaire(q), nil
}

func (r *questionnaireRepository) List(ctx context.Context) ([]*model.Questionnaire, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	questionnaires := make([]*model.Questionnaire, 0, len(r.questionnaires))
	for _, q := range r.questionnaires {
		questionnaires = append(questionnaires, copyQuestionnaire(q))
	}

	return questionnaires, nil
}

func (r *questionnaireRepository) Update(ctx context.Context, q *model.Questionnaire) (*model.Questionnaire, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.questionnaires[q.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "questionnaire not found", goerr.V("id", q.ID))
	}

	updated := copyQuestionnaire(q)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.questionnaires[updated.ID] = updated
	return copyQuestionnaire(updated), nil
}

func (r *questionnaireRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.questionnaires[id]; !exists {
		return goerr.Wrap(ErrNotFound, "questionnaire not found", goerr.V("id", id))
	}

	delete(r.questionnaires, id)
	return nil
}
