package interfaces

import (
	"context"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
)

// QuestionnaireRepository defines the interface for Questionnaire data access
type QuestionnaireRepository interface {
	// Create creates a new questionnaire with auto-generated ID
	Create(ctx context.Context, q *model.Questionnaire) (*model.Questionnaire, error)

	// Get retrieves a questionnaire by ID
	Get(ctx context.Context, id int64) (*model.Questionnaire, error)

	// List retrieves all questionnaires
	List(ctx context.Context) ([]*model.Questionnaire, error)

	// Update updates an existing questionnaire
	Update(ctx context.Context, q *model.Questionnaire) (*model.Questionnaire, error)

	// Delete deletes a questionnaire by ID
	Delete(ctx context.Context, id int64) error
}

// QuestionnaireResponseRepository defines the interface for
// QuestionnaireResponse data access
type QuestionnaireResponseRepository interface {
	// Create creates a new response with auto-generated ID
	Create(ctx context.Context, r *model.QuestionnaireResponse) (*model.QuestionnaireResponse, error)

	// Get retrieves a response by ID
	Get(ctx context.Context, id int64) (*model.QuestionnaireResponse, error)

	// ListByQuestionnaire retrieves all responses for a questionnaire
	ListByQuestionnaire(ctx context.Context, questionnaireID int64) ([]*model.QuestionnaireResponse, error)

	// Update updates an existing response
	Update(ctx context.Context, r *model.QuestionnaireResponse) (*model.QuestionnaireResponse, error)

	// DeleteByQuestionnaire deletes all responses of a questionnaire
	DeleteByQuestionnaire(ctx context.Context, questionnaireID int64) error
}
