package usecase

import (
	"context"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/model/auth"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
)

// MaxQuestionnaireTitleLength bounds questionnaire titles
const MaxQuestionnaireTitleLength = 200

// QuestionnaireUseCase manages assessment questionnaires and their
// responses
type QuestionnaireUseCase struct {
	repo interfaces.Repository
}

func NewQuestionnaireUseCase(repo interfaces.Repository) *QuestionnaireUseCase {
	return &QuestionnaireUseCase{repo: repo}
}

// QuestionnaireInput carries the caller-editable fields of a
// questionnaire
type QuestionnaireInput struct {
	Title       string
	Description string
	Questions   []model.Question
}

func validateQuestionnaireInput(input QuestionnaireInput) error {
	if input.Title == "" {
		return goerr.Wrap(ErrInvalidInput, "questionnaire title is required")
	}
	if utf8.RuneCountInString(input.Title) > MaxQuestionnaireTitleLength {
		return goerr.Wrap(ErrInvalidInput, "questionnaire title is too long",
			goerr.V("max", MaxQuestionnaireTitleLength))
	}

	// An empty question set is allowed while drafting; the full schema
	// check runs at publish.
	if len(input.Questions) > 0 {
		q := &model.Questionnaire{Questions: input.Questions}
		if err := q.ValidateSchema(); err != nil {
			return goerr.Wrap(ErrInvalidInput, "invalid question set", goerr.V("cause", err.Error()))
		}
	}

	return nil
}

// CreateQuestionnaire creates a questionnaire in draft status
func (uc *QuestionnaireUseCase) CreateQuestionnaire(ctx context.Context, input QuestionnaireInput) (*model.Questionnaire, error) {
	if err := validateQuestionnaireInput(input); err != nil {
		return nil, err
	}

	questionnaire := &model.Questionnaire{
		Title:       input.Title,
		Description: input.Description,
		Status:      types.QuestionnaireStatusDraft,
		Questions:   input.Questions,
	}

	created, err := uc.repo.Questionnaire().Create(ctx, questionnaire)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create questionnaire")
	}

	recordAudit(ctx, uc.repo, types.AuditActionCreateQuestionnaire, "questionnaire", strconv.FormatInt(created.ID, 10), map[string]any{
		"title": created.Title,
	})

	return created, nil
}

// GetQuestionnaire returns a single questionnaire
func (uc *QuestionnaireUseCase) GetQuestionnaire(ctx context.Context, id int64) (*model.Questionnaire, error) {
	questionnaire, err := uc.repo.Questionnaire().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrQuestionnaireNotFound, "questionnaire not found", goerr.V(QuestionnaireIDKey, id))
	}
	return questionnaire, nil
}

// ListQuestionnaires returns all questionnaires, optionally filtered
// by status
func (uc *QuestionnaireUseCase) ListQuestionnaires(ctx context.Context, status *types.QuestionnaireStatus) ([]*model.Questionnaire, error) {
	questionnaires, err := uc.repo.Questionnaire().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list questionnaires")
	}

	if status == nil {
		return questionnaires, nil
	}

	filtered := make([]*model.Questionnaire, 0, len(questionnaires))
	for _, q := range questionnaires {
		if q.Status.Normalize() == *status {
			filtered = append(filtered, q)
		}
	}
	return filtered, nil
}

// UpdateQuestionnaire replaces the title, description and question set
// of a draft questionnaire. Published and closed questionnaires are
// immutable so responses always match the schema they answered.
func (uc *QuestionnaireUseCase) UpdateQuestionnaire(ctx context.Context, id int64, input QuestionnaireInput) (*model.Questionnaire, error) {
	existing, err := uc.repo.Questionnaire().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrQuestionnaireNotFound, "questionnaire not found", goerr.V(QuestionnaireIDKey, id))
	}

	if !existing.IsEditable() {
		return nil, goerr.Wrap(ErrNotEditable, "only draft questionnaires can be updated",
			goerr.V(QuestionnaireIDKey, id),
			goerr.V("status", existing.Status))
	}

	if err := validateQuestionnaireInput(input); err != nil {
		return nil, err
	}

	questionnaire := &model.Questionnaire{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		Status:      existing.Status,
		Questions:   input.Questions,
		CreatedAt:   existing.CreatedAt,
	}

	updated, err := uc.repo.Questionnaire().Update(ctx, questionnaire)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update questionnaire", goerr.V(QuestionnaireIDKey, id))
	}

	recordAudit(ctx, uc.repo, types.AuditActionUpdateQuestionnaire, "questionnaire", strconv.FormatInt(id, 10), map[string]any{
		"title": updated.Title,
	})

	return updated, nil
}

// PublishQuestionnaire moves a draft questionnaire to published,
// opening it up for responses. The question set must pass the full
// schema validation.
func (uc *QuestionnaireUseCase) PublishQuestionnaire(ctx context.Context, id int64) (*model.Questionnaire, error) {
	existing, err := uc.repo.Questionnaire().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrQuestionnaireNotFound, "questionnaire not found", goerr.V(QuestionnaireIDKey, id))
	}

	if existing.Status.Normalize() != types.QuestionnaireStatusDraft {
		return nil, goerr.Wrap(ErrNotEditable, "only draft questionnaires can be published",
			goerr.V(QuestionnaireIDKey, id),
			goerr.V("status", existing.Status))
	}

	if err := existing.ValidateSchema(); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, "questionnaire is not publishable", goerr.V("cause", err.Error()))
	}

	existing.Status = types.QuestionnaireStatusPublished
	updated, err := uc.repo.Questionnaire().Update(ctx, existing)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to publish questionnaire", goerr.V(QuestionnaireIDKey, id))
	}

	recordAudit(ctx, uc.repo, types.AuditActionPublishQuestionnaire, "questionnaire", strconv.FormatInt(id, 10), map[string]any{
		"title": updated.Title,
	})

	return updated, nil
}

// CloseQuestionnaire moves a published questionnaire to closed. No new
// responses can be started afterwards.
func (uc *QuestionnaireUseCase) CloseQuestionnaire(ctx context.Context, id int64) (*model.Questionnaire, error) {
	existing, err := uc.repo.Questionnaire().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrQuestionnaireNotFound, "questionnaire not found", goerr.V(QuestionnaireIDKey, id))
	}

	if existing.Status.Normalize() != types.QuestionnaireStatusPublished {
		return nil, goerr.Wrap(ErrNotPublished, "only published questionnaires can be closed",
			goerr.V(QuestionnaireIDKey, id),
			goerr.V("status", existing.Status))
	}

	existing.Status = types.QuestionnaireStatusClosed
	updated, err := uc.repo.Questionnaire().Update(ctx, existing)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to close questionnaire", goerr.V(QuestionnaireIDKey, id))
	}

	recordAudit(ctx, uc.repo, types.AuditActionCloseQuestionnaire, "questionnaire", strconv.FormatInt(id, 10), map[string]any{
		"title": updated.Title,
	})

	return updated, nil
}

// DeleteQuestionnaire removes a questionnaire and all of its responses
func (uc *QuestionnaireUseCase) DeleteQuestionnaire(ctx context.Context, id int64) error {
	existing, err := uc.repo.Questionnaire().Get(ctx, id)
	if err != nil {
		return goerr.Wrap(ErrQuestionnaireNotFound, "questionnaire not found", goerr.V(QuestionnaireIDKey, id))
	}

	if err := uc.repo.QuestionnaireResponse().DeleteByQuestionnaire(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete responses of questionnaire", goerr.V(QuestionnaireIDKey, id))
	}

	if err := uc.repo.Questionnaire().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete questionnaire", goerr.V(QuestionnaireIDKey, id))
	}

	recordAudit(ctx, uc.repo, types.AuditActionDeleteQuestionnaire, "questionnaire", strconv.FormatInt(id, 10), map[string]any{
		"title": existing.Title,
	})

	return nil
}

// CreateResponse starts a response for a published questionnaire. The
// respondent defaults to the authenticated user.
func (uc *QuestionnaireUseCase) CreateResponse(ctx context.Context, questionnaireID int64, respondent string) (*model.QuestionnaireResponse, error) {
	questionnaire, err := uc.repo.Questionnaire().Get(ctx, questionnaireID)
	if err != nil {
		return nil, goerr.Wrap(ErrQuestionnaireNotFound, "questionnaire not found", goerr.V(QuestionnaireIDKey, questionnaireID))
	}

	if questionnaire.Status.Normalize() != types.QuestionnaireStatusPublished {
		return nil, goerr.Wrap(ErrNotPublished, "questionnaire does not accept responses",
			goerr.V(QuestionnaireIDKey, questionnaireID),
			goerr.V("status", questionnaire.Status))
	}

	if respondent == "" {
		respondent = auth.ActorFromContext(ctx)
	}

	response := &model.QuestionnaireResponse{
		QuestionnaireID: questionnaireID,
		Respondent:      respondent,
		Status:          types.ResponseStatusInProgress,
	}

	created, err := uc.repo.QuestionnaireResponse().Create(ctx, response)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create response", goerr.V(QuestionnaireIDKey, questionnaireID))
	}

	return created, nil
}

// GetResponse returns one response of a questionnaire
func (uc *QuestionnaireUseCase) GetResponse(ctx context.Context, questionnaireID, responseID int64) (*model.QuestionnaireResponse, error) {
	response, err := uc.repo.QuestionnaireResponse().Get(ctx, responseID)
	if err != nil || response.QuestionnaireID != questionnaireID {
		return nil, goerr.Wrap(ErrResponseNotFound, "response not found",
			goerr.V(QuestionnaireIDKey, questionnaireID),
			goerr.V(ResponseIDKey, responseID))
	}
	return response, nil
}

// ListResponses returns all responses of a questionnaire
func (uc *QuestionnaireUseCase) ListResponses(ctx context.Context, questionnaireID int64) ([]*model.QuestionnaireResponse, error) {
	if _, err := uc.repo.Questionnaire().Get(ctx, questionnaireID); err != nil {
		return nil, goerr.Wrap(ErrQuestionnaireNotFound, "questionnaire not found", goerr.V(QuestionnaireIDKey, questionnaireID))
	}

	responses, err := uc.repo.QuestionnaireResponse().ListByQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list responses", goerr.V(QuestionnaireIDKey, questionnaireID))
	}

	return responses, nil
}

// SaveAnswers merges answers into an in-progress response. Answers are
// type-checked against the question schema; unanswered required
// questions are tolerated until submit.
func (uc *QuestionnaireUseCase) SaveAnswers(ctx context.Context, questionnaireID, responseID int64, answers []model.Answer) (*model.QuestionnaireResponse, error) {
	response, err := uc.GetResponse(ctx, questionnaireID, responseID)
	if err != nil {
		return nil, err
	}

	if response.Status.Normalize() != types.ResponseStatusInProgress {
		return nil, goerr.Wrap(ErrResponseNotOpen, "response does not accept changes",
			goerr.V(ResponseIDKey, responseID),
			goerr.V("status", response.Status))
	}

	questionnaire, err := uc.repo.Questionnaire().Get(ctx, questionnaireID)
	if err != nil {
		return nil, goerr.Wrap(ErrQuestionnaireNotFound, "questionnaire not found", goerr.V(QuestionnaireIDKey, questionnaireID))
	}

	validator := model.NewAnswerValidator(questionnaire)
	if err := validator.ValidateAnswers(answers); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid answers", goerr.V("cause", err.Error()))
	}

	now := time.Now()
	for _, a := range answers {
		a.UpdatedAt = now
		response.SetAnswer(a)
	}

	updated, err := uc.repo.QuestionnaireResponse().Update(ctx, response)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save answers", goerr.V(ResponseIDKey, responseID))
	}

	return updated, nil
}

// SubmitResponse finalizes an in-progress response: all required
// questions must be answered, the score is computed and frozen.
func (uc *QuestionnaireUseCase) SubmitResponse(ctx context.Context, questionnaireID, responseID int64) (*model.QuestionnaireResponse, error) {
	response, err := uc.GetResponse(ctx, questionnaireID, responseID)
	if err != nil {
		return nil, err
	}

	if response.Status.Normalize() != types.ResponseStatusInProgress {
		return nil, goerr.Wrap(ErrResponseNotOpen, "response is already submitted",
			goerr.V(ResponseIDKey, responseID),
			goerr.V("status", response.Status))
	}

	questionnaire, err := uc.repo.Questionnaire().Get(ctx, questionnaireID)
	if err != nil {
		return nil, goerr.Wrap(ErrQuestionnaireNotFound, "questionnaire not found", goerr.V(QuestionnaireIDKey, questionnaireID))
	}

	validator := model.NewAnswerValidator(questionnaire)
	if err := validator.ValidateComplete(response.Answers); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, "response is incomplete", goerr.V("cause", err.Error()))
	}

	score := validator.ScoreAnswers(response.Answers)
	now := time.Now()
	response.Status = types.ResponseStatusSubmitted
	response.Score = &score
	response.SubmittedAt = &now

	updated, err := uc.repo.QuestionnaireResponse().Update(ctx, response)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to submit response", goerr.V(ResponseIDKey, responseID))
	}

	recordAudit(ctx, uc.repo, types.AuditActionSubmitResponse, "response", strconv.FormatInt(responseID, 10), map[string]any{
		"questionnaire_id": questionnaireID,
		"score":            score,
	})

	return updated, nil
}

// ReviewResponse marks a submitted response as reviewed
func (uc *QuestionnaireUseCase) ReviewResponse(ctx context.Context, questionnaireID, responseID int64) (*model.QuestionnaireResponse, error) {
	response, err := uc.GetResponse(ctx, questionnaireID, responseID)
	if err != nil {
		return nil, err
	}

	if response.Status.Normalize() != types.ResponseStatusSubmitted {
		return nil, goerr.Wrap(ErrResponseNotOpen, "only submitted responses can be reviewed",
			goerr.V(ResponseIDKey, responseID),
			goerr.V("status", response.Status))
	}

	response.Status = types.ResponseStatusReviewed
	updated, err := uc.repo.QuestionnaireResponse().Update(ctx, response)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to review response", goerr.V(ResponseIDKey, responseID))
	}

	recordAudit(ctx, uc.repo, types.AuditActionReviewResponse, "response", strconv.FormatInt(responseID, 10), map[string]any{
		"questionnaire_id": questionnaireID,
	})

	return updated, nil
}
