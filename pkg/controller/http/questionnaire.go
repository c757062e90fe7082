package http

import (
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/jungkj/riscura-sub000/pkg/usecase"
)

type questionOptionPayload struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Risky bool   `json:"risky"`
}

type questionPayload struct {
	ID       string                  `json:"id"`
	Text     string                  `json:"text"`
	Type     string                  `json:"type"`
	Required bool                    `json:"required"`
	Weight   int                     `json:"weight"`
	Options  []questionOptionPayload `json:"options,omitempty"`
}

func (p questionPayload) question() model.Question {
	q := model.Question{
		ID:       types.QuestionID(p.ID),
		Text:     p.Text,
		Type:     types.QuestionType(p.Type),
		Required: p.Required,
		Weight:   p.Weight,
	}
	for _, opt := range p.Options {
		q.Options = append(q.Options, model.QuestionOption{
			ID:    opt.ID,
			Label: opt.Label,
			Risky: opt.Risky,
		})
	}
	return q
}

func newQuestionPayload(q model.Question) questionPayload {
	p := questionPayload{
		ID:       q.ID.String(),
		Text:     q.Text,
		Type:     q.Type.String(),
		Required: q.Required,
		Weight:   q.Weight,
	}
	for _, opt := range q.Options {
		p.Options = append(p.Options, questionOptionPayload{
			ID:    opt.ID,
			Label: opt.Label,
			Risky: opt.Risky,
		})
	}
	return p
}

type questionnaireRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Questions   []questionPayload `json:"questions"`
}

func (req *questionnaireRequest) input() usecase.QuestionnaireInput {
	input := usecase.QuestionnaireInput{
		Title:       req.Title,
		Description: req.Description,
	}
	for _, q := range req.Questions {
		input.Questions = append(input.Questions, q.question())
	}
	return input
}

type questionnaireResponse struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Status      string            `json:"status"`
	Questions   []questionPayload `json:"questions"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func newQuestionnaireResponse(q *model.Questionnaire) questionnaireResponse {
	resp := questionnaireResponse{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Status:      q.Status.String(),
		Questions:   make([]questionPayload, len(q.Questions)),
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
	for i, question := range q.Questions {
		resp.Questions[i] = newQuestionPayload(question)
	}
	return resp
}

type answerPayload struct {
	QuestionID string     `json:"question_id"`
	Value      any        `json:"value"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

type responsePayload struct {
	ID              int64           `json:"id"`
	QuestionnaireID int64           `json:"questionnaire_id"`
	Respondent      string          `json:"respondent"`
	Status          string          `json:"status"`
	Answers         []answerPayload `json:"answers"`
	Score           *int            `json:"score,omitempty"`
	SubmittedAt     *time.Time      `json:"submitted_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func newResponsePayload(resp *model.QuestionnaireResponse) responsePayload {
	p := responsePayload{
		ID:              resp.ID,
		QuestionnaireID: resp.QuestionnaireID,
		Respondent:      resp.Respondent,
		Status:          resp.Status.String(),
		Answers:         make([]answerPayload, len(resp.Answers)),
		Score:           resp.Score,
		SubmittedAt:     resp.SubmittedAt,
		CreatedAt:       resp.CreatedAt,
		UpdatedAt:       resp.UpdatedAt,
	}
	for i, ans := range resp.Answers {
		updatedAt := ans.UpdatedAt
		p.Answers[i] = answerPayload{
			QuestionID: ans.QuestionID.String(),
			Value:      ans.Value,
			UpdatedAt:  &updatedAt,
		}
	}
	return p
}

func questionnaireListHandler(uc *usecase.QuestionnaireUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status *types.QuestionnaireStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			parsed, err := types.ParseQuestionnaireStatus(raw)
			if err != nil {
				handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "invalid status filter", goerr.V("status", raw)))
				return
			}
			status = &parsed
		}

		questionnaires, err := uc.ListQuestionnaires(r.Context(), status)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		resp := make([]questionnaireResponse, len(questionnaires))
		for i, q := range questionnaires {
			resp[i] = newQuestionnaireResponse(q)
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"questionnaires": resp,
		})
	}
}

func questionnaireCreateHandler(uc *usecase.QuestionnaireUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req questionnaireRequest
		if err := decodeBody(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		q, err := uc.CreateQuestionnaire(r.Context(), req.input())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusCreated, newQuestionnaireResponse(q))
	}
}

func questionnaireGetHandler(uc *usecase.QuestionnaireUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "questionnaireID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		q, err := uc.GetQuestionnaire(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newQuestionnaireResponse(q))
	}
}

func questionnaireUpdateHandler(uc *usecase.QuestionnaireUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "questionnaireID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		var req questionnaireRequest
		if err := decodeBody(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		q, err := uc.UpdateQuestionnaire(r.Context(), id, req.input())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newQuestionnaireResponse(q))
	}
}

func questionnaireDeleteHandler(uc *usecase.QuestionnaireUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "questionnaireID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		if err := uc.DeleteQuestionnaire(r.Context(), id); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func questionnairePublishHandler(uc *usecase.QuestionnaireUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "questionnaireID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		q, err := uc.PublishQuestionnaire(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newQuestionnaireResponse(q))
	}
}

func questionnaireCloseHandler(uc *usecase.QuestionnaireUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "questionnaireID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		q, err := uc.CloseQuestionnaire(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newQuestionnaireResponse(q))
	}
}

func responseListHandler(uc *usecase.QuestionnaireUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "questionnaireID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		responses, err := uc.ListResponses(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		resp := make([]responsePayload, len(responses))
		for i, response := range responses {
			resp[i] = newResponsePayload(response)
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"responses": resp,
		})
	}
}

func responseCreateHandler(uc *usecase.QuestionnaireUseCase) http.HandlerFunc {
	type createRequest struct {
		Respondent string `json:"respondent"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "questionnaireID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		// The body is optional; the respondent defaults to the
		// authenticated user
		var req createRequest
		if r.ContentLength > 0 {
			if err := decodeBody(r, &req); err != nil {
				handleError(r.Context(), w, err)
				return
			}
		}

		response, err := uc.CreateResponse(r.Context(), id, req.Respondent)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusCreated, newResponsePayload(response))
	}
}

func responseGetHandler(uc *usecase.QuestionnaireUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "questionnaireID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		responseID, err := pathID(r, "responseID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		response, err := uc.GetResponse(r.Context(), id, responseID)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newResponsePayload(response))
	}
}

func responseSaveHandler(uc *usecase.QuestionnaireUseCase) http.HandlerFunc {
	type saveRequest struct {
		Answers []answerPayload `json:"answers"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "questionnaireID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		responseID, err := pathID(r, "responseID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		var req saveRequest
		if err := decodeBody(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		answers := make([]model.Answer, len(req.Answers))
		for i, ans := range req.Answers {
			answers[i] = model.Answer{
				QuestionID: types.QuestionID(ans.QuestionID),
				Value:      ans.Value,
			}
		}

		response, err := uc.SaveAnswers(r.Context(), id, responseID, answers)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newResponsePayload(response))
	}
}

func responseSubmitHandler(uc *usecase.QuestionnaireUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "questionnaireID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		responseID, err := pathID(r, "responseID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		response, err := uc.SubmitResponse(r.Context(), id, responseID)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newResponsePayload(response))
	}
}

func responseReviewHandler(uc *usecase.QuestionnaireUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "questionnaireID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		responseID, err := pathID(r, "responseID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		response, err := uc.ReviewResponse(r.Context(), id, responseID)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newResponsePayload(response))
	}
}
