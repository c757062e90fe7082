package model

import (
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// QuestionOption represents an option for select/multi-select questions
type QuestionOption struct {
	ID    string
	Label string
	Risky bool // selecting this option contributes the question's weight to the response score
}

// Question defines a single question within a questionnaire
type Question struct {
	ID       types.QuestionID
	Text     string
	Type     types.QuestionType
	Required bool
	Weight   int // 0..10, scoring weight for bool/select/multi-select questions
	Options  []QuestionOption
}

// Questionnaire represents an assessment questionnaire
type Questionnaire struct {
	ID          int64
	Title       string
	Description string
	Status      types.QuestionnaireStatus
	Questions   []Question
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MaxQuestionWeight is the upper bound for a question's scoring weight
const MaxQuestionWeight = 10

// ValidateSchema checks the question set is publishable: at least one
// question, unique pattern-valid question IDs, options present and unique
// for select types, weights within range.
func (q *Questionnaire) ValidateSchema() error {
	if len(q.Questions) == 0 {
		return goerr.New("questionnaire must have at least one question")
	}

	seen := make(map[types.QuestionID]bool)
	for _, question := range q.Questions {
		if err := question.ID.Validate(); err != nil {
			return goerr.Wrap(err, "invalid question ID")
		}
		if seen[question.ID] {
			return goerr.New("duplicate question ID", goerr.V(QuestionIDKey, question.ID))
		}
		seen[question.ID] = true

		if !question.Type.IsValid() {
			return goerr.New("invalid question type",
				goerr.V(QuestionIDKey, question.ID),
				goerr.V(ExpectedTypeKey, question.Type))
		}
		if question.Text == "" {
			return goerr.New("question text is required", goerr.V(QuestionIDKey, question.ID))
		}
		if question.Weight < 0 || question.Weight > MaxQuestionWeight {
			return goerr.New("question weight out of range",
				goerr.V(QuestionIDKey, question.ID),
				goerr.V("weight", question.Weight))
		}

		if question.Type.HasOptions() {
			if len(question.Options) == 0 {
				return goerr.New("select question must have options", goerr.V(QuestionIDKey, question.ID))
			}
			optSeen := make(map[string]bool)
			for _, opt := range question.Options {
				if opt.ID == "" {
					return goerr.New("option ID is required", goerr.V(QuestionIDKey, question.ID))
				}
				if optSeen[opt.ID] {
					return goerr.New("duplicate option ID",
						goerr.V(QuestionIDKey, question.ID),
						goerr.V(OptionIDKey, opt.ID))
				}
				optSeen[opt.ID] = true
			}
		} else if len(question.Options) > 0 {
			return goerr.New("options are only allowed for select question types",
				goerr.V(QuestionIDKey, question.ID))
		}
	}

	return nil
}

// Question returns the question with the given ID, or nil
func (q *Questionnaire) Question(id types.QuestionID) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i]
		}
	}
	return nil
}

// IsEditable reports whether the question set may still be modified
func (q *Questionnaire) IsEditable() bool {
	return q.Status.Normalize() == types.QuestionnaireStatusDraft
}
