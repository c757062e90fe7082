package model

import (
	"fmt"
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// AnswerValidator validates answers against a questionnaire's question set
type AnswerValidator struct {
	questionnaire *Questionnaire
}

// NewAnswerValidator creates a new AnswerValidator for the given questionnaire
func NewAnswerValidator(q *Questionnaire) *AnswerValidator {
	return &AnswerValidator{
		questionnaire: q,
	}
}

// ValidateAnswers validates the given answers against the question schema.
// Unknown question IDs are rejected. Required-ness is checked separately
// at submit time via ValidateComplete.
func (v *AnswerValidator) ValidateAnswers(answers []Answer) error {
	for _, a := range answers {
		question := v.questionnaire.Question(a.QuestionID)
		if question == nil {
			return goerr.Wrap(ErrUnknownQuestion, "answer references unknown question",
				goerr.V(QuestionIDKey, a.QuestionID))
		}

		if err := v.validateAnswer(question, a); err != nil {
			return goerr.Wrap(err, "answer validation failed",
				goerr.V(QuestionIDKey, a.QuestionID))
		}
	}

	return nil
}

// ValidateComplete validates answers for submission: every answer valid
// and every required question answered.
func (v *AnswerValidator) ValidateComplete(answers []Answer) error {
	if err := v.ValidateAnswers(answers); err != nil {
		return err
	}

	answered := make(map[types.QuestionID]bool)
	for _, a := range answers {
		answered[a.QuestionID] = true
	}

	for _, question := range v.questionnaire.Questions {
		if question.Required && !answered[question.ID] {
			return goerr.Wrap(ErrMissingRequired, "required question not answered",
				goerr.V(QuestionIDKey, question.ID))
		}
	}

	return nil
}

// validateAnswer validates a single answer value against its question definition
func (v *AnswerValidator) validateAnswer(question *Question, a Answer) error {
	switch question.Type {
	case types.QuestionTypeText:
		return v.validateText(a)
	case types.QuestionTypeNumber:
		return v.validateNumber(a)
	case types.QuestionTypeSelect:
		return v.validateSelect(question, a)
	case types.QuestionTypeMultiSelect:
		return v.validateMultiSelect(question, a)
	case types.QuestionTypeDate:
		return v.validateDate(a)
	case types.QuestionTypeBool:
		return v.validateBool(a)
	default:
		return goerr.Wrap(ErrInvalidAnswerType, "unsupported question type",
			goerr.V(ExpectedTypeKey, question.Type))
	}
}

func (v *AnswerValidator) validateText(a Answer) error {
	_, ok := a.Value.(string)
	if !ok {
		return goerr.Wrap(ErrInvalidAnswerType, "value must be string",
			goerr.V(ExpectedTypeKey, types.QuestionTypeText),
			goerr.V(ActualTypeKey, fmt.Sprintf("%T", a.Value)))
	}
	return nil
}

func (v *AnswerValidator) validateNumber(a Answer) error {
	switch a.Value.(type) {
	case float64, int, int64, int32:
		return nil
	default:
		return goerr.Wrap(ErrInvalidAnswerType, "value must be number",
			goerr.V(ExpectedTypeKey, types.QuestionTypeNumber),
			goerr.V(ActualTypeKey, fmt.Sprintf("%T", a.Value)))
	}
}

func (v *AnswerValidator) validateSelect(question *Question, a Answer) error {
	optionID, ok := a.Value.(string)
	if !ok {
		return goerr.Wrap(ErrInvalidAnswerType, "value must be string (option ID)",
			goerr.V(ExpectedTypeKey, types.QuestionTypeSelect),
			goerr.V(ActualTypeKey, fmt.Sprintf("%T", a.Value)))
	}

	for _, opt := range question.Options {
		if opt.ID == optionID {
			return nil
		}
	}

	return goerr.Wrap(ErrUnknownOption, "option ID not found in question",
		goerr.V(OptionIDKey, optionID))
}

func (v *AnswerValidator) validateMultiSelect(question *Question, a Answer) error {
	optionIDs, ok := a.Value.([]string)
	if !ok {
		// JSON decoding yields []interface{}
		values, ok := a.Value.([]interface{})
		if !ok {
			return goerr.Wrap(ErrInvalidAnswerType, "value must be array of strings (option IDs)",
				goerr.V(ExpectedTypeKey, types.QuestionTypeMultiSelect),
				goerr.V(ActualTypeKey, fmt.Sprintf("%T", a.Value)))
		}
		optionIDs = make([]string, len(values))
		for i, val := range values {
			strVal, ok := val.(string)
			if !ok {
				return goerr.Wrap(ErrInvalidAnswerType, "multi-select value must be array of strings",
					goerr.V(ExpectedTypeKey, types.QuestionTypeMultiSelect),
					goerr.V(ActualTypeKey, fmt.Sprintf("%T", a.Value)))
			}
			optionIDs[i] = strVal
		}
	}

	validOptions := make(map[string]bool)
	for _, opt := range question.Options {
		validOptions[opt.ID] = true
	}

	for _, optionID := range optionIDs {
		if !validOptions[optionID] {
			return goerr.Wrap(ErrUnknownOption, "option ID not found in question",
				goerr.V(OptionIDKey, optionID))
		}
	}

	return nil
}

func (v *AnswerValidator) validateDate(a Answer) error {
	switch val := a.Value.(type) {
	case string:
		if _, err := time.Parse(time.RFC3339, val); err != nil {
			return goerr.Wrap(ErrInvalidAnswerType, "date value must be RFC3339 format string",
				goerr.V(AnswerValueKey, val))
		}
		return nil
	case time.Time:
		return nil
	default:
		return goerr.Wrap(ErrInvalidAnswerType, "value must be RFC3339 string or time.Time",
			goerr.V(ExpectedTypeKey, types.QuestionTypeDate),
			goerr.V(ActualTypeKey, fmt.Sprintf("%T", a.Value)))
	}
}

func (v *AnswerValidator) validateBool(a Answer) error {
	_, ok := a.Value.(bool)
	if !ok {
		return goerr.Wrap(ErrInvalidAnswerType, "value must be bool",
			goerr.V(ExpectedTypeKey, types.QuestionTypeBool),
			goerr.V(ActualTypeKey, fmt.Sprintf("%T", a.Value)))
	}
	return nil
}

// ScoreAnswers computes the response score: the sum of question weights
// over risky answers. A bool answer of true is risky; a selected option
// flagged Risky is risky (multi-select counts the question once).
func (v *AnswerValidator) ScoreAnswers(answers []Answer) int {
	score := 0
	for _, a := range answers {
		question := v.questionnaire.Question(a.QuestionID)
		if question == nil || question.Weight == 0 {
			continue
		}

		switch question.Type {
		case types.QuestionTypeBool:
			if val, ok := a.Value.(bool); ok && val {
				score += question.Weight
			}
		case types.QuestionTypeSelect:
			if optionID, ok := a.Value.(string); ok {
				if opt := findOption(question, optionID); opt != nil && opt.Risky {
					score += question.Weight
				}
			}
		case types.QuestionTypeMultiSelect:
			for _, optionID := range toStringSlice(a.Value) {
				if opt := findOption(question, optionID); opt != nil && opt.Risky {
					score += question.Weight
					break
				}
			}
		}
	}
	return score
}

func findOption(question *Question, optionID string) *QuestionOption {
	for i := range question.Options {
		if question.Options[i].ID == optionID {
			return &question.Options[i]
		}
	}
	return nil
}

func toStringSlice(value any) []string {
	switch vals := value.(type) {
	case []string:
		return vals
	case []interface{}:
		out := make([]string, 0, len(vals))
		for _, v := range vals {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
