package types

// QuestionID represents the unique identifier for a question within a questionnaire
type QuestionID string

// Validate checks if the QuestionID is valid
func (q QuestionID) Validate() error {
	return validateSlug("question", string(q))
}

// String returns the string representation of QuestionID
func (q QuestionID) String() string {
	return string(q)
}

// QuestionType represents the type of a questionnaire question
type QuestionType string

const (
	QuestionTypeText        QuestionType = "text"
	QuestionTypeNumber      QuestionType = "number"
	QuestionTypeSelect      QuestionType = "select"
	QuestionTypeMultiSelect QuestionType = "multi-select"
	QuestionTypeDate        QuestionType = "date"
	QuestionTypeBool        QuestionType = "bool"
)

// AllQuestionTypes returns all valid question types
func AllQuestionTypes() []QuestionType {
	return []QuestionType{
		QuestionTypeText,
		QuestionTypeNumber,
		QuestionTypeSelect,
		QuestionTypeMultiSelect,
		QuestionTypeDate,
		QuestionTypeBool,
	}
}

// IsValid checks if the question type is valid
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeText,
		QuestionTypeNumber,
		QuestionTypeSelect,
		QuestionTypeMultiSelect,
		QuestionTypeDate,
		QuestionTypeBool:
		return true
	default:
		return false
	}
}

// HasOptions reports whether the question type carries a fixed option list
func (t QuestionType) HasOptions() bool {
	return t == QuestionTypeSelect || t == QuestionTypeMultiSelect
}

// String returns the string representation of the question type
func (t QuestionType) String() string {
	return string(t)
}
