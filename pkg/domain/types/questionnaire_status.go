package types

import "fmt"

// QuestionnaireStatus represents the lifecycle of a questionnaire
type QuestionnaireStatus string

const (
	QuestionnaireStatusDraft     QuestionnaireStatus = "draft"
	QuestionnaireStatusPublished QuestionnaireStatus = "published"
	QuestionnaireStatusClosed    QuestionnaireStatus = "closed"
)

// AllQuestionnaireStatuses returns all valid questionnaire statuses
func AllQuestionnaireStatuses() []QuestionnaireStatus {
	return []QuestionnaireStatus{
		QuestionnaireStatusDraft,
		QuestionnaireStatusPublished,
		QuestionnaireStatusClosed,
	}
}

// IsValid checks if the questionnaire status is valid
func (s QuestionnaireStatus) IsValid() bool {
	switch s {
	case QuestionnaireStatusDraft,
		QuestionnaireStatusPublished,
		QuestionnaireStatusClosed:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as QuestionnaireStatusDraft.
func (s QuestionnaireStatus) Normalize() QuestionnaireStatus {
	if s == "" {
		return QuestionnaireStatusDraft
	}
	return s
}

// String returns the string representation of the questionnaire status
func (s QuestionnaireStatus) String() string {
	return string(s)
}

// ParseQuestionnaireStatus parses a string into a QuestionnaireStatus
func ParseQuestionnaireStatus(s string) (QuestionnaireStatus, error) {
	status := QuestionnaireStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid questionnaire status: %s", s)
	}
	return status, nil
}
