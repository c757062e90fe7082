package model

import (
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/types"
)

// Answer represents a single answer within a questionnaire response.
// The Go type of Value depends on the question type.
type Answer struct {
	QuestionID types.QuestionID
	Value      any
	UpdatedAt  time.Time
}

// QuestionnaireResponse represents one respondent's answers to a questionnaire
type QuestionnaireResponse struct {
	ID              int64
	QuestionnaireID int64
	Respondent      string // email address
	Status          types.ResponseStatus
	Answers         []Answer
	Score           *int // computed at submit
	SubmittedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Answer returns the answer for the given question ID, or nil
func (r *QuestionnaireResponse) Answer(id types.QuestionID) *Answer {
	for i := range r.Answers {
		if r.Answers[i].QuestionID == id {
			return &r.Answers[i]
		}
	}
	return nil
}

// SetAnswer replaces or appends the answer for its question ID
func (r *QuestionnaireResponse) SetAnswer(a Answer) {
	for i := range r.Answers {
		if r.Answers[i].QuestionID == a.QuestionID {
			r.Answers[i] = a
			return
		}
	}
	r.Answers = append(r.Answers, a)
}
