package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrInvalidAnswerType = goerr.New("invalid answer type")
	ErrUnknownQuestion   = goerr.New("unknown question ID")
	ErrUnknownOption     = goerr.New("unknown option ID")
	ErrMissingRequired   = goerr.New("required question is not answered")
)

// Context keys for error values
const (
	QuestionIDKey   = "question_id"
	ExpectedTypeKey = "expected_type"
	ActualTypeKey   = "actual_type"
	OptionIDKey     = "option_id"
	AnswerValueKey  = "answer_value"
)
