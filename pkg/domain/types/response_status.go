package types

import "fmt"

// ResponseStatus represents the status of a questionnaire response
type ResponseStatus string

const (
	ResponseStatusInProgress ResponseStatus = "in-progress"
	ResponseStatusSubmitted  ResponseStatus = "submitted"
	ResponseStatusReviewed   ResponseStatus = "reviewed"
)

// AllResponseStatuses returns all valid response statuses
func AllResponseStatuses() []ResponseStatus {
	return []ResponseStatus{
		ResponseStatusInProgress,
		ResponseStatusSubmitted,
		ResponseStatusReviewed,
	}
}

// IsValid checks if the response status is valid
func (s ResponseStatus) IsValid() bool {
	switch s {
	case ResponseStatusInProgress,
		ResponseStatusSubmitted,
		ResponseStatusReviewed:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as ResponseStatusInProgress.
func (s ResponseStatus) Normalize() ResponseStatus {
	if s == "" {
		return ResponseStatusInProgress
	}
	return s
}

// String returns the string representation of the response status
func (s ResponseStatus) String() string {
	return string(s)
}

// ParseResponseStatus parses a string into a ResponseStatus
func ParseResponseStatus(s string) (ResponseStatus, error) {
	status := ResponseStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid response status: %s", s)
	}
	return status, nil
}
