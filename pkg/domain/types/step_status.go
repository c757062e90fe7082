package types

import "fmt"

// StepStatus represents the status of a single workflow step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusSkipped   StepStatus = "skipped"
	StepStatusEscalated StepStatus = "escalated"
)

// AllStepStatuses returns all valid step statuses
func AllStepStatuses() []StepStatus {
	return []StepStatus{
		StepStatusPending,
		StepStatusActive,
		StepStatusCompleted,
		StepStatusSkipped,
		StepStatusEscalated,
	}
}

// IsValid checks if the step status is valid
func (s StepStatus) IsValid() bool {
	switch s {
	case StepStatusPending,
		StepStatusActive,
		StepStatusCompleted,
		StepStatusSkipped,
		StepStatusEscalated:
		return true
	default:
		return false
	}
}

// IsCurrent reports whether the step is the one awaiting work.
// An escalated step is still the current step.
func (s StepStatus) IsCurrent() bool {
	return s == StepStatusActive || s == StepStatusEscalated
}

// IsDone reports whether the step has been finished one way or another
func (s StepStatus) IsDone() bool {
	return s == StepStatusCompleted || s == StepStatusSkipped
}

// String returns the string representation of the step status
func (s StepStatus) String() string {
	return string(s)
}

// ParseStepStatus parses a string into a StepStatus
func ParseStepStatus(s string) (StepStatus, error) {
	status := StepStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid step status: %s", s)
	}
	return status, nil
}
