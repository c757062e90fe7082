package types

import "fmt"

// WorkflowStatus represents the status of a workflow
type WorkflowStatus string

const (
	WorkflowStatusActive    WorkflowStatus = "active"
	WorkflowStatusCompleted WorkflowStatus = "completed"
	WorkflowStatusCancelled WorkflowStatus = "cancelled"
)

// AllWorkflowStatuses returns all valid workflow statuses
func AllWorkflowStatuses() []WorkflowStatus {
	return []WorkflowStatus{
		WorkflowStatusActive,
		WorkflowStatusCompleted,
		WorkflowStatusCancelled,
	}
}

// IsValid checks if the workflow status is valid
func (s WorkflowStatus) IsValid() bool {
	switch s {
	case WorkflowStatusActive,
		WorkflowStatusCompleted,
		WorkflowStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are allowed
func (s WorkflowStatus) IsTerminal() bool {
	switch s {
	case WorkflowStatusCompleted, WorkflowStatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of the workflow status
func (s WorkflowStatus) String() string {
	return string(s)
}

// ParseWorkflowStatus parses a string into a WorkflowStatus
func ParseWorkflowStatus(s string) (WorkflowStatus, error) {
	status := WorkflowStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid workflow status: %s", s)
	}
	return status, nil
}
