package model

import "github.com/m-mizutani/goerr/v2"

// Workflow transition errors
var (
	ErrInvalidTransition = goerr.New("invalid workflow transition")
	ErrStepOutOfRange    = goerr.New("step index out of range")
)

// Context keys for error values
const (
	WorkflowStatusKey = "workflow_status"
	StepIndexKey      = "step_index"
	StepStatusKey     = "step_status"
)
