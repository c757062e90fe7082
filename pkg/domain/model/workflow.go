package model

import (
	"time"

	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Step represents a single step of a workflow
type Step struct {
	Name          string
	AssigneeEmail string
	Status        types.StepStatus
	DueAt         *time.Time
	EscalateAfter time.Duration // grace period after DueAt; 0 means never escalate
	EscalatedAt   *time.Time
	CompletedAt   *time.Time
	Comment       string
}

// ShouldEscalate reports whether the step is overdue enough to escalate.
// Only a current, not yet escalated step with a due date can escalate.
func (s *Step) ShouldEscalate(now time.Time) bool {
	if s.Status != types.StepStatusActive {
		return false
	}
	if s.DueAt == nil || s.EscalateAfter <= 0 {
		return false
	}
	return now.After(s.DueAt.Add(s.EscalateAfter))
}

// Workflow represents an ordered review/approval process
type Workflow struct {
	ID         int64
	Title      string
	Kind       string // e.g. "risk-review", "control-test"
	TargetType string // optional: "risk", "control", "questionnaire"
	TargetID   int64
	Status     types.WorkflowStatus
	Steps      []Step
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewWorkflow creates an active workflow from the given steps.
// The first step starts active, the rest pending.
func NewWorkflow(title, kind string, steps []Step) (*Workflow, error) {
	if title == "" {
		return nil, goerr.New("workflow title is required")
	}
	if len(steps) == 0 {
		return nil, goerr.New("workflow must have at least one step")
	}

	for i := range steps {
		if steps[i].Name == "" {
			return nil, goerr.New("step name is required", goerr.V(StepIndexKey, i))
		}
		steps[i].Status = types.StepStatusPending
	}
	steps[0].Status = types.StepStatusActive

	return &Workflow{
		Title:  title,
		Kind:   kind,
		Status: types.WorkflowStatusActive,
		Steps:  steps,
	}, nil
}

// CurrentStep returns the index of the step awaiting work, or -1
// if the workflow has no current step (terminal state).
func (w *Workflow) CurrentStep() int {
	for i := range w.Steps {
		if w.Steps[i].Status.IsCurrent() {
			return i
		}
	}
	return -1
}

// CompleteStep finishes the step at index i. Only the current step may
// complete; an escalated step completes the same way an active one does.
func (w *Workflow) CompleteStep(i int, comment string, now time.Time) error {
	return w.finishStep(i, types.StepStatusCompleted, comment, now)
}

// SkipStep skips the step at index i. Only the current step may skip.
func (w *Workflow) SkipStep(i int, comment string, now time.Time) error {
	return w.finishStep(i, types.StepStatusSkipped, comment, now)
}

func (w *Workflow) finishStep(i int, to types.StepStatus, comment string, now time.Time) error {
	if w.Status.IsTerminal() {
		return goerr.Wrap(ErrInvalidTransition, "workflow is already finished",
			goerr.V(WorkflowStatusKey, w.Status))
	}
	if i < 0 || i >= len(w.Steps) {
		return goerr.Wrap(ErrStepOutOfRange, "no such step",
			goerr.V(StepIndexKey, i), goerr.V("steps", len(w.Steps)))
	}

	step := &w.Steps[i]
	if !step.Status.IsCurrent() {
		return goerr.Wrap(ErrInvalidTransition, "step is not the current step",
			goerr.V(StepIndexKey, i), goerr.V(StepStatusKey, step.Status))
	}

	step.Status = to
	step.Comment = comment
	step.CompletedAt = &now

	w.advance()
	return nil
}

// advance activates the next pending step, or completes the workflow
// when none remain.
func (w *Workflow) advance() {
	for i := range w.Steps {
		if w.Steps[i].Status == types.StepStatusPending {
			w.Steps[i].Status = types.StepStatusActive
			return
		}
	}
	w.Status = types.WorkflowStatusCompleted
}

// EscalateStep marks the step at index i as escalated. The step stays
// the current step. Escalating twice is rejected so that callers can
// rely on the first transition for notification.
func (w *Workflow) EscalateStep(i int, now time.Time) error {
	if w.Status.IsTerminal() {
		return goerr.Wrap(ErrInvalidTransition, "workflow is already finished",
			goerr.V(WorkflowStatusKey, w.Status))
	}
	if i < 0 || i >= len(w.Steps) {
		return goerr.Wrap(ErrStepOutOfRange, "no such step",
			goerr.V(StepIndexKey, i), goerr.V("steps", len(w.Steps)))
	}

	step := &w.Steps[i]
	if step.Status != types.StepStatusActive {
		return goerr.Wrap(ErrInvalidTransition, "only an active step can escalate",
			goerr.V(StepIndexKey, i), goerr.V(StepStatusKey, step.Status))
	}

	step.Status = types.StepStatusEscalated
	step.EscalatedAt = &now
	return nil
}

// Cancel aborts a non-terminal workflow. Remaining steps keep their status.
func (w *Workflow) Cancel() error {
	if w.Status.IsTerminal() {
		return goerr.Wrap(ErrInvalidTransition, "workflow is already finished",
			goerr.V(WorkflowStatusKey, w.Status))
	}
	w.Status = types.WorkflowStatusCancelled
	return nil
}
