package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/model/config"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
)

// WorkflowUseCase manages review/approval workflows
type WorkflowUseCase struct {
	repo           interfaces.Repository
	workflowConfig *config.WorkflowConfig
}

func NewWorkflowUseCase(repo interfaces.Repository, workflowConfig *config.WorkflowConfig) *WorkflowUseCase {
	return &WorkflowUseCase{
		repo:           repo,
		workflowConfig: workflowConfig,
	}
}

// StepInput carries the caller-editable fields of one workflow step
type StepInput struct {
	Name          string
	AssigneeEmail string
	DueAt         *time.Time
	EscalateAfter time.Duration
}

// WorkflowInput carries the fields to start an ad-hoc workflow
type WorkflowInput struct {
	Title      string
	Kind       string
	TargetType string
	TargetID   int64
	Steps      []StepInput
}

// TemplateWorkflowInput carries the fields to start a workflow from a
// configured template. Assignees and DueDates are per-step and, when
// given, must match the template's step count.
type TemplateWorkflowInput struct {
	TemplateID string
	Title      string // defaults to the template name
	TargetType string
	TargetID   int64
	Assignees  []string
	DueDates   []*time.Time
}

func (uc *WorkflowUseCase) validateTarget(ctx context.Context, targetType string, targetID int64) error {
	if targetType == "" {
		if targetID != 0 {
			return goerr.Wrap(ErrInvalidInput, "target ID requires a target type")
		}
		return nil
	}

	switch targetType {
	case "risk":
		if _, err := uc.repo.Risk().Get(ctx, targetID); err != nil {
			return goerr.Wrap(ErrRiskNotFound, "workflow target risk not found", goerr.V(RiskIDKey, targetID))
		}
	case "control":
		if _, err := uc.repo.Control().Get(ctx, targetID); err != nil {
			return goerr.Wrap(ErrControlNotFound, "workflow target control not found", goerr.V(ControlIDKey, targetID))
		}
	case "questionnaire":
		if _, err := uc.repo.Questionnaire().Get(ctx, targetID); err != nil {
			return goerr.Wrap(ErrQuestionnaireNotFound, "workflow target questionnaire not found", goerr.V(QuestionnaireIDKey, targetID))
		}
	default:
		return goerr.Wrap(ErrInvalidInput, "unknown workflow target type",
			goerr.V("target_type", targetType))
	}

	return nil
}

// CreateWorkflow starts an ad-hoc workflow. The first step becomes
// active immediately.
func (uc *WorkflowUseCase) CreateWorkflow(ctx context.Context, input WorkflowInput) (*model.Workflow, error) {
	if err := uc.validateTarget(ctx, input.TargetType, input.TargetID); err != nil {
		return nil, err
	}

	steps := make([]model.Step, 0, len(input.Steps))
	for _, s := range input.Steps {
		steps = append(steps, model.Step{
			Name:          s.Name,
			AssigneeEmail: s.AssigneeEmail,
			DueAt:         s.DueAt,
			EscalateAfter: s.EscalateAfter,
		})
	}

	workflow, err := model.NewWorkflow(input.Title, input.Kind, steps)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid workflow", goerr.V("cause", err.Error()))
	}
	workflow.TargetType = input.TargetType
	workflow.TargetID = input.TargetID

	created, err := uc.repo.Workflow().Create(ctx, workflow)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create workflow")
	}

	recordAudit(ctx, uc.repo, types.AuditActionCreateWorkflow, "workflow", strconv.FormatInt(created.ID, 10), map[string]any{
		"title": created.Title,
		"kind":  created.Kind,
		"steps": len(created.Steps),
	})

	return created, nil
}

// CreateWorkflowFromTemplate starts a workflow from a configured
// template
func (uc *WorkflowUseCase) CreateWorkflowFromTemplate(ctx context.Context, input TemplateWorkflowInput) (*model.Workflow, error) {
	template := uc.workflowConfig.Template(input.TemplateID)
	if template == nil {
		return nil, goerr.Wrap(ErrInvalidInput, "unknown workflow template",
			goerr.V(TemplateIDKey, input.TemplateID))
	}

	if len(input.Assignees) > 0 && len(input.Assignees) != len(template.Steps) {
		return nil, goerr.Wrap(ErrInvalidInput, "assignee count does not match template steps",
			goerr.V(TemplateIDKey, input.TemplateID),
			goerr.V("assignees", len(input.Assignees)),
			goerr.V("steps", len(template.Steps)))
	}
	if len(input.DueDates) > 0 && len(input.DueDates) != len(template.Steps) {
		return nil, goerr.Wrap(ErrInvalidInput, "due date count does not match template steps",
			goerr.V(TemplateIDKey, input.TemplateID),
			goerr.V("due_dates", len(input.DueDates)),
			goerr.V("steps", len(template.Steps)))
	}

	title := input.Title
	if title == "" {
		title = template.Name
	}

	steps := make([]StepInput, 0, len(template.Steps))
	for i, ts := range template.Steps {
		step := StepInput{
			Name:          ts.Name,
			EscalateAfter: ts.EscalateAfter,
		}
		if len(input.Assignees) > 0 {
			step.AssigneeEmail = input.Assignees[i]
		}
		if len(input.DueDates) > 0 {
			step.DueAt = input.DueDates[i]
		}
		steps = append(steps, step)
	}

	return uc.CreateWorkflow(ctx, WorkflowInput{
		Title:      title,
		Kind:       template.Kind,
		TargetType: input.TargetType,
		TargetID:   input.TargetID,
		Steps:      steps,
	})
}

// GetWorkflow returns a single workflow
func (uc *WorkflowUseCase) GetWorkflow(ctx context.Context, id int64) (*model.Workflow, error) {
	workflow, err := uc.repo.Workflow().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrWorkflowNotFound, "workflow not found", goerr.V(WorkflowIDKey, id))
	}
	return workflow, nil
}

// ListWorkflows returns workflows, optionally filtered by status
func (uc *WorkflowUseCase) ListWorkflows(ctx context.Context, status *types.WorkflowStatus) ([]*model.Workflow, error) {
	var opts []interfaces.ListWorkflowOption
	if status != nil {
		opts = append(opts, interfaces.WithWorkflowStatus(*status))
	}

	workflows, err := uc.repo.Workflow().List(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list workflows")
	}

	return workflows, nil
}

// CompleteStep finishes the current step of a workflow and advances it
func (uc *WorkflowUseCase) CompleteStep(ctx context.Context, workflowID int64, stepIndex int, comment string) (*model.Workflow, error) {
	workflow, err := uc.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if err := workflow.CompleteStep(stepIndex, comment, time.Now()); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Workflow().Update(ctx, workflow)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update workflow", goerr.V(WorkflowIDKey, workflowID))
	}

	recordAudit(ctx, uc.repo, types.AuditActionCompleteStep, "workflow", strconv.FormatInt(workflowID, 10), map[string]any{
		"step_index": stepIndex,
		"step_name":  updated.Steps[stepIndex].Name,
	})

	return updated, nil
}

// SkipStep skips the current step of a workflow and advances it
func (uc *WorkflowUseCase) SkipStep(ctx context.Context, workflowID int64, stepIndex int, comment string) (*model.Workflow, error) {
	workflow, err := uc.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if err := workflow.SkipStep(stepIndex, comment, time.Now()); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Workflow().Update(ctx, workflow)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update workflow", goerr.V(WorkflowIDKey, workflowID))
	}

	recordAudit(ctx, uc.repo, types.AuditActionSkipStep, "workflow", strconv.FormatInt(workflowID, 10), map[string]any{
		"step_index": stepIndex,
		"step_name":  updated.Steps[stepIndex].Name,
	})

	return updated, nil
}

// CancelWorkflow aborts an active workflow
func (uc *WorkflowUseCase) CancelWorkflow(ctx context.Context, workflowID int64) (*model.Workflow, error) {
	workflow, err := uc.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if err := workflow.Cancel(); err != nil {
		return nil, err
	}

	updated, err := uc.repo.Workflow().Update(ctx, workflow)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update workflow", goerr.V(WorkflowIDKey, workflowID))
	}

	recordAudit(ctx, uc.repo, types.AuditActionCancelWorkflow, "workflow", strconv.FormatInt(workflowID, 10), map[string]any{
		"title": updated.Title,
	})

	return updated, nil
}

// Templates returns the configured workflow templates
func (uc *WorkflowUseCase) Templates() []config.WorkflowTemplate {
	return uc.workflowConfig.Templates
}
