package http

import (
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/jungkj/riscura-sub000/pkg/usecase"
)

type stepRequest struct {
	Name          string     `json:"name"`
	AssigneeEmail string     `json:"assignee_email"`
	DueAt         *time.Time `json:"due_at"`
	EscalateAfter string     `json:"escalate_after"` // Go duration string, e.g. "48h"
}

type workflowRequest struct {
	Title      string        `json:"title"`
	Kind       string        `json:"kind"`
	TemplateID string        `json:"template_id"`
	TargetType string        `json:"target_type"`
	TargetID   int64         `json:"target_id"`
	Steps      []stepRequest `json:"steps"`
	Assignees  []string      `json:"assignees"`
	DueDates   []*time.Time  `json:"due_dates"`
}

type stepResponse struct {
	Name          string     `json:"name"`
	AssigneeEmail string     `json:"assignee_email,omitempty"`
	Status        string     `json:"status"`
	DueAt         *time.Time `json:"due_at,omitempty"`
	EscalateAfter string     `json:"escalate_after,omitempty"`
	EscalatedAt   *time.Time `json:"escalated_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Comment       string     `json:"comment,omitempty"`
}

type workflowResponse struct {
	ID         int64          `json:"id"`
	Title      string         `json:"title"`
	Kind       string         `json:"kind,omitempty"`
	TargetType string         `json:"target_type,omitempty"`
	TargetID   int64          `json:"target_id,omitempty"`
	Status     string         `json:"status"`
	Steps      []stepResponse `json:"steps"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func newWorkflowResponse(wf *model.Workflow) workflowResponse {
	resp := workflowResponse{
		ID:         wf.ID,
		Title:      wf.Title,
		Kind:       wf.Kind,
		TargetType: wf.TargetType,
		TargetID:   wf.TargetID,
		Status:     wf.Status.String(),
		Steps:      make([]stepResponse, len(wf.Steps)),
		CreatedAt:  wf.CreatedAt,
		UpdatedAt:  wf.UpdatedAt,
	}
	for i, step := range wf.Steps {
		sr := stepResponse{
			Name:          step.Name,
			AssigneeEmail: step.AssigneeEmail,
			Status:        step.Status.String(),
			DueAt:         step.DueAt,
			EscalatedAt:   step.EscalatedAt,
			CompletedAt:   step.CompletedAt,
			Comment:       step.Comment,
		}
		if step.EscalateAfter > 0 {
			sr.EscalateAfter = step.EscalateAfter.String()
		}
		resp.Steps[i] = sr
	}
	return resp
}

func workflowListHandler(uc *usecase.WorkflowUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status *types.WorkflowStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			parsed, err := types.ParseWorkflowStatus(raw)
			if err != nil {
				handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "invalid status filter", goerr.V("status", raw)))
				return
			}
			status = &parsed
		}

		workflows, err := uc.ListWorkflows(r.Context(), status)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		resp := make([]workflowResponse, len(workflows))
		for i, wf := range workflows {
			resp[i] = newWorkflowResponse(wf)
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"workflows": resp,
		})
	}
}

// workflowCreateHandler starts a workflow, either from a configured
// template (template_id set) or from an ad-hoc step list
func workflowCreateHandler(uc *usecase.WorkflowUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req workflowRequest
		if err := decodeBody(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		var wf *model.Workflow
		var err error
		if req.TemplateID != "" {
			wf, err = uc.CreateWorkflowFromTemplate(r.Context(), usecase.TemplateWorkflowInput{
				TemplateID: req.TemplateID,
				Title:      req.Title,
				TargetType: req.TargetType,
				TargetID:   req.TargetID,
				Assignees:  req.Assignees,
				DueDates:   req.DueDates,
			})
		} else {
			input := usecase.WorkflowInput{
				Title:      req.Title,
				Kind:       req.Kind,
				TargetType: req.TargetType,
				TargetID:   req.TargetID,
			}
			for _, step := range req.Steps {
				var escalateAfter time.Duration
				if step.EscalateAfter != "" {
					escalateAfter, err = time.ParseDuration(step.EscalateAfter)
					if err != nil {
						handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "invalid escalate_after duration",
							goerr.V("value", step.EscalateAfter)))
						return
					}
				}
				input.Steps = append(input.Steps, usecase.StepInput{
					Name:          step.Name,
					AssigneeEmail: step.AssigneeEmail,
					DueAt:         step.DueAt,
					EscalateAfter: escalateAfter,
				})
			}
			wf, err = uc.CreateWorkflow(r.Context(), input)
		}
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusCreated, newWorkflowResponse(wf))
	}
}

func workflowTemplatesHandler(uc *usecase.WorkflowUseCase) http.HandlerFunc {
	type templateStepResponse struct {
		Name          string `json:"name"`
		EscalateAfter string `json:"escalate_after,omitempty"`
	}
	type templateResponse struct {
		ID    string                 `json:"id"`
		Name  string                 `json:"name"`
		Kind  string                 `json:"kind,omitempty"`
		Steps []templateStepResponse `json:"steps"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		templates := uc.Templates()
		resp := make([]templateResponse, len(templates))
		for i, tpl := range templates {
			tr := templateResponse{
				ID:    tpl.ID,
				Name:  tpl.Name,
				Kind:  tpl.Kind,
				Steps: make([]templateStepResponse, len(tpl.Steps)),
			}
			for j, step := range tpl.Steps {
				tr.Steps[j] = templateStepResponse{Name: step.Name}
				if step.EscalateAfter > 0 {
					tr.Steps[j].EscalateAfter = step.EscalateAfter.String()
				}
			}
			resp[i] = tr
		}

		writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"templates": resp,
		})
	}
}

func workflowGetHandler(uc *usecase.WorkflowUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "workflowID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		wf, err := uc.GetWorkflow(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newWorkflowResponse(wf))
	}
}

func workflowCancelHandler(uc *usecase.WorkflowUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "workflowID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		wf, err := uc.CancelWorkflow(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newWorkflowResponse(wf))
	}
}

type stepActionRequest struct {
	Comment string `json:"comment"`
}

func stepCompleteHandler(uc *usecase.WorkflowUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "workflowID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		index, err := pathInt(r, "stepIndex")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		var req stepActionRequest
		if r.ContentLength > 0 {
			if err := decodeBody(r, &req); err != nil {
				handleError(r.Context(), w, err)
				return
			}
		}

		wf, err := uc.CompleteStep(r.Context(), id, index, req.Comment)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newWorkflowResponse(wf))
	}
}

func stepSkipHandler(uc *usecase.WorkflowUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "workflowID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		index, err := pathInt(r, "stepIndex")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		var req stepActionRequest
		if r.ContentLength > 0 {
			if err := decodeBody(r, &req); err != nil {
				handleError(r.Context(), w, err)
				return
			}
		}

		wf, err := uc.SkipStep(r.Context(), id, index, req.Comment)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newWorkflowResponse(wf))
	}
}
