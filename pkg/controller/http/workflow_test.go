package http_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/jungkj/riscura-sub000/pkg/domain/model/config"
	"github.com/jungkj/riscura-sub000/pkg/usecase"
)

type workflowBody struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Kind   string `json:"kind"`
	Status string `json:"status"`
	Steps  []struct {
		Name          string     `json:"name"`
		AssigneeEmail string     `json:"assignee_email"`
		Status        string     `json:"status"`
		EscalateAfter string     `json:"escalate_after"`
		CompletedAt   *time.Time `json:"completed_at"`
		Comment       string     `json:"comment"`
	} `json:"steps"`
}

func TestWorkflowAPI_AdHoc(t *testing.T) {
	handler, _ := setupServer(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/workflows", map[string]any{
		"title": "Q3 policy review",
		"kind":  "review",
		"steps": []map[string]any{
			{"name": "Draft review", "assignee_email": "writer@example.com", "escalate_after": "48h"},
			{"name": "Security sign-off", "assignee_email": "security@example.com"},
			{"name": "Final approval"},
		},
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	var wf workflowBody
	parseJSON(t, rec, &wf)
	gt.Value(t, wf.Status).Equal("active")
	gt.Array(t, wf.Steps).Length(3).Required()
	gt.Value(t, wf.Steps[0].Status).Equal("active")
	gt.Value(t, wf.Steps[0].EscalateAfter).Equal("48h0m0s")
	gt.Value(t, wf.Steps[1].Status).Equal("pending")
	gt.Value(t, wf.Steps[2].Status).Equal("pending")

	base := fmt.Sprintf("/api/workflows/%d", wf.ID)

	t.Run("only the current step can be completed", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, base+"/steps/1/complete", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("step index out of range", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, base+"/steps/9/complete", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("complete advances to the next step", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, base+"/steps/0/complete", map[string]any{
			"comment": "looks good",
		})
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var wf workflowBody
		parseJSON(t, rec, &wf)
		gt.Value(t, wf.Steps[0].Status).Equal("completed")
		gt.Value(t, wf.Steps[0].Comment).Equal("looks good")
		gt.Value(t, wf.Steps[0].CompletedAt).NotNil()
		gt.Value(t, wf.Steps[1].Status).Equal("active")
	})

	t.Run("skip advances as well", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, base+"/steps/1/skip", map[string]any{
			"comment": "assignee on leave",
		})
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var wf workflowBody
		parseJSON(t, rec, &wf)
		gt.Value(t, wf.Steps[1].Status).Equal("skipped")
		gt.Value(t, wf.Steps[2].Status).Equal("active")
	})

	t.Run("last step completes the workflow", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, base+"/steps/2/complete", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var wf workflowBody
		parseJSON(t, rec, &wf)
		gt.Value(t, wf.Status).Equal("completed")
	})

	t.Run("completed workflow rejects step actions", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, base+"/steps/2/complete", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestWorkflowAPI_Validation(t *testing.T) {
	handler, _ := setupServer(t)

	t.Run("title required", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/workflows", map[string]any{
			"steps": []map[string]any{{"name": "Step"}},
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("at least one step required", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/workflows", map[string]any{
			"title": "No steps",
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("invalid escalate_after", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/workflows", map[string]any{
			"title": "Bad duration",
			"steps": []map[string]any{
				{"name": "Step", "escalate_after": "2 days"},
			},
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unknown target type", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/workflows", map[string]any{
			"title":       "Bad target",
			"target_type": "galaxy",
			"target_id":   1,
			"steps":       []map[string]any{{"name": "Step"}},
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("missing target entity", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/workflows", map[string]any{
			"title":       "Ghost risk",
			"target_type": "risk",
			"target_id":   4242,
			"steps":       []map[string]any{{"name": "Step"}},
		})
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestWorkflowAPI_TargetLink(t *testing.T) {
	handler, _ := setupServer(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/risks", map[string]any{
		"title":         "Expired TLS certificates",
		"likelihood_id": "possible",
		"impact_id":     "moderate",
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	var risk riskPayload
	parseJSON(t, rec, &risk)

	rec = doRequest(t, handler, http.MethodPost, "/api/workflows", map[string]any{
		"title":       "Risk acceptance sign-off",
		"target_type": "risk",
		"target_id":   risk.ID,
		"steps":       []map[string]any{{"name": "CISO approval"}},
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	var wf struct {
		TargetType string `json:"target_type"`
		TargetID   int64  `json:"target_id"`
	}
	parseJSON(t, rec, &wf)
	gt.Value(t, wf.TargetType).Equal("risk")
	gt.Value(t, wf.TargetID).Equal(risk.ID)
}

func TestWorkflowAPI_Cancel(t *testing.T) {
	handler, _ := setupServer(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/workflows", map[string]any{
		"title": "Doomed workflow",
		"steps": []map[string]any{{"name": "Step"}},
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	var wf workflowBody
	parseJSON(t, rec, &wf)

	base := fmt.Sprintf("/api/workflows/%d", wf.ID)

	rec = doRequest(t, handler, http.MethodPost, base+"/cancel", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var cancelled workflowBody
	parseJSON(t, rec, &cancelled)
	gt.Value(t, cancelled.Status).Equal("cancelled")

	t.Run("cancel is not repeatable", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, base+"/cancel", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func testWorkflowConfig() *config.WorkflowConfig {
	return &config.WorkflowConfig{
		Templates: []config.WorkflowTemplate{
			{
				ID:   "vendor-onboarding",
				Name: "Vendor onboarding",
				Kind: "approval",
				Steps: []config.TemplateStep{
					{Name: "Security review", EscalateAfter: 72 * time.Hour},
					{Name: "Legal review"},
					{Name: "Procurement sign-off"},
				},
			},
		},
	}
}

func TestWorkflowAPI_Templates(t *testing.T) {
	handler, _ := setupServer(t, usecase.WithWorkflowConfig(testWorkflowConfig()))

	t.Run("templates are listed", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/workflows/templates", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp struct {
			Templates []struct {
				ID    string `json:"id"`
				Name  string `json:"name"`
				Kind  string `json:"kind"`
				Steps []struct {
					Name          string `json:"name"`
					EscalateAfter string `json:"escalate_after"`
				} `json:"steps"`
			} `json:"templates"`
		}
		parseJSON(t, rec, &resp)
		gt.Array(t, resp.Templates).Length(1).Required()
		gt.Value(t, resp.Templates[0].ID).Equal("vendor-onboarding")
		gt.Array(t, resp.Templates[0].Steps).Length(3).Required()
		gt.Value(t, resp.Templates[0].Steps[0].EscalateAfter).Equal("72h0m0s")
	})

	t.Run("create from template", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/workflows", map[string]any{
			"template_id": "vendor-onboarding",
			"assignees":   []string{"sec@example.com", "legal@example.com", "buy@example.com"},
		})
		gt.Value(t, rec.Code).Equal(http.StatusCreated)

		var wf workflowBody
		parseJSON(t, rec, &wf)
		gt.Value(t, wf.Title).Equal("Vendor onboarding")
		gt.Value(t, wf.Kind).Equal("approval")
		gt.Array(t, wf.Steps).Length(3).Required()
		gt.Value(t, wf.Steps[0].Name).Equal("Security review")
		gt.Value(t, wf.Steps[0].AssigneeEmail).Equal("sec@example.com")
		gt.Value(t, wf.Steps[0].Status).Equal("active")
		gt.Value(t, wf.Steps[2].AssigneeEmail).Equal("buy@example.com")
	})

	t.Run("assignee count must match", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/workflows", map[string]any{
			"template_id": "vendor-onboarding",
			"assignees":   []string{"only-one@example.com"},
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unknown template", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/workflows", map[string]any{
			"template_id": "nonexistent",
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestWorkflowAPI_ListByStatus(t *testing.T) {
	handler, _ := setupServer(t)

	for _, title := range []string{"First", "Second"} {
		rec := doRequest(t, handler, http.MethodPost, "/api/workflows", map[string]any{
			"title": title,
			"steps": []map[string]any{{"name": "Step"}},
		})
		gt.Value(t, rec.Code).Equal(http.StatusCreated)
	}

	// Cancel the second one
	rec := doRequest(t, handler, http.MethodGet, "/api/workflows", nil)
	var all struct {
		Workflows []workflowBody `json:"workflows"`
	}
	parseJSON(t, rec, &all)
	gt.Array(t, all.Workflows).Length(2).Required()

	var target int64
	for _, wf := range all.Workflows {
		if wf.Title == "Second" {
			target = wf.ID
		}
	}
	rec = doRequest(t, handler, http.MethodPost, fmt.Sprintf("/api/workflows/%d/cancel", target), nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	t.Run("active only", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/workflows?status=active", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp struct {
			Workflows []workflowBody `json:"workflows"`
		}
		parseJSON(t, rec, &resp)
		gt.Array(t, resp.Workflows).Length(1).Required()
		gt.Value(t, resp.Workflows[0].Title).Equal("First")
	})

	t.Run("invalid status filter", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/workflows?status=debating", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}
