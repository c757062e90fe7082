package http_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
)

type riskPayload struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	CategoryID       string     `json:"category_id"`
	OwnerEmail       string     `json:"owner_email"`
	Status           string     `json:"status"`
	LikelihoodID     string     `json:"likelihood_id"`
	ImpactID         string     `json:"impact_id"`
	Score            int        `json:"score"`
	Severity         string     `json:"severity"`
	ResidualScore    *int       `json:"residual_score"`
	ResidualSeverity string     `json:"residual_severity"`
	DueDate          *time.Time `json:"due_date"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func TestRiskAPI_Create(t *testing.T) {
	handler, _ := setupServer(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/risks", map[string]any{
		"title":         "Credential stuffing against customer portal",
		"description":   "Bot traffic reusing leaked credentials",
		"category_id":   "security",
		"owner_email":   "sec-lead@example.com",
		"likelihood_id": "likely",
		"impact_id":     "severe",
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	var risk riskPayload
	parseJSON(t, rec, &risk)

	gt.Number(t, risk.ID).GreaterOrEqual(1)
	gt.Value(t, risk.Title).Equal("Credential stuffing against customer portal")
	gt.Value(t, risk.CategoryID).Equal("security")
	gt.Value(t, risk.Status).Equal("identified")
	gt.Value(t, risk.Score).Equal(25)
	gt.Value(t, risk.Severity).Equal("critical")
	gt.Value(t, risk.ResidualScore).Nil()
	gt.Bool(t, risk.CreatedAt.IsZero()).False()

	t.Run("missing title", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/risks", map[string]any{
			"likelihood_id": "rare",
			"impact_id":     "minor",
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unknown category", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/risks", map[string]any{
			"title":       "Some risk",
			"category_id": "astrology",
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("residual pair must be complete", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/risks", map[string]any{
			"title":               "Half residual",
			"residual_likelihood": "rare",
		})
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/risks", "not an object")
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestRiskAPI_CreateWithResidual(t *testing.T) {
	handler, _ := setupServer(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/risks", map[string]any{
		"title":               "Third-party outage",
		"likelihood_id":       "likely",
		"impact_id":           "severe",
		"residual_likelihood": "rare",
		"residual_impact":     "minor",
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	var risk riskPayload
	parseJSON(t, rec, &risk)

	gt.Value(t, risk.Score).Equal(25)
	gt.Value(t, risk.ResidualScore).NotNil()
	gt.Value(t, *risk.ResidualScore).Equal(1)
	gt.Value(t, risk.ResidualSeverity).Equal("low")
}

func TestRiskAPI_GetUpdateDelete(t *testing.T) {
	handler, _ := setupServer(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/risks", map[string]any{
		"title":         "Laptop theft",
		"category_id":   "security",
		"likelihood_id": "possible",
		"impact_id":     "moderate",
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	var created riskPayload
	parseJSON(t, rec, &created)

	t.Run("get", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, fmt.Sprintf("/api/risks/%d", created.ID), nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var risk riskPayload
		parseJSON(t, rec, &risk)
		gt.Value(t, risk.ID).Equal(created.ID)
		gt.Value(t, risk.Title).Equal("Laptop theft")
		gt.Value(t, risk.Score).Equal(9)
		gt.Value(t, risk.Severity).Equal("medium")
	})

	t.Run("get unknown ID", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/risks/99999", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("get non-numeric ID", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/risks/abc", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("update", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPut, fmt.Sprintf("/api/risks/%d", created.ID), map[string]any{
			"title":         "Laptop theft",
			"category_id":   "security",
			"status":        "mitigating",
			"likelihood_id": "rare",
			"impact_id":     "moderate",
		})
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var risk riskPayload
		parseJSON(t, rec, &risk)
		gt.Value(t, risk.Status).Equal("mitigating")
		gt.Value(t, risk.Score).Equal(3)
		gt.Value(t, risk.Severity).Equal("low")
	})

	t.Run("update unknown ID", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPut, "/api/risks/99999", map[string]any{
			"title": "Ghost",
		})
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodDelete, fmt.Sprintf("/api/risks/%d", created.ID), nil)
		gt.Value(t, rec.Code).Equal(http.StatusNoContent)

		rec = doRequest(t, handler, http.MethodGet, fmt.Sprintf("/api/risks/%d", created.ID), nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestRiskAPI_ListFilters(t *testing.T) {
	handler, _ := setupServer(t)

	seed := []map[string]any{
		{"title": "Phishing campaign", "category_id": "security", "owner_email": "alice@example.com", "likelihood_id": "likely", "impact_id": "severe"},
		{"title": "Missing DPA", "category_id": "compliance", "owner_email": "bob@example.com", "likelihood_id": "possible", "impact_id": "moderate"},
		{"title": "Printer jam", "category_id": "security", "owner_email": "alice@example.com", "likelihood_id": "rare", "impact_id": "minor"},
	}
	for _, body := range seed {
		rec := doRequest(t, handler, http.MethodPost, "/api/risks", body)
		gt.Value(t, rec.Code).Equal(http.StatusCreated)
	}

	type listResponse struct {
		Risks []riskPayload `json:"risks"`
	}

	t.Run("all risks ordered by score", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/risks", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp listResponse
		parseJSON(t, rec, &resp)
		gt.Array(t, resp.Risks).Length(3).Required()
		gt.Value(t, resp.Risks[0].Title).Equal("Phishing campaign")
		gt.Value(t, resp.Risks[2].Title).Equal("Printer jam")
	})

	t.Run("by category", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/risks?category=compliance", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp listResponse
		parseJSON(t, rec, &resp)
		gt.Array(t, resp.Risks).Length(1).Required()
		gt.Value(t, resp.Risks[0].Title).Equal("Missing DPA")
	})

	t.Run("by owner", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/risks?owner=alice@example.com", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp listResponse
		parseJSON(t, rec, &resp)
		gt.Array(t, resp.Risks).Length(2)
	})

	t.Run("by severity", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/risks?severity=critical", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp listResponse
		parseJSON(t, rec, &resp)
		gt.Array(t, resp.Risks).Length(1).Required()
		gt.Value(t, resp.Risks[0].Title).Equal("Phishing campaign")
	})

	t.Run("invalid status filter", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/risks?status=bogus", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("invalid severity filter", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/risks?severity=apocalyptic", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestRiskAPI_ControlLinks(t *testing.T) {
	handler, _ := setupServer(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/risks", map[string]any{
		"title":         "Ransomware via email",
		"likelihood_id": "possible",
		"impact_id":     "severe",
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	var risk riskPayload
	parseJSON(t, rec, &risk)

	rec = doRequest(t, handler, http.MethodPost, "/api/controls", map[string]any{
		"name": "Mail attachment sandboxing",
		"type": "preventive",
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	var control struct {
		ID int64 `json:"id"`
	}
	parseJSON(t, rec, &control)

	linkPath := fmt.Sprintf("/api/risks/%d/controls", risk.ID)

	rec = doRequest(t, handler, http.MethodPost, linkPath, map[string]any{"control_id": control.ID})
	gt.Value(t, rec.Code).Equal(http.StatusNoContent)

	t.Run("linked controls are listed", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, linkPath, nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp struct {
			Controls []struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"controls"`
		}
		parseJSON(t, rec, &resp)
		gt.Array(t, resp.Controls).Length(1).Required()
		gt.Value(t, resp.Controls[0].Name).Equal("Mail attachment sandboxing")
	})

	t.Run("link unknown control", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, linkPath, map[string]any{"control_id": int64(4242)})
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("unlink", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodDelete, fmt.Sprintf("%s/%d", linkPath, control.ID), nil)
		gt.Value(t, rec.Code).Equal(http.StatusNoContent)

		rec = doRequest(t, handler, http.MethodGet, linkPath, nil)
		var resp struct {
			Controls []struct {
				ID int64 `json:"id"`
			} `json:"controls"`
		}
		parseJSON(t, rec, &resp)
		gt.Array(t, resp.Controls).Length(0)
	})
}
