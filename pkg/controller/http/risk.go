package http

import (
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/model/config"
	"github.com/jungkj/riscura-sub000/pkg/domain/types"
	"github.com/jungkj/riscura-sub000/pkg/usecase"
)

type riskRequest struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	CategoryID         string     `json:"category_id"`
	OwnerEmail         string     `json:"owner_email"`
	Status             string     `json:"status"`
	LikelihoodID       string     `json:"likelihood_id"`
	ImpactID           string     `json:"impact_id"`
	ResidualLikelihood string     `json:"residual_likelihood"`
	ResidualImpact     string     `json:"residual_impact"`
	DueDate            *time.Time `json:"due_date"`
}

func (req *riskRequest) input() usecase.RiskInput {
	return usecase.RiskInput{
		Title:              req.Title,
		Description:        req.Description,
		CategoryID:         types.CategoryID(req.CategoryID),
		OwnerEmail:         req.OwnerEmail,
		Status:             types.RiskStatus(req.Status),
		LikelihoodID:       types.LikelihoodID(req.LikelihoodID),
		ImpactID:           types.ImpactID(req.ImpactID),
		ResidualLikelihood: types.LikelihoodID(req.ResidualLikelihood),
		ResidualImpact:     types.ImpactID(req.ResidualImpact),
		DueDate:            req.DueDate,
	}
}

type riskResponse struct {
	ID                 int64      `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	CategoryID         string     `json:"category_id,omitempty"`
	OwnerEmail         string     `json:"owner_email,omitempty"`
	Status             string     `json:"status"`
	LikelihoodID       string     `json:"likelihood_id"`
	ImpactID           string     `json:"impact_id"`
	Score              int        `json:"score"`
	Severity           string     `json:"severity"`
	ResidualLikelihood string     `json:"residual_likelihood,omitempty"`
	ResidualImpact     string     `json:"residual_impact,omitempty"`
	ResidualScore      *int       `json:"residual_score,omitempty"`
	ResidualSeverity   string     `json:"residual_severity,omitempty"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	SlackChannelID     string     `json:"slack_channel_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// newRiskResponse decorates a risk with its computed score and severity
func newRiskResponse(risk *model.Risk, cfg *config.RiskConfig) riskResponse {
	score := cfg.ScoreOf(risk.LikelihoodID, risk.ImpactID)
	resp := riskResponse{
		ID:                 risk.ID,
		Title:              risk.Title,
		Description:        risk.Description,
		CategoryID:         risk.CategoryID.String(),
		OwnerEmail:         risk.OwnerEmail,
		Status:             risk.Status.String(),
		LikelihoodID:       risk.LikelihoodID.String(),
		ImpactID:           risk.ImpactID.String(),
		Score:              score,
		Severity:           cfg.SeverityOf(score).String(),
		ResidualLikelihood: risk.ResidualLikelihood.String(),
		ResidualImpact:     risk.ResidualImpact.String(),
		DueDate:            risk.DueDate,
		SlackChannelID:     risk.SlackChannelID,
		CreatedAt:          risk.CreatedAt,
		UpdatedAt:          risk.UpdatedAt,
	}
	if risk.HasResidual() {
		residual := cfg.ScoreOf(risk.ResidualLikelihood, risk.ResidualImpact)
		resp.ResidualScore = &residual
		resp.ResidualSeverity = cfg.SeverityOf(residual).String()
	}
	return resp
}

func newRiskResponses(risks []*model.Risk, cfg *config.RiskConfig) []riskResponse {
	resp := make([]riskResponse, len(risks))
	for i, risk := range risks {
		resp[i] = newRiskResponse(risk, cfg)
	}
	return resp
}

func riskListHandler(uc *usecase.RiskUseCase, cfg *config.RiskConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := usecase.RiskFilter{OwnerEmail: q.Get("owner")}

		if raw := q.Get("status"); raw != "" {
			status, err := types.ParseRiskStatus(raw)
			if err != nil {
				handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "invalid status filter", goerr.V("status", raw)))
				return
			}
			filter.Status = &status
		}
		if raw := q.Get("category"); raw != "" {
			category := types.CategoryID(raw)
			filter.CategoryID = &category
		}
		if raw := q.Get("severity"); raw != "" {
			severity, err := types.ParseSeverity(raw)
			if err != nil {
				handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "invalid severity filter", goerr.V("severity", raw)))
				return
			}
			filter.Severity = &severity
		}

		risks, err := uc.ListRisks(r.Context(), filter)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"risks": newRiskResponses(risks, cfg),
		})
	}
}

func riskCreateHandler(uc *usecase.RiskUseCase, cfg *config.RiskConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req riskRequest
		if err := decodeBody(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		risk, err := uc.CreateRisk(r.Context(), req.input())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusCreated, newRiskResponse(risk, cfg))
	}
}

func riskGetHandler(uc *usecase.RiskUseCase, cfg *config.RiskConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "riskID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		risk, err := uc.GetRisk(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newRiskResponse(risk, cfg))
	}
}

func riskUpdateHandler(uc *usecase.RiskUseCase, cfg *config.RiskConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "riskID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		var req riskRequest
		if err := decodeBody(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		risk, err := uc.UpdateRisk(r.Context(), id, req.input())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newRiskResponse(risk, cfg))
	}
}

func riskDeleteHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "riskID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		if err := uc.DeleteRisk(r.Context(), id); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func riskControlsHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "riskID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		controls, err := uc.ListControlsForRisk(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"controls": newControlResponses(controls),
		})
	}
}

func riskLinkControlHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	type linkRequest struct {
		ControlID int64 `json:"control_id"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "riskID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		var req linkRequest
		if err := decodeBody(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		if err := uc.LinkControl(r.Context(), id, req.ControlID); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func riskUnlinkControlHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "riskID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		controlID, err := pathID(r, "controlID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		if err := uc.UnlinkControl(r.Context(), id, controlID); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
