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

type controlRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	Effectiveness string `json:"effectiveness"`
	OwnerEmail    string `json:"owner_email"`
	Reference     string `json:"reference"`
}

func (req *controlRequest) input() usecase.ControlInput {
	return usecase.ControlInput{
		Name:          req.Name,
		Description:   req.Description,
		Type:          types.ControlType(req.Type),
		Status:        types.ControlStatus(req.Status),
		Effectiveness: types.Effectiveness(req.Effectiveness),
		OwnerEmail:    req.OwnerEmail,
		Reference:     req.Reference,
	}
}

type controlResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	Effectiveness string    `json:"effectiveness"`
	OwnerEmail    string    `json:"owner_email,omitempty"`
	Reference     string    `json:"reference,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newControlResponse(control *model.Control) controlResponse {
	return controlResponse{
		ID:            control.ID,
		Name:          control.Name,
		Description:   control.Description,
		Type:          control.Type.String(),
		Status:        control.Status.String(),
		Effectiveness: control.Effectiveness.String(),
		OwnerEmail:    control.OwnerEmail,
		Reference:     control.Reference,
		CreatedAt:     control.CreatedAt,
		UpdatedAt:     control.UpdatedAt,
	}
}

func newControlResponses(controls []*model.Control) []controlResponse {
	resp := make([]controlResponse, len(controls))
	for i, control := range controls {
		resp[i] = newControlResponse(control)
	}
	return resp
}

func controlListHandler(uc *usecase.ControlUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var filter usecase.ControlFilter

		if raw := q.Get("type"); raw != "" {
			controlType, err := types.ParseControlType(raw)
			if err != nil {
				handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "invalid type filter", goerr.V("type", raw)))
				return
			}
			filter.Type = &controlType
		}
		if raw := q.Get("status"); raw != "" {
			status, err := types.ParseControlStatus(raw)
			if err != nil {
				handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "invalid status filter", goerr.V("status", raw)))
				return
			}
			filter.Status = &status
		}
		if raw := q.Get("effectiveness"); raw != "" {
			effectiveness, err := types.ParseEffectiveness(raw)
			if err != nil {
				handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "invalid effectiveness filter", goerr.V("effectiveness", raw)))
				return
			}
			filter.Effectiveness = &effectiveness
		}

		controls, err := uc.ListControls(r.Context(), filter)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"controls": newControlResponses(controls),
		})
	}
}

func controlCreateHandler(uc *usecase.ControlUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req controlRequest
		if err := decodeBody(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		control, err := uc.CreateControl(r.Context(), req.input())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusCreated, newControlResponse(control))
	}
}

func controlGetHandler(uc *usecase.ControlUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "controlID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		control, err := uc.GetControl(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newControlResponse(control))
	}
}

func controlUpdateHandler(uc *usecase.ControlUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "controlID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		var req controlRequest
		if err := decodeBody(r, &req); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		control, err := uc.UpdateControl(r.Context(), id, req.input())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, newControlResponse(control))
	}
}

func controlDeleteHandler(uc *usecase.ControlUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "controlID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		if err := uc.DeleteControl(r.Context(), id); err != nil {
			handleError(r.Context(), w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func controlRisksHandler(uc *usecase.ControlUseCase, cfg *config.RiskConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "controlID")
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		risks, err := uc.ListRisksForControl(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"risks": newRiskResponses(risks, cfg),
		})
	}
}
