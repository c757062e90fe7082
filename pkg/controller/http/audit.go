package http

import (
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/usecase"
)

type auditEntryResponse struct {
	ID         string         `json:"id"`
	Actor      string         `json:"actor"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func newAuditEntryResponse(entry *model.AuditEntry) auditEntryResponse {
	return auditEntryResponse{
		ID:         string(entry.ID),
		Actor:      entry.Actor,
		Action:     entry.Action.String(),
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Details:    entry.Details,
		CreatedAt:  entry.CreatedAt,
	}
}

func auditListHandler(uc *usecase.AuditUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := usecase.AuditFilter{
			EntityType: q.Get("entity_type"),
			EntityID:   q.Get("entity_id"),
			Actor:      q.Get("actor"),
		}

		if raw := q.Get("since"); raw != "" {
			since, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "invalid since timestamp", goerr.V("since", raw)))
				return
			}
			filter.Since = &since
		}
		if raw := q.Get("until"); raw != "" {
			until, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "invalid until timestamp", goerr.V("until", raw)))
				return
			}
			filter.Until = &until
		}

		limit, err := queryInt(r, "limit", 0)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		offset, err := queryInt(r, "offset", 0)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		filter.Limit = limit
		filter.Offset = offset

		entries, err := uc.ListEntries(r.Context(), filter)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		resp := make([]auditEntryResponse, len(entries))
		for i, entry := range entries {
			resp[i] = newAuditEntryResponse(entry)
		}
		writeJSON(r.Context(), w, http.StatusOK, map[string]any{
			"entries": resp,
		})
	}
}
