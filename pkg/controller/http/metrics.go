package http

import (
	"net/http"

	"github.com/jungkj/riscura-sub000/pkg/usecase"
)

func dashboardHandler(uc *usecase.MetricsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dashboard, err := uc.Dashboard(r.Context())
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, dashboard)
	}
}
