package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/usecase"
	"github.com/jungkj/riscura-sub000/pkg/utils/errutil"
)

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

// handleError maps use case errors onto HTTP status codes and writes
// the JSON error body
func handleError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case usecase.IsNotFound(err):
		errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, usecase.ErrNotEditable),
		errors.Is(err, usecase.ErrNotPublished),
		errors.Is(err, usecase.ErrResponseNotOpen),
		errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrStepOutOfRange):
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
	default:
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
	}
}

// errorJSON writes a plain JSON error body. Routine auth failures use
// this instead of errutil so they are not logged as errors.
func errorJSON(ctx context.Context, w http.ResponseWriter, statusCode int, msg string) {
	writeJSON(ctx, w, statusCode, map[string]string{"error": msg})
}

// decodeBody decodes the JSON request body into dst
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return goerr.Wrap(usecase.ErrInvalidInput, "invalid request body",
			goerr.V("reason", err.Error()))
	}
	return nil
}

// pathID parses the named URL parameter as an int64 entity ID
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(usecase.ErrInvalidInput, "invalid ID parameter",
			goerr.V("param", name), goerr.V("value", raw))
	}
	return id, nil
}

// pathInt parses the named URL parameter as an int
func pathInt(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, goerr.Wrap(usecase.ErrInvalidInput, "invalid index parameter",
			goerr.V("param", name), goerr.V("value", raw))
	}
	return n, nil
}

// queryInt parses an optional integer query parameter, returning def
// when it is absent
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, goerr.Wrap(usecase.ErrInvalidInput, "invalid integer parameter",
			goerr.V("param", name), goerr.V("value", raw))
	}
	return n, nil
}
