package http

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"

	"github.com/jungkj/riscura-sub000/pkg/domain/model/auth"
	"github.com/jungkj/riscura-sub000/pkg/utils/errutil"
)

// authMiddleware validates authentication for protected requests
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// For NoAuthn mode or when authUC is not configured, always use anonymous user
			if authUC == nil || authUC.IsNoAuthn() {
				token := auth.NewAnonymousUser()
				ctx := auth.ContextWithToken(r.Context(), token)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			tokenID, tokenSecret, ok := sessionFromCookies(r)
			if !ok {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			// Validate token
			token, err := authUC.ValidateToken(r.Context(), tokenID, tokenSecret)
			if err != nil {
				// Invalid token - return 401
				http.Error(w, "Invalid authentication token", http.StatusUnauthorized)
				return
			}

			// Add token to request context
			ctx := auth.ContextWithToken(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// recoverer turns handler panics into 500 responses. Panics are
// reported to Sentry when it is configured; http.ErrAbortHandler
// passes through untouched.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			hub := sentry.CurrentHub().Clone()
			hub.RecoverWithContext(r.Context(), rec)

			err, ok := rec.(error)
			if !ok {
				err = goerr.New("panic in HTTP handler", goerr.V("recovered", rec))
			}
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
