package http

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/jungkj/riscura-sub000/pkg/domain/model/auth"
	"github.com/jungkj/riscura-sub000/pkg/usecase"
)

type AuthUseCase = usecase.AuthUseCaseInterface

const (
	stateCookieName       = "oauth_state"
	tokenIDCookieName     = "token_id"
	tokenSecretCookieName = "token_secret"

	// stateCookieMaxAge bounds how long a login attempt may take
	stateCookieMaxAge = 300
)

type userMeResponse struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// generateState generates a random state parameter for OAuth
func generateState() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", goerr.Wrap(err, "failed to generate random state")
	}
	return hex.EncodeToString(bytes), nil
}

// sessionCookie builds an HttpOnly cookie scoped to the whole site.
// Secure is set when the request itself arrived over TLS.
func sessionCookie(r *http.Request, name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
}

func clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	c := sessionCookie(r, name, "")
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// authLoginHandler starts the OIDC login flow. A random state value is
// stored in a short-lived cookie and checked again on callback.
func authLoginHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if authUC.IsNoAuthn() {
			http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
			return
		}

		state, err := generateState()
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		stateCookie := sessionCookie(r, stateCookieName, state)
		stateCookie.MaxAge = stateCookieMaxAge
		http.SetCookie(w, stateCookie)

		authURL, err := authUC.GetAuthURL(r.Context(), state)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
	}
}

// authCallbackHandler finishes the OIDC flow: it verifies the state
// parameter, exchanges the authorization code for a session token, and
// sets the session cookies.
func authCallbackHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stateCookie, err := r.Cookie(stateCookieName)
		if err != nil {
			handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "missing state cookie"))
			return
		}

		state := r.URL.Query().Get("state")
		if state == "" || state != stateCookie.Value {
			handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "invalid state parameter"))
			return
		}
		clearCookie(w, r, stateCookieName)

		code := r.URL.Query().Get("code")
		if code == "" {
			handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "missing authorization code"))
			return
		}

		token, err := authUC.HandleCallback(r.Context(), code)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		setTokenCookies(w, r, token.ID.String(), string(token.Secret), token.ExpiresAt)
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
	}
}

func setTokenCookies(w http.ResponseWriter, r *http.Request, id, secret string, expiresAt time.Time) {
	idCookie := sessionCookie(r, tokenIDCookieName, id)
	idCookie.Expires = expiresAt
	http.SetCookie(w, idCookie)

	secretCookie := sessionCookie(r, tokenSecretCookieName, secret)
	secretCookie.Expires = expiresAt
	http.SetCookie(w, secretCookie)
}

// authLogoutHandler revokes the session token and clears the cookies.
// Logout without a session cookie still succeeds.
func authLogoutHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tokenIDCookie, err := r.Cookie(tokenIDCookieName); err == nil {
			tokenID := auth.TokenID(tokenIDCookie.Value)
			if err := authUC.Logout(r.Context(), tokenID); err != nil {
				handleError(r.Context(), w, goerr.Wrap(err, "failed to logout"))
				return
			}
		}

		clearCookie(w, r, tokenIDCookieName)
		clearCookie(w, r, tokenSecretCookieName)

		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

// authMeHandler returns the authenticated user's identity
func authMeHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// NoAuthn mode has no cookies; ValidateToken returns the
		// configured pseudo user.
		if authUC.IsNoAuthn() {
			token, err := authUC.ValidateToken(r.Context(), "", "")
			if err != nil {
				handleError(r.Context(), w, err)
				return
			}
			writeJSON(r.Context(), w, http.StatusOK, userMeResponse{
				Sub:   token.Sub,
				Email: token.Email,
				Name:  token.Name,
			})
			return
		}

		tokenID, tokenSecret, ok := sessionFromCookies(r)
		if !ok {
			errorJSON(r.Context(), w, http.StatusUnauthorized, "authentication required")
			return
		}

		token, err := authUC.ValidateToken(r.Context(), tokenID, tokenSecret)
		if err != nil {
			errorJSON(r.Context(), w, http.StatusUnauthorized, "invalid authentication token")
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, userMeResponse{
			Sub:   token.Sub,
			Email: token.Email,
			Name:  token.Name,
		})
	}
}

// sessionFromCookies extracts the session token pair from the request
func sessionFromCookies(r *http.Request) (auth.TokenID, auth.TokenSecret, bool) {
	idCookie, err := r.Cookie(tokenIDCookieName)
	if err != nil {
		return "", "", false
	}
	secretCookie, err := r.Cookie(tokenSecretCookieName)
	if err != nil {
		return "", "", false
	}
	return auth.TokenID(idCookie.Value), auth.TokenSecret(secretCookie.Value), true
}
