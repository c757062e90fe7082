package usecase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model/auth"
	"github.com/jungkj/riscura-sub000/pkg/utils/logging"
	"github.com/jungkj/riscura-sub000/pkg/utils/safe"
)

// AuthUseCaseInterface is the authentication boundary the HTTP layer
// depends on. NoAuthnUseCase implements it for local development.
type AuthUseCaseInterface interface {
	GetAuthURL(ctx context.Context, state string) (string, error)
	HandleCallback(ctx context.Context, code string) (*auth.Token, error)
	ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error)
	Logout(ctx context.Context, tokenID auth.TokenID) error
	IsNoAuthn() bool
}

// AuthUseCase implements OIDC login against a configurable issuer
type AuthUseCase struct {
	repo         interfaces.Repository
	issuer       string
	clientID     string
	clientSecret string
	callbackURL  string
	cache        *authCache

	mu        sync.Mutex
	discovery *OpenIDConfiguration
}

func NewAuthUseCase(repo interfaces.Repository, issuer, clientID, clientSecret, callbackURL string) *AuthUseCase {
	return &AuthUseCase{
		repo:         repo,
		issuer:       issuer,
		clientID:     clientID,
		clientSecret: clientSecret,
		callbackURL:  callbackURL,
		cache:        newAuthCache(),
	}
}

// OpenIDConfiguration represents the issuer's OpenID Connect discovery
// document
type OpenIDConfiguration struct {
	Issuer                           string   `json:"issuer"`
	AuthorizationEndpoint            string   `json:"authorization_endpoint"`
	TokenEndpoint                    string   `json:"token_endpoint"`
	UserinfoEndpoint                 string   `json:"userinfo_endpoint"`
	JWKSURI                          string   `json:"jwks_uri"`
	ScopesSupported                  []string `json:"scopes_supported"`
	ResponseTypesSupported           []string `json:"response_types_supported"`
	SubjectTypesSupported            []string `json:"subject_types_supported"`
	IDTokenSigningAlgValuesSupported []string `json:"id_token_signing_alg_values_supported"`
	ClaimsSupported                  []string `json:"claims_supported"`
}

// GetAuthURL returns the issuer's authorization URL for the login
// redirect
func (uc *AuthUseCase) GetAuthURL(ctx context.Context, state string) (string, error) {
	config, err := uc.openIDConfiguration(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get OpenID configuration")
	}

	params := url.Values{}
	params.Set("client_id", uc.clientID)
	params.Set("scope", "openid email profile")
	params.Set("redirect_uri", uc.callbackURL)
	params.Set("response_type", "code")
	params.Set("state", state)

	return config.AuthorizationEndpoint + "?" + params.Encode(), nil
}

// IsNoAuthn returns false for regular AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// tokenResponse represents the issuer's token endpoint response
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int    `json:"expires_in"`
	IDToken          string `json:"id_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// idTokenClaims represents the identity claims of a verified ID token
type idTokenClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HandleCallback processes the OAuth callback
func (uc *AuthUseCase) HandleCallback(ctx context.Context, code string) (*auth.Token, error) {
	// Exchange code for tokens
	tokenResp, err := uc.exchangeCodeForToken(ctx, code)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to exchange code for token")
	}

	if tokenResp.Error != "" {
		return nil, goerr.New("OIDC token endpoint returned an error",
			goerr.V("error", tokenResp.Error),
			goerr.V("error_description", tokenResp.ErrorDescription))
	}
	if tokenResp.IDToken == "" {
		return nil, goerr.New("token response carries no ID token")
	}

	// Decode and verify ID token
	claims, err := uc.decodeIDToken(ctx, tokenResp.IDToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode ID token")
	}

	// Create and store session token
	token := auth.NewToken(claims.Sub, claims.Email, claims.Name)
	if err := uc.repo.PutToken(ctx, token); err != nil {
		logger := logging.From(ctx)
		if data, jsonErr := json.Marshal(token); jsonErr == nil {
			logger.Error("failed to save token", "error", err, "token", string(data))
		}
		return nil, goerr.Wrap(err, "failed to store token", goerr.V("token", token))
	}

	return token, nil
}

// exchangeCodeForToken exchanges the authorization code at the
// issuer's token endpoint
func (uc *AuthUseCase) exchangeCodeForToken(ctx context.Context, code string) (*tokenResponse, error) {
	config, err := uc.openIDConfiguration(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get OpenID configuration")
	}

	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("client_id", uc.clientID)
	data.Set("client_secret", uc.clientSecret)
	data.Set("code", code)
	data.Set("redirect_uri", uc.callbackURL)

	encodedData := data.Encode()
	req, err := http.NewRequestWithContext(ctx, "POST", config.TokenEndpoint, strings.NewReader(encodedData))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.ContentLength = int64(len(encodedData))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to make token request")
	}
	defer safe.Close(ctx, resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response body")
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, goerr.Wrap(err, "failed to parse token response",
			goerr.V("status", resp.StatusCode))
	}

	return &tokenResp, nil
}

// openIDConfiguration fetches the issuer's discovery document once and
// caches it for the process lifetime
func (uc *AuthUseCase) openIDConfiguration(ctx context.Context) (*OpenIDConfiguration, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.discovery != nil {
		return uc.discovery, nil
	}

	discoveryURL := strings.TrimSuffix(uc.issuer, "/") + "/.well-known/openid-configuration"
	req, err := http.NewRequestWithContext(ctx, "GET", discoveryURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch OpenID configuration", goerr.V("url", discoveryURL))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("failed to fetch OpenID configuration",
			goerr.V("url", discoveryURL),
			goerr.V("status", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read OpenID configuration response")
	}

	var config OpenIDConfiguration
	if err := json.Unmarshal(body, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse OpenID configuration")
	}

	uc.discovery = &config
	return uc.discovery, nil
}

// decodeIDToken verifies the ID token against the issuer's public keys
// and extracts the identity claims
func (uc *AuthUseCase) decodeIDToken(ctx context.Context, idToken string) (*idTokenClaims, error) {
	config, err := uc.openIDConfiguration(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get OpenID configuration")
	}

	// Fetch the issuer's public JWK set from the discovered URI
	keySet, err := jwk.Fetch(ctx, config.JWKSURI)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch issuer's public keys", goerr.V("jwks_uri", config.JWKSURI))
	}

	// Parse and verify the JWT token.
	// Allow 10 seconds of clock skew to handle time synchronization differences
	token, err := jwt.Parse([]byte(idToken),
		jwt.WithKeySet(keySet),
		jwt.WithValidate(true),
		jwt.WithIssuer(config.Issuer),
		jwt.WithAudience(uc.clientID),
		jwt.WithAcceptableSkew(10*time.Second),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse or verify JWT token")
	}

	// Extract claims
	sub, ok := token.Get("sub")
	if !ok {
		return nil, goerr.New("sub claim not found in token")
	}

	email, ok := token.Get("email")
	if !ok {
		return nil, goerr.New("email claim not found in token")
	}

	name, ok := token.Get("name")
	if !ok {
		return nil, goerr.New("name claim not found in token")
	}

	// Convert to string values
	subStr, ok := sub.(string)
	if !ok {
		return nil, goerr.New("sub claim is not a string")
	}

	emailStr, ok := email.(string)
	if !ok {
		return nil, goerr.New("email claim is not a string")
	}

	nameStr, ok := name.(string)
	if !ok {
		return nil, goerr.New("name claim is not a string")
	}

	return &idTokenClaims{
		Sub:   subStr,
		Email: emailStr,
		Name:  nameStr,
	}, nil
}

// ValidateToken validates the session token and returns the identity
func (uc *AuthUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	return uc.validateTokenWithCache(ctx, tokenID, tokenSecret)
}

// Logout deletes the session token
func (uc *AuthUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	// Remove from cache first
	uc.cache.remove(tokenID)

	// Then remove from repository
	return uc.repo.DeleteToken(ctx, tokenID)
}
