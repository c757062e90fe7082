package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/usecase"
	"github.com/jungkj/riscura-sub000/pkg/utils/logging"
)

// Auth holds configuration for OIDC authentication
type Auth struct {
	issuer       string
	clientID     string
	clientSecret string
	callbackURL  string
	noAuthn      bool
}

// Flags returns CLI flags for authentication configuration
func (a *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "auth-issuer",
			Usage:       "OIDC issuer URL",
			Category:    "Authentication",
			Value:       "https://accounts.google.com",
			Sources:     cli.EnvVars("RISCURA_AUTH_ISSUER"),
			Destination: &a.issuer,
		},
		&cli.StringFlag{
			Name:        "auth-client-id",
			Usage:       "OIDC client ID",
			Category:    "Authentication",
			Sources:     cli.EnvVars("RISCURA_AUTH_CLIENT_ID"),
			Destination: &a.clientID,
		},
		&cli.StringFlag{
			Name:        "auth-client-secret",
			Usage:       "OIDC client secret",
			Category:    "Authentication",
			Sources:     cli.EnvVars("RISCURA_AUTH_CLIENT_SECRET"),
			Destination: &a.clientSecret,
		},
		&cli.StringFlag{
			Name:        "auth-callback-url",
			Usage:       "OIDC redirect URL, e.g. https://riscura.example.com/api/auth/callback",
			Category:    "Authentication",
			Sources:     cli.EnvVars("RISCURA_AUTH_CALLBACK_URL"),
			Destination: &a.callbackURL,
		},
		&cli.BoolFlag{
			Name:        "no-authn",
			Usage:       "Disable authentication and act as an anonymous user (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("RISCURA_NO_AUTHN"),
			Destination: &a.noAuthn,
		},
	}
}

// LogValue implements slog.LogValuer, hiding the client secret
func (a Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("issuer", a.issuer),
		slog.String("client_id", a.clientID),
		slog.Int("client-secret.len", len(a.clientSecret)),
		slog.String("callback_url", a.callbackURL),
		slog.Bool("no_authn", a.noAuthn),
	)
}

// IsNoAuthn returns true if authentication is disabled
func (a *Auth) IsNoAuthn() bool {
	return a.noAuthn
}

// IsConfigured returns true if OIDC client credentials are set
func (a *Auth) IsConfigured() bool {
	return a.clientID != "" || a.clientSecret != "" || a.callbackURL != ""
}

// Configure creates an authentication use case from the configured
// flags. Returns nil if neither no-authn nor OIDC credentials are set;
// the server then mounts no auth endpoints and treats every request as
// anonymous.
func (a *Auth) Configure(repo interfaces.Repository) (usecase.AuthUseCaseInterface, error) {
	if a.noAuthn {
		if a.IsConfigured() {
			logging.Default().Warn("--no-authn is set, ignoring OIDC client configuration")
		}
		logging.Default().Warn("Authentication is disabled, all requests are anonymous")
		return usecase.NewNoAuthnUseCase(), nil
	}

	if !a.IsConfigured() {
		return nil, nil
	}

	if a.clientID == "" || a.clientSecret == "" || a.callbackURL == "" {
		return nil, goerr.New("incomplete OIDC configuration: auth-client-id, auth-client-secret and auth-callback-url are all required",
			goerr.V("client_id", a.clientID), goerr.V("callback_url", a.callbackURL))
	}

	return usecase.NewAuthUseCase(repo, a.issuer, a.clientID, a.clientSecret, a.callbackURL), nil
}
