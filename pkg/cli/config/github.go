package config

import (
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/jungkj/riscura-sub000/pkg/service/github"
)

// GitHub holds configuration for the GitHub App integration
type GitHub struct {
	appID          int
	installationID int
	privateKey     string
	repo           string
	label          string
}

// Flags returns CLI flags for GitHub App configuration
func (g *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Category:    "GitHub",
			Sources:     cli.EnvVars("RISCURA_GITHUB_APP_ID"),
			Destination: &g.appID,
		},
		&cli.IntFlag{
			Name:        "github-app-installation-id",
			Usage:       "GitHub App Installation ID",
			Category:    "GitHub",
			Sources:     cli.EnvVars("RISCURA_GITHUB_APP_INSTALLATION_ID"),
			Destination: &g.installationID,
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App Private Key (PEM string or file path)",
			Category:    "GitHub",
			Sources:     cli.EnvVars("RISCURA_GITHUB_APP_PRIVATE_KEY"),
			Destination: &g.privateKey,
		},
		&cli.StringFlag{
			Name:        "github-repo",
			Usage:       "Repository to ingest findings from, as owner/name",
			Category:    "GitHub",
			Sources:     cli.EnvVars("RISCURA_GITHUB_REPO"),
			Destination: &g.repo,
		},
		&cli.StringFlag{
			Name:        "github-label",
			Usage:       "Issue label that marks findings to ingest",
			Category:    "GitHub",
			Value:       github.DefaultFindingLabel,
			Sources:     cli.EnvVars("RISCURA_GITHUB_LABEL"),
			Destination: &g.label,
		},
	}
}

// LogAttrs returns log attributes for the GitHub configuration (key hidden)
func (g *GitHub) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("app_id", g.appID),
		slog.Int("installation_id", g.installationID),
		slog.String("repo", g.repo),
		slog.String("label", g.label),
	}
}

// IsConfigured returns true if all required GitHub App flags are set
func (g *GitHub) IsConfigured() bool {
	return g.appID != 0 && g.installationID != 0 && g.privateKey != "" && g.repo != ""
}

// Repo returns the owner and name parts of the configured repository
func (g *GitHub) Repo() (owner, name string, err error) {
	owner, name, ok := strings.Cut(g.repo, "/")
	if !ok || owner == "" || name == "" {
		return "", "", goerr.New("github-repo must be owner/name", goerr.V("repo", g.repo))
	}
	return owner, name, nil
}

// Label returns the configured finding label
func (g *GitHub) Label() string {
	return g.label
}

// Configure creates a new GitHub Service from the configured flags.
// Returns nil if not all flags are configured (GitHub ingestion will
// be disabled).
func (g *GitHub) Configure() (github.Service, error) {
	if !g.IsConfigured() {
		return nil, nil
	}

	if _, _, err := g.Repo(); err != nil {
		return nil, err
	}

	svc, err := github.New(int64(g.appID), int64(g.installationID), g.privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub service")
	}

	return svc, nil
}
