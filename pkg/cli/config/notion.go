package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/jungkj/riscura-sub000/pkg/service/notion"
)

// Notion holds configuration for the Notion integration
type Notion struct {
	token      string
	databaseID string
}

// Flags returns CLI flags for Notion configuration
func (n *Notion) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "notion-token",
			Usage:       "Notion integration token",
			Category:    "Notion",
			Sources:     cli.EnvVars("RISCURA_NOTION_TOKEN"),
			Destination: &n.token,
		},
		&cli.StringFlag{
			Name:        "notion-database-id",
			Usage:       "Notion database ID to ingest policy pages from",
			Category:    "Notion",
			Sources:     cli.EnvVars("RISCURA_NOTION_DATABASE_ID"),
			Destination: &n.databaseID,
		},
	}
}

// LogValue implements slog.LogValuer, hiding the token
func (n Notion) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("token.len", len(n.token)),
		slog.String("database_id", n.databaseID),
	)
}

// DatabaseID returns the configured database ID
func (n *Notion) DatabaseID() string {
	return n.databaseID
}

// IsConfigured returns true if both token and database ID are set
func (n *Notion) IsConfigured() bool {
	return n.token != "" && n.databaseID != ""
}

// Configure creates a Notion service from the configured flags.
// Returns nil if the token is not set (Notion ingestion will be
// disabled).
func (n *Notion) Configure() (notion.Service, error) {
	if n.token == "" {
		return nil, nil
	}

	svc, err := notion.New(n.token)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Notion service")
	}

	return svc, nil
}
