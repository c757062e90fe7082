package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"
)

// Firestore holds CLI flags for the Firestore connection. It is shared
// by the repository backend and the migrate command.
type Firestore struct {
	projectID  string
	databaseID string
}

// Flags returns CLI flags for Firestore configuration
func (f *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("RISCURA_FIRESTORE_PROJECT_ID"),
			Destination: &f.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Value:       "(default)",
			Sources:     cli.EnvVars("RISCURA_FIRESTORE_DATABASE_ID"),
			Destination: &f.databaseID,
		},
	}
}

// ProjectID returns the Firestore project ID
func (f *Firestore) ProjectID() string {
	return f.projectID
}

// DatabaseID returns the Firestore database ID
func (f *Firestore) DatabaseID() string {
	return f.databaseID
}

// IsConfigured returns true if a project ID is set
func (f *Firestore) IsConfigured() bool {
	return f.projectID != ""
}

// LogAttrs returns log attributes for the Firestore configuration
func (f *Firestore) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("project_id", f.projectID),
		slog.String("database_id", f.databaseID),
	}
}
