package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/jungkj/riscura-sub000/pkg/service/storage"
)

// Storage holds CLI flags for document blob storage configuration
type Storage struct {
	backend string
	bucket  string
	prefix  string
	dir     string
}

// Flags returns CLI flags for storage configuration
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Document storage backend (gcs or local, empty disables document upload)",
			Category:    "Storage",
			Sources:     cli.EnvVars("RISCURA_STORAGE_BACKEND"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "storage-bucket",
			Usage:       "GCS bucket name (required when using gcs backend)",
			Category:    "Storage",
			Sources:     cli.EnvVars("RISCURA_STORAGE_BUCKET"),
			Destination: &s.bucket,
		},
		&cli.StringFlag{
			Name:        "storage-prefix",
			Usage:       "Object key prefix for the gcs backend",
			Category:    "Storage",
			Sources:     cli.EnvVars("RISCURA_STORAGE_PREFIX"),
			Destination: &s.prefix,
		},
		&cli.StringFlag{
			Name:        "storage-dir",
			Usage:       "Root directory for the local backend",
			Category:    "Storage",
			Sources:     cli.EnvVars("RISCURA_STORAGE_DIR"),
			Destination: &s.dir,
		},
	}
}

// Backend returns the configured backend type
func (s *Storage) Backend() string {
	return s.backend
}

// LogAttrs returns log attributes for the storage configuration
func (s *Storage) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("backend", s.backend),
		slog.String("bucket", s.bucket),
		slog.String("dir", s.dir),
	}
}

// Configure creates a storage service from the configured flags.
// Returns nil if no backend is set (document upload will be disabled).
func (s *Storage) Configure(ctx context.Context) (storage.Service, error) {
	switch s.backend {
	case "":
		return nil, nil

	case "gcs":
		if s.bucket == "" {
			return nil, goerr.New("storage-bucket is required when using gcs backend")
		}
		var opts []storage.GCSOption
		if s.prefix != "" {
			opts = append(opts, storage.WithPrefix(s.prefix))
		}
		svc, err := storage.NewGCS(ctx, s.bucket, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create GCS storage")
		}
		return svc, nil

	case "local":
		if s.dir == "" {
			return nil, goerr.New("storage-dir is required when using local backend")
		}
		svc, err := storage.NewLocal(s.dir)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create local storage")
		}
		return svc, nil

	default:
		return nil, goerr.New("invalid storage backend", goerr.V("backend", s.backend))
	}
}
