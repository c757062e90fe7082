package storage

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
)

// ErrNotFound is returned when the requested object does not exist
var ErrNotFound = goerr.New("object not found")

// Service provides blob storage for document contents
type Service interface {
	// Put stores the content read from r under the given key
	Put(ctx context.Context, key string, r io.Reader, contentType string) error

	// Get returns a reader for the content stored under the given key.
	// The caller must close the returned reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content stored under the given key.
	// Deleting a missing object returns ErrNotFound.
	Delete(ctx context.Context, key string) error
}
