package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// localDir implements Service backed by a local directory. It is
// intended for development use; production deployments should use GCS.
type localDir struct {
	root string
}

// NewLocal creates a storage service backed by the given directory.
// The directory is created if it does not exist.
func NewLocal(root string) (Service, error) {
	if root == "" {
		return nil, goerr.New("storage directory is required")
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create storage directory", goerr.V("root", root))
	}

	return &localDir{root: root}, nil
}

// resolve maps a storage key to a path under the root directory.
// Keys that escape the root are rejected.
func (c *localDir) resolve(key string) (string, error) {
	if key == "" {
		return "", goerr.New("storage key is required")
	}

	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", goerr.New("invalid storage key", goerr.V("key", key))
	}

	return filepath.Join(c.root, clean), nil
}

func (c *localDir) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	p, err := c.resolve(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return goerr.Wrap(err, "failed to create object directory", goerr.V("key", key))
	}

	f, err := os.Create(p)
	if err != nil {
		return goerr.Wrap(err, "failed to create object file", goerr.V("key", key))
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return goerr.Wrap(err, "failed to write object file", goerr.V("key", key))
	}
	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object file", goerr.V("key", key))
	}
	return nil
}

func (c *localDir) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := c.resolve(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(ErrNotFound, "object not found", goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to open object file", goerr.V("key", key))
	}
	return f, nil
}

func (c *localDir) Delete(ctx context.Context, key string) error {
	p, err := c.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return goerr.Wrap(ErrNotFound, "object not found", goerr.V("key", key))
		}
		return goerr.Wrap(err, "failed to delete object file", goerr.V("key", key))
	}
	return nil
}
