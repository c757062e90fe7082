package storage

import (
	"context"
	"errors"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// gcsClient implements Service backed by Google Cloud Storage
type gcsClient struct {
	client *storage.Client
	bucket string
	prefix string
}

// GCSOption is a functional option for GCS client configuration
type GCSOption func(*gcsClient)

// WithPrefix sets the object key prefix for all stored objects
func WithPrefix(prefix string) GCSOption {
	return func(c *gcsClient) {
		c.prefix = prefix
	}
}

// NewGCS creates a storage service backed by the given GCS bucket
func NewGCS(ctx context.Context, bucket string, opts ...GCSOption) (Service, error) {
	if bucket == "" {
		return nil, goerr.New("GCS bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GCS client", goerr.V("bucket", bucket))
	}

	c := &gcsClient{
		client: client,
		bucket: bucket,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *gcsClient) object(key string) *storage.ObjectHandle {
	name := key
	if c.prefix != "" {
		name = path.Join(c.prefix, key)
	}
	return c.client.Bucket(c.bucket).Object(name)
}

func (c *gcsClient) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	w := c.object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write object", goerr.V("bucket", c.bucket), goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object", goerr.V("bucket", c.bucket), goerr.V("key", key))
	}
	return nil
}

func (c *gcsClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := c.object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(ErrNotFound, "object not found in GCS", goerr.V("bucket", c.bucket), goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to read object", goerr.V("bucket", c.bucket), goerr.V("key", key))
	}
	return r, nil
}

func (c *gcsClient) Delete(ctx context.Context, key string) error {
	if err := c.object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return goerr.Wrap(ErrNotFound, "object not found in GCS", goerr.V("bucket", c.bucket), goerr.V("key", key))
		}
		return goerr.Wrap(err, "failed to delete object", goerr.V("bucket", c.bucket), goerr.V("key", key))
	}
	return nil
}
