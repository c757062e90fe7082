package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/jungkj/riscura-sub000/pkg/service/storage"
	"github.com/m-mizutani/gt"
)

func TestNewLocal(t *testing.T) {
	t.Run("returns error when directory is empty", func(t *testing.T) {
		_, err := storage.NewLocal("")
		gt.Value(t, err).NotNil()
	})

	t.Run("creates the directory when missing", func(t *testing.T) {
		dir := t.TempDir() + "/nested/objects"
		svc, err := storage.NewLocal(dir)
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()

	svc, err := storage.NewLocal(t.TempDir())
	gt.NoError(t, err).Required()

	t.Run("put then get returns the stored content", func(t *testing.T) {
		key := "documents/0193e5a0-1111-7000-8000-000000000001"
		err := svc.Put(ctx, key, strings.NewReader("access control policy v3"), "text/plain")
		gt.NoError(t, err).Required()

		r, err := svc.Get(ctx, key)
		gt.NoError(t, err).Required()
		defer r.Close()

		body, err := io.ReadAll(r)
		gt.NoError(t, err).Required()
		gt.Value(t, string(body)).Equal("access control policy v3")
	})

	t.Run("put overwrites existing content", func(t *testing.T) {
		key := "documents/overwrite"
		gt.NoError(t, svc.Put(ctx, key, strings.NewReader("first"), "text/plain"))
		gt.NoError(t, svc.Put(ctx, key, strings.NewReader("second"), "text/plain"))

		r, err := svc.Get(ctx, key)
		gt.NoError(t, err).Required()
		defer r.Close()

		body, err := io.ReadAll(r)
		gt.NoError(t, err).Required()
		gt.Value(t, string(body)).Equal("second")
	})

	t.Run("get missing key returns ErrNotFound", func(t *testing.T) {
		_, err := svc.Get(ctx, "documents/no-such-object")
		gt.Value(t, err).NotNil()
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete removes the object", func(t *testing.T) {
		key := "documents/to-delete"
		gt.NoError(t, svc.Put(ctx, key, strings.NewReader("x"), "text/plain"))
		gt.NoError(t, svc.Delete(ctx, key))

		_, err := svc.Get(ctx, key)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("delete missing key returns ErrNotFound", func(t *testing.T) {
		err := svc.Delete(ctx, "documents/never-existed")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestLocalRejectsTraversal(t *testing.T) {
	ctx := context.Background()

	svc, err := storage.NewLocal(t.TempDir())
	gt.NoError(t, err).Required()

	keys := []string{
		"",
		"..",
		"../outside",
		"documents/../../etc/passwd",
		"/etc/passwd",
	}

	for _, key := range keys {
		t.Run("rejects "+key, func(t *testing.T) {
			if err := svc.Put(ctx, key, strings.NewReader("x"), "text/plain"); err == nil {
				t.Errorf("Put(%q) should be rejected", key)
			}
			if _, err := svc.Get(ctx, key); err == nil {
				t.Errorf("Get(%q) should be rejected", key)
			}
			if err := svc.Delete(ctx, key); err == nil {
				t.Errorf("Delete(%q) should be rejected", key)
			}
		})
	}
}
