package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/jungkj/riscura-sub000/pkg/cli/config"
)

func TestStorageConfigureNotConfigured(t *testing.T) {
	storage := config.NewStorageForTest("", "", "")

	svc, err := storage.Configure(t.Context())
	gt.NoError(t, err)
	gt.Value(t, svc).Nil()
}

func TestStorageConfigureLocal(t *testing.T) {
	storage := config.NewStorageForTest("local", "", t.TempDir())

	svc, err := storage.Configure(t.Context())
	gt.NoError(t, err)
	gt.Value(t, svc).NotNil()
}

func TestStorageConfigureLocalWithoutDir(t *testing.T) {
	storage := config.NewStorageForTest("local", "", "")

	_, err := storage.Configure(t.Context())
	gt.Error(t, err)
}

func TestStorageConfigureGCSWithoutBucket(t *testing.T) {
	storage := config.NewStorageForTest("gcs", "", "")

	_, err := storage.Configure(t.Context())
	gt.Error(t, err)
}

func TestStorageConfigureUnknownBackend(t *testing.T) {
	storage := config.NewStorageForTest("s3", "risk-docs", "")

	_, err := storage.Configure(t.Context())
	gt.Error(t, err)
}
