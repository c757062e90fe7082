package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/jungkj/riscura-sub000/pkg/cli/config"
	"github.com/jungkj/riscura-sub000/pkg/utils/logging"
)

func TestLoggerConfigureInvalidLevel(t *testing.T) {
	logger := config.NewLoggerForTest("verbose", "console", "stdout")

	_, err := logger.Configure()
	gt.Error(t, err).Is(config.ErrInvalidLogLevel)
}

func TestLoggerConfigureInvalidFormat(t *testing.T) {
	logger := config.NewLoggerForTest("info", "xml", "stdout")

	_, err := logger.Configure()
	gt.Error(t, err).Is(config.ErrInvalidLogFormat)
}

func TestLoggerConfigureFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "riscura.log")
	logger := config.NewLoggerForTest("info", "json", path)

	closer, err := logger.Configure()
	gt.NoError(t, err)

	logging.Default().Info("logger file output test")
	closer()

	data, err := os.ReadFile(path)
	gt.NoError(t, err)
	gt.String(t, string(data)).Contains("logger file output test")
}
