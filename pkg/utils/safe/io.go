package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/jungkj/riscura-sub000/pkg/utils/logging"
)

// Close closes the closer and logs the error instead of returning it.
// Intended for defer sites where the error has nowhere to go. A nil
// closer is ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("failed to close", slog.Any("error", err))
	}
}

// Copy copies src into dst, logging any error.
func Copy(ctx context.Context, dst io.Writer, src io.Reader) {
	if _, err := io.Copy(dst, src); err != nil {
		logging.From(ctx).Error("failed to copy", slog.Any("error", err))
	}
}
