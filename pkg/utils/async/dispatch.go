package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/jungkj/riscura-sub000/pkg/utils/logging"
)

// Dispatch runs handler in its own goroutine, detached from the
// caller's context so cancellation of the request does not abort the
// work. The caller's logger is carried over. Errors and panics are
// logged, not propagated.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	logger := logging.From(ctx)
	bgCtx := logging.With(context.Background(), logger)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logger.Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}
