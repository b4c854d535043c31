package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Recover returns middleware that recovers from panics in the chain.
// Panics are converted to errors and logged with a stack trace.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, w *Write, next Handler) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("exception write panicked",
					slog.String("key", w.Entry.Key),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				retErr = fmt.Errorf("panic writing %s: %v", w.Entry.Key, r)
			}
		}()
		return next(ctx)
	}
}
