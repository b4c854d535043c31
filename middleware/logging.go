package middleware

import (
	"context"
	"log/slog"
	"time"
)

// Logging returns middleware that logs each ranked write and its outcome.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, w *Write, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("exception write failed",
				slog.String("key", w.Entry.Key),
				slog.String("index", w.Index),
				slog.Int("attempt", w.Attempt),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("exception ranked",
				slog.String("key", w.Entry.Key),
				slog.String("index", w.Index),
				slog.Float64("score", w.Entry.Score),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
