package queue

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/xraph/triage"
	"github.com/xraph/triage/backoff"
	"github.com/xraph/triage/ext"
	"github.com/xraph/triage/middleware"
	"github.com/xraph/triage/scoring"
)

// Option configures a Writer.
type Option func(*Writer)

// WithConfig replaces the writer's settings. Empty Index and KeyPrefix
// keep their defaults.
func WithConfig(cfg triage.Config) Option {
	return func(w *Writer) {
		if cfg.Index == "" {
			cfg.Index = w.cfg.Index
		}
		if cfg.KeyPrefix == "" {
			cfg.KeyPrefix = w.cfg.KeyPrefix
		}
		w.cfg = cfg
	}
}

// WithIndex sets the ranked index exceptions are written to.
func WithIndex(name string) Option {
	return func(w *Writer) { w.cfg.Index = name }
}

// WithKeyPrefix sets the prefix joined with the exception id to form keys.
func WithKeyPrefix(prefix string) Option {
	return func(w *Writer) { w.cfg.KeyPrefix = prefix }
}

// WithBatchConcurrency caps concurrent writes in AddExceptions.
func WithBatchConcurrency(n int) Option {
	return func(w *Writer) { w.cfg.BatchConcurrency = n }
}

// WithWriteTimeout bounds each store write attempt.
func WithWriteTimeout(d time.Duration) Option {
	return func(w *Writer) { w.cfg.WriteTimeout = d }
}

// WithScorer replaces the default scoring engine.
func WithScorer(s scoring.Scorer) Option {
	return func(w *Writer) { w.scorer = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) { w.logger = l }
}

// WithMiddleware appends write middleware. The first one given is the
// outermost wrapper.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(w *Writer) { w.middleware = append(w.middleware, mws...) }
}

// WithExtensions registers lifecycle extensions.
func WithExtensions(exts ...ext.Extension) Option {
	return func(w *Writer) { w.pending = append(w.pending, exts...) }
}

// WithRetry re-issues a failed store write up to attempts times in total,
// waiting s.Delay between tries. A nil s uses backoff.DefaultStrategy.
func WithRetry(s backoff.Strategy, attempts int) Option {
	return func(w *Writer) {
		if s == nil {
			s = backoff.DefaultStrategy()
		}
		w.retry = s
		w.attempts = attempts
	}
}

// WithRateLimit limits writes to rps per second with the given burst.
// A non-positive rps disables the limit; burst defaults to 1.
func WithRateLimit(rps float64, burst int) Option {
	return func(w *Writer) {
		if rps <= 0 {
			w.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		w.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}
