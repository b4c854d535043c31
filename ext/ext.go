package ext

import (
	"context"
	"time"

	"github.com/xraph/triage/exception"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Write hooks
// ──────────────────────────────────────────────────

// ExceptionAdded is called after an entry is written to an index.
type ExceptionAdded interface {
	OnExceptionAdded(ctx context.Context, index string, entry *exception.Entry, elapsed time.Duration) error
}

// ExceptionRetrying is called when a write fails but will be re-issued.
type ExceptionRetrying interface {
	OnExceptionRetrying(ctx context.Context, index string, id int64, attempt int, err error) error
}

// ExceptionFailed is called when a write fails terminally.
type ExceptionFailed interface {
	OnExceptionFailed(ctx context.Context, index string, id int64, err error) error
}

// ──────────────────────────────────────────────────
// Re-scoring hooks
// ──────────────────────────────────────────────────

// ExceptionRescored is called when a stored score changes on re-scoring.
type ExceptionRescored interface {
	OnExceptionRescored(ctx context.Context, index, key string, oldScore, newScore float64) error
}

// RescoreCompleted is called when a re-scoring pass over an index ends.
type RescoreCompleted interface {
	OnRescoreCompleted(ctx context.Context, index string, scanned, changed int, elapsed time.Duration) error
}

// ──────────────────────────────────────────────────
// Other hooks
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
