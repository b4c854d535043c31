package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/triage/exception"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time.
type exceptionAddedEntry struct {
	name string
	hook ExceptionAdded
}

type exceptionRetryingEntry struct {
	name string
	hook ExceptionRetrying
}

type exceptionFailedEntry struct {
	name string
	hook ExceptionFailed
}

type exceptionRescoredEntry struct {
	name string
	hook ExceptionRescored
}

type rescoreCompletedEntry struct {
	name string
	hook RescoreCompleted
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. Extensions are type-cached at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
//
// Register is not safe to call concurrently with the Emit methods;
// register everything before handing the registry to a writer.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	exceptionAdded    []exceptionAddedEntry
	exceptionRetrying []exceptionRetryingEntry
	exceptionFailed   []exceptionFailedEntry
	exceptionRescored []exceptionRescoredEntry
	rescoreCompleted  []rescoreCompletedEntry
	shutdown          []shutdownEntry
}

// NewRegistry creates an extension registry. A nil logger falls back to
// slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(ExceptionAdded); ok {
		r.exceptionAdded = append(r.exceptionAdded, exceptionAddedEntry{name, h})
	}
	if h, ok := e.(ExceptionRetrying); ok {
		r.exceptionRetrying = append(r.exceptionRetrying, exceptionRetryingEntry{name, h})
	}
	if h, ok := e.(ExceptionFailed); ok {
		r.exceptionFailed = append(r.exceptionFailed, exceptionFailedEntry{name, h})
	}
	if h, ok := e.(ExceptionRescored); ok {
		r.exceptionRescored = append(r.exceptionRescored, exceptionRescoredEntry{name, h})
	}
	if h, ok := e.(RescoreCompleted); ok {
		r.rescoreCompleted = append(r.rescoreCompleted, rescoreCompletedEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// ──────────────────────────────────────────────────
// Write event emitters
// ──────────────────────────────────────────────────

// EmitExceptionAdded notifies all extensions that implement ExceptionAdded.
func (r *Registry) EmitExceptionAdded(ctx context.Context, index string, entry *exception.Entry, elapsed time.Duration) {
	for _, e := range r.exceptionAdded {
		if err := e.hook.OnExceptionAdded(ctx, index, entry, elapsed); err != nil {
			r.logHookError("OnExceptionAdded", e.name, err)
		}
	}
}

// EmitExceptionRetrying notifies all extensions that implement ExceptionRetrying.
func (r *Registry) EmitExceptionRetrying(ctx context.Context, index string, id int64, attempt int, writeErr error) {
	for _, e := range r.exceptionRetrying {
		if err := e.hook.OnExceptionRetrying(ctx, index, id, attempt, writeErr); err != nil {
			r.logHookError("OnExceptionRetrying", e.name, err)
		}
	}
}

// EmitExceptionFailed notifies all extensions that implement ExceptionFailed.
func (r *Registry) EmitExceptionFailed(ctx context.Context, index string, id int64, writeErr error) {
	for _, e := range r.exceptionFailed {
		if err := e.hook.OnExceptionFailed(ctx, index, id, writeErr); err != nil {
			r.logHookError("OnExceptionFailed", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Re-scoring event emitters
// ──────────────────────────────────────────────────

// EmitExceptionRescored notifies all extensions that implement ExceptionRescored.
func (r *Registry) EmitExceptionRescored(ctx context.Context, index, key string, oldScore, newScore float64) {
	for _, e := range r.exceptionRescored {
		if err := e.hook.OnExceptionRescored(ctx, index, key, oldScore, newScore); err != nil {
			r.logHookError("OnExceptionRescored", e.name, err)
		}
	}
}

// EmitRescoreCompleted notifies all extensions that implement RescoreCompleted.
func (r *Registry) EmitRescoreCompleted(ctx context.Context, index string, scanned, changed int, elapsed time.Duration) {
	for _, e := range r.rescoreCompleted {
		if err := e.hook.OnRescoreCompleted(ctx, index, scanned, changed, elapsed); err != nil {
			r.logHookError("OnRescoreCompleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Other event emitters
// ──────────────────────────────────────────────────

// EmitShutdown notifies all extensions that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Hook errors are never propagated to the write path.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
