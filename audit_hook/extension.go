package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xraph/triage/exception"
	"github.com/xraph/triage/ext"
)

// Compile-time interface checks.
var (
	_ ext.Extension         = (*Extension)(nil)
	_ ext.ExceptionAdded    = (*Extension)(nil)
	_ ext.ExceptionRetrying = (*Extension)(nil)
	_ ext.ExceptionFailed   = (*Extension)(nil)
	_ ext.ExceptionRescored = (*Extension)(nil)
	_ ext.RescoreCompleted  = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	// Record persists a fully-formed audit event.
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is one entry of the audit trail.
type AuditEvent struct {
	// What happened
	Action   string `json:"action"`
	Resource string `json:"resource"`
	Category string `json:"category"`

	// Details
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Severity constants.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Outcome constants.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Extension turns ranking lifecycle events into audit events.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through r.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements ext.Extension.
func (e *Extension) Name() string { return "audit-hook" }

// ── Write hooks ─────────────────────────────────────

// OnExceptionAdded implements ext.ExceptionAdded.
func (e *Extension) OnExceptionAdded(ctx context.Context, index string, entry *exception.Entry, elapsed time.Duration) error {
	return e.record(ctx, ActionExceptionAdded, SeverityInfo, OutcomeSuccess,
		ResourceException, entry.Key, CategoryWrite, nil,
		"index", index,
		"score", entry.Score,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// OnExceptionRetrying implements ext.ExceptionRetrying.
func (e *Extension) OnExceptionRetrying(ctx context.Context, index string, id int64, attempt int, err error) error {
	return e.record(ctx, ActionExceptionRetrying, SeverityWarning, OutcomeFailure,
		ResourceException, strconv.FormatInt(id, 10), CategoryWrite, err,
		"index", index,
		"attempt", attempt,
	)
}

// OnExceptionFailed implements ext.ExceptionFailed.
func (e *Extension) OnExceptionFailed(ctx context.Context, index string, id int64, err error) error {
	return e.record(ctx, ActionExceptionFailed, SeverityCritical, OutcomeFailure,
		ResourceException, strconv.FormatInt(id, 10), CategoryWrite, err,
		"index", index,
	)
}

// ── Re-scoring hooks ────────────────────────────────

// OnExceptionRescored implements ext.ExceptionRescored.
func (e *Extension) OnExceptionRescored(ctx context.Context, index, key string, oldScore, newScore float64) error {
	return e.record(ctx, ActionExceptionRescored, SeverityInfo, OutcomeSuccess,
		ResourceException, key, CategoryRescore, nil,
		"index", index,
		"old_score", oldScore,
		"new_score", newScore,
	)
}

// OnRescoreCompleted implements ext.RescoreCompleted.
func (e *Extension) OnRescoreCompleted(ctx context.Context, index string, scanned, changed int, elapsed time.Duration) error {
	return e.record(ctx, ActionRescoreCompleted, SeverityInfo, OutcomeSuccess,
		ResourceIndex, index, CategoryRescore, nil,
		"scanned", scanned,
		"changed", changed,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// ── Internal helpers ────────────────────────────────

// record builds and sends an audit event if the action is enabled.
// kvPairs are added to Metadata.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			slog.String("action", action),
			slog.String("resource_id", resourceID),
			slog.String("error", recErr.Error()),
		)
	}
	return nil
}
