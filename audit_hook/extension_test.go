package audithook_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	ah "github.com/xraph/triage/audit_hook"
	"github.com/xraph/triage/exception"
	"github.com/xraph/triage/ext"
)

// ── Mock recorder ────────────────────────────────────

// mockRecorder captures audit events for verification.
type mockRecorder struct {
	mu     sync.Mutex
	events []*ah.AuditEvent
}

func (m *mockRecorder) Record(_ context.Context, evt *ah.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}

func (m *mockRecorder) last() *ah.AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		return nil
	}
	return m.events[len(m.events)-1]
}

func (m *mockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func testEntry() *exception.Entry {
	return &exception.Entry{Key: "WorkflowException:123123124", Score: 205}
}

// ── Tests ────────────────────────────────────────────

func TestExtension_Name(t *testing.T) {
	if got := ah.New(&mockRecorder{}).Name(); got != "audit-hook" {
		t.Fatalf("Name() = %q", got)
	}
}

func TestExtension_ExceptionAdded(t *testing.T) {
	rec := &mockRecorder{}
	e := ah.New(rec)

	if err := e.OnExceptionAdded(context.Background(), "FINANCE_QUEUE", testEntry(), 3*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	evt := rec.last()
	if evt == nil {
		t.Fatal("no event recorded")
	}
	if evt.Action != ah.ActionExceptionAdded || evt.Resource != ah.ResourceException || evt.Category != ah.CategoryWrite {
		t.Errorf("event = %+v", evt)
	}
	if evt.ResourceID != "WorkflowException:123123124" {
		t.Errorf("ResourceID = %q", evt.ResourceID)
	}
	if evt.Severity != ah.SeverityInfo || evt.Outcome != ah.OutcomeSuccess {
		t.Errorf("severity/outcome = %s/%s", evt.Severity, evt.Outcome)
	}
	if evt.Metadata["index"] != "FINANCE_QUEUE" || evt.Metadata["score"] != 205.0 {
		t.Errorf("metadata = %v", evt.Metadata)
	}
}

func TestExtension_Severities(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")

	tests := []struct {
		name     string
		fire     func(e *ah.Extension) error
		action   string
		severity string
		outcome  string
		reason   string
	}{
		{
			"retrying",
			func(e *ah.Extension) error { return e.OnExceptionRetrying(ctx, "FINANCE_QUEUE", 1, 2, boom) },
			ah.ActionExceptionRetrying, ah.SeverityWarning, ah.OutcomeFailure, boom.Error(),
		},
		{
			"failed",
			func(e *ah.Extension) error { return e.OnExceptionFailed(ctx, "FINANCE_QUEUE", 1, boom) },
			ah.ActionExceptionFailed, ah.SeverityCritical, ah.OutcomeFailure, boom.Error(),
		},
		{
			"rescored",
			func(e *ah.Extension) error {
				return e.OnExceptionRescored(ctx, "FINANCE_QUEUE", "WorkflowException:1", 90, 95)
			},
			ah.ActionExceptionRescored, ah.SeverityInfo, ah.OutcomeSuccess, "",
		},
		{
			"pass",
			func(e *ah.Extension) error { return e.OnRescoreCompleted(ctx, "FINANCE_QUEUE", 2, 1, time.Second) },
			ah.ActionRescoreCompleted, ah.SeverityInfo, ah.OutcomeSuccess, "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := &mockRecorder{}
			if err := tt.fire(ah.New(rec)); err != nil {
				t.Fatal(err)
			}
			evt := rec.last()
			if evt == nil {
				t.Fatal("no event recorded")
			}
			if evt.Action != tt.action || evt.Severity != tt.severity || evt.Outcome != tt.outcome || evt.Reason != tt.reason {
				t.Errorf("event = %+v", evt)
			}
		})
	}
}

func TestExtension_WithActionsFilters(t *testing.T) {
	rec := &mockRecorder{}
	e := ah.New(rec, ah.WithActions(ah.ActionExceptionFailed))
	ctx := context.Background()

	_ = e.OnExceptionAdded(ctx, "FINANCE_QUEUE", testEntry(), time.Millisecond)
	_ = e.OnExceptionFailed(ctx, "FINANCE_QUEUE", 1, errors.New("down"))

	if rec.count() != 1 || rec.last().Action != ah.ActionExceptionFailed {
		t.Fatalf("events = %d, last = %+v", rec.count(), rec.last())
	}
}

func TestExtension_RecorderErrorSwallowed(t *testing.T) {
	failing := ah.RecorderFunc(func(context.Context, *ah.AuditEvent) error {
		return errors.New("audit backend down")
	})
	e := ah.New(failing, ah.WithLogger(slog.Default()))
	if err := e.OnExceptionAdded(context.Background(), "q", testEntry(), 0); err != nil {
		t.Fatalf("hook returned %v, want nil", err)
	}
}

func TestExtension_ViaRegistry(t *testing.T) {
	rec := &mockRecorder{}
	reg := ext.NewRegistry(slog.Default())
	reg.Register(ah.New(rec))

	ctx := context.Background()
	reg.EmitExceptionAdded(ctx, "q", testEntry(), time.Millisecond)
	reg.EmitExceptionRetrying(ctx, "q", 1, 1, errors.New("x"))
	reg.EmitExceptionFailed(ctx, "q", 1, errors.New("x"))
	reg.EmitExceptionRescored(ctx, "q", "k", 1, 2)
	reg.EmitRescoreCompleted(ctx, "q", 1, 1, time.Second)

	if got, want := rec.count(), len(ah.AllActions()); got != want {
		t.Fatalf("recorded %d events, want %d", got, want)
	}
}
