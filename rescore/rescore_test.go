package rescore_test

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xraph/triage"
	"github.com/xraph/triage/exception"
	"github.com/xraph/triage/queue"
	"github.com/xraph/triage/rescore"
	"github.com/xraph/triage/scoring"
	"github.com/xraph/triage/store/memory"
)

var day0 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// clock is a settable time source shared by the scorer.
type clock struct{ now atomic.Pointer[time.Time] }

func newClock(t time.Time) *clock {
	c := &clock{}
	c.set(t)
	return c
}

func (c *clock) set(t time.Time) { c.now.Store(&t) }
func (c *clock) Now() time.Time  { return *c.now.Load() }

type passRecorder struct {
	passes   atomic.Int32
	rescored atomic.Int32
}

func (p *passRecorder) Name() string { return "pass-recorder" }

func (p *passRecorder) OnExceptionRescored(_ context.Context, _, _ string, _, _ float64) error {
	p.rescored.Add(1)
	return nil
}

func (p *passRecorder) OnRescoreCompleted(_ context.Context, _ string, _, _ int, _ time.Duration) error {
	p.passes.Add(1)
	return nil
}

func setup(t *testing.T) (*queue.Writer, *memory.Store, *clock, *passRecorder) {
	t.Helper()
	c := newClock(day0)
	rec := &passRecorder{}
	s := memory.New()
	w, err := queue.NewWriter(s,
		queue.WithScorer(scoring.New(scoring.WithClock(c.Now), scoring.WithLocation(time.UTC))),
		queue.WithExtensions(rec),
	)
	if err != nil {
		t.Fatal(err)
	}

	add := func(id int64, priority string, days, needIn int) {
		e := exception.New(id)
		if err := e.SetPriority(priority); err != nil {
			t.Fatal(err)
		}
		if err := e.SetDaysInQueue(days); err != nil {
			t.Fatal(err)
		}
		e.SetNeedByDate(day0.AddDate(0, 0, needIn))
		if err := w.AddException(context.Background(), e); err != nil {
			t.Fatal(err)
		}
	}
	add(123123123, "Low", 0, 20) // 90
	add(123123124, "High", 1, 5) // 205
	add(7, "Medium", 0, 200)     // 50, urgency floored
	return w, s, c, rec
}

func TestRescoreAll_UnchangedDay(t *testing.T) {
	w, _, _, rec := setup(t)
	r, err := rescore.New(w)
	if err != nil {
		t.Fatal(err)
	}

	res, err := r.RescoreAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Scanned != 3 || res.Changed != 0 {
		t.Fatalf("result = %+v, want 3 scanned, 0 changed", res)
	}
	if rec.passes.Load() != 1 {
		t.Fatalf("passes = %d, want 1", rec.passes.Load())
	}
}

func TestRescoreAll_DeadlinesApproach(t *testing.T) {
	w, s, c, rec := setup(t)
	r, err := rescore.New(w)
	if err != nil {
		t.Fatal(err)
	}

	c.set(day0.AddDate(0, 0, 5))
	res, err := r.RescoreAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// The far-future deadline is still floored at zero urgency.
	if res.Scanned != 3 || res.Changed != 2 {
		t.Fatalf("result = %+v, want 3 scanned, 2 changed", res)
	}
	if rec.rescored.Load() != 2 {
		t.Fatalf("rescored hooks = %d, want 2", rec.rescored.Load())
	}

	ctx := context.Background()
	tests := []struct {
		key  string
		want float64
	}{
		{"WorkflowException:123123123", 95},
		{"WorkflowException:123123124", 210},
		{"WorkflowException:7", 50},
	}
	for _, tt := range tests {
		got, err := s.Score(ctx, triage.DefaultIndex, tt.key)
		if err != nil {
			t.Fatalf("Score(%s): %v", tt.key, err)
		}
		if got != tt.want {
			t.Errorf("Score(%s) = %v, want %v", tt.key, got, tt.want)
		}
	}

	// Field-bags are rewritten alongside the scores and stay decodable.
	fields, err := s.Fields(ctx, "WorkflowException:123123124")
	if err != nil {
		t.Fatal(err)
	}
	if fields[exception.FieldOrderPriority] != "HIGH" {
		t.Errorf("OrderPriority = %q, want HIGH", fields[exception.FieldOrderPriority])
	}

	// A second pass on the same day changes nothing.
	res, err = r.RescoreAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Changed != 0 {
		t.Fatalf("second pass changed %d, want 0", res.Changed)
	}
}

// interleavingStore runs afterFirstRead once, right after the first
// field-bag read, to stand in for a caller writing during a pass.
type interleavingStore struct {
	*memory.Store
	once           sync.Once
	afterFirstRead func()
}

func (s *interleavingStore) Fields(ctx context.Context, key string) (map[string]string, error) {
	f, err := s.Store.Fields(ctx, key)
	if s.afterFirstRead != nil {
		s.once.Do(s.afterFirstRead)
	}
	return f, err
}

func TestRescoreAll_KeepsConcurrentFieldUpdate(t *testing.T) {
	ctx := context.Background()
	c := newClock(day0)
	s := &interleavingStore{Store: memory.New()}
	w, err := queue.NewWriter(s,
		queue.WithScorer(scoring.New(scoring.WithClock(c.Now), scoring.WithLocation(time.UTC))),
	)
	if err != nil {
		t.Fatal(err)
	}

	mk := func(priority string, tags ...string) *exception.Exception {
		e := exception.New(42)
		if err := e.SetPriority(priority); err != nil {
			t.Fatal(err)
		}
		if err := e.SetTags(tags); err != nil {
			t.Fatal(err)
		}
		e.SetNeedByDate(day0.AddDate(0, 0, 20))
		return e
	}
	if err := w.AddException(ctx, mk("Low")); err != nil {
		t.Fatal(err)
	}

	// Five days on, the old snapshot would score 95 and overwrite the
	// update below. The updated exception scores 100 + 0 + 85.
	c.set(day0.AddDate(0, 0, 5))
	s.afterFirstRead = func() {
		if err := w.AddException(ctx, mk("High", "Finance_Queue")); err != nil {
			t.Error(err)
		}
	}

	r, err := rescore.New(w)
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.RescoreAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Changed != 0 {
		t.Fatalf("changed = %d, want 0", res.Changed)
	}

	item, err := w.Reader().Get(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if item.Score != 185 {
		t.Errorf("score = %v, want 185", item.Score)
	}
	if item.Exception.PriorityName() != "HIGH" {
		t.Errorf("priority = %q, want HIGH", item.Exception.PriorityName())
	}
	if !slices.Contains(item.Exception.Tags(), "Finance_Queue") {
		t.Errorf("tags = %v, want Finance_Queue", item.Exception.Tags())
	}
}

func TestNew_InvalidSchedule(t *testing.T) {
	w, _, _, _ := setup(t)
	if _, err := rescore.New(w, rescore.WithSchedule("not a schedule")); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestStartStop_RunsOnSchedule(t *testing.T) {
	w, _, _, rec := setup(t)
	r, err := rescore.New(w, rescore.WithSchedule("@every 1s"))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := r.Start(ctx); err != rescore.ErrAlreadyRunning {
		t.Fatalf("second Start err = %v, want ErrAlreadyRunning", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for rec.passes.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := r.Stop(ctx); err != nil {
		t.Fatal(err)
	}
	if rec.passes.Load() == 0 {
		t.Fatal("no scheduled pass ran")
	}

	// Stop is idempotent.
	if err := r.Stop(ctx); err != nil {
		t.Fatal(err)
	}
}
