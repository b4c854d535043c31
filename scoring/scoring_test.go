package scoring_test

import (
	"testing"
	"time"

	"github.com/xraph/triage/exception"
	"github.com/xraph/triage/scoring"
)

// today is a fixed evaluation instant late in the day, so deadlines earlier
// on the same date still count as zero days away.
var today = time.Date(2026, 3, 10, 22, 15, 0, 0, time.UTC)

func newEngine(opts ...scoring.Option) *scoring.Engine {
	opts = append([]scoring.Option{
		scoring.WithClock(func() time.Time { return today }),
		scoring.WithLocation(time.UTC),
	}, opts...)
	return scoring.New(opts...)
}

func newException(t *testing.T, priority string, days int, needBy time.Time) *exception.Exception {
	t.Helper()
	e := exception.New(1)
	if err := e.SetPriority(priority); err != nil {
		t.Fatal(err)
	}
	if err := e.SetDaysInQueue(days); err != nil {
		t.Fatal(err)
	}
	e.SetNeedByDate(needBy)
	return e
}

func TestPriorityWeight(t *testing.T) {
	t.Parallel()
	s := newEngine()

	tests := []struct {
		name string
		want float64
	}{
		{"HIGH", 100},
		{"high", 100},
		{"Medium", 50},
		{"low", 10},
		{"URGENT", 0},
		{"", 0},
		{"unknown", 0},
		{" high ", 0},
		{"LOW\n", 0},
	}
	for _, tt := range tests {
		if got := s.PriorityWeight(tt.name); got != tt.want {
			t.Errorf("PriorityWeight(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWithWeight_CoversUrgent(t *testing.T) {
	s := newEngine(scoring.WithWeight(exception.PriorityUrgent, 200))
	if got := s.PriorityWeight("urgent"); got != 200 {
		t.Fatalf("PriorityWeight(urgent) = %v, want 200", got)
	}
	if got := s.PriorityWeight("high"); got != 100 {
		t.Fatalf("other weights should be untouched, got %v", got)
	}
}

func TestDaysTerm_Linear(t *testing.T) {
	s := newEngine()
	for _, d := range []int{0, 1, 2, 7, 30, 365, 10000} {
		if got, want := s.DaysTerm(d), float64(d*10); got != want {
			t.Errorf("DaysTerm(%d) = %v, want %v", d, got, want)
		}
	}
}

func TestUrgencyByDeadline(t *testing.T) {
	t.Parallel()
	s := newEngine()

	tests := []struct {
		name   string
		needBy time.Time
		want   float64
	}{
		{"earlier today", today.Add(-20 * time.Hour), 100},
		{"later today", today.Add(time.Hour), 100},
		{"tomorrow morning", time.Date(2026, 3, 11, 0, 5, 0, 0, time.UTC), 99},
		{"five days", today.AddDate(0, 0, 5), 95},
		{"twenty days", today.AddDate(0, 0, 20), 80},
		{"hundred days", today.AddDate(0, 0, 100), 0},
		{"far future", today.AddDate(3, 0, 0), 0},
		{"last week", today.AddDate(0, 0, -7), 100},
		{"long ago", today.AddDate(-5, 0, 0), 100},
		{"unset", time.Time{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.UrgencyByDeadline(tt.needBy); got != tt.want {
				t.Errorf("UrgencyByDeadline(%v) = %v, want %v", tt.needBy, got, tt.want)
			}
		})
	}
}

func TestUrgencyByDeadline_Monotone(t *testing.T) {
	s := newEngine()
	prev := s.UrgencyByDeadline(today.AddDate(0, 0, -30))
	for d := -29; d <= 150; d++ {
		got := s.UrgencyByDeadline(today.AddDate(0, 0, d))
		if got > prev {
			t.Fatalf("urgency increased from %v to %v at day %d", prev, got, d)
		}
		if got < 0 || got > scoring.MaxUrgency {
			t.Fatalf("urgency %v out of range at day %d", got, d)
		}
		prev = got
	}
}

func TestUrgencyByDeadline_UsesDeadlineCalendarDate(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC; only the deadline's own
	// date counts.
	est := time.FixedZone("EST", -5*3600)
	needBy := time.Date(2026, 3, 12, 23, 30, 0, 0, est)
	s := newEngine()
	if got := s.UrgencyByDeadline(needBy); got != 98 {
		t.Fatalf("UrgencyByDeadline = %v, want 98", got)
	}
}

func TestScore_Scenarios(t *testing.T) {
	t.Parallel()
	s := newEngine()

	tests := []struct {
		name     string
		priority string
		days     int
		needBy   time.Time
		want     float64
	}{
		{"scenario A", "Low", 0, today.AddDate(0, 0, 20), 90},
		{"scenario B", "High", 1, today.AddDate(0, 0, 5), 205},
		{"medium overdue", "medium", 3, today.AddDate(0, 0, -2), 180},
		{"urgent falls through", "URGENT", 0, today.AddDate(0, 0, 200), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newException(t, tt.priority, tt.days, tt.needBy)
			if got := s.Score(e); got != tt.want {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBreakdown(t *testing.T) {
	s := newEngine()
	e := newException(t, "High", 1, today.AddDate(0, 0, 5))
	b := s.Breakdown(e)
	want := scoring.Breakdown{Priority: 100, Days: 10, Urgency: 95, Total: 205}
	if b != want {
		t.Fatalf("Breakdown() = %+v, want %+v", b, want)
	}
}

func TestScore_IgnoresIdentityAndTags(t *testing.T) {
	s := newEngine()
	a := newException(t, "low", 2, today.AddDate(0, 0, 3))
	b := newException(t, "low", 2, today.AddDate(0, 0, 3))
	if err := b.SetID(99); err == nil {
		t.Fatal("expected id to be immutable")
	}
	b.SetItemNumber(42)
	if err := b.SetTags([]string{"x", "y"}); err != nil {
		t.Fatal(err)
	}
	if s.Score(a) != s.Score(b) {
		t.Fatalf("scores differ: %v vs %v", s.Score(a), s.Score(b))
	}
}

func TestScore_ClockAdvances(t *testing.T) {
	now := today
	s := scoring.New(scoring.WithClock(func() time.Time { return now }), scoring.WithLocation(time.UTC))
	e := newException(t, "low", 0, today.AddDate(0, 0, 20))

	first := s.Score(e)
	now = now.AddDate(0, 0, 5)
	if second := s.Score(e); second != first+5 {
		t.Fatalf("score after five days = %v, want %v", second, first+5)
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC)
	b := time.Date(2027, 1, 1, 0, 1, 0, 0, time.UTC)
	if got := scoring.DaysBetween(a, b); got != 1 {
		t.Fatalf("DaysBetween = %d, want 1", got)
	}
	if got := scoring.DaysBetween(b, a); got != -1 {
		t.Fatalf("DaysBetween reversed = %d, want -1", got)
	}
}
