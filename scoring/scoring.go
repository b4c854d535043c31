// Package scoring maps an exception's priority, time in queue and deadline
// to a single rank. Higher scores are more urgent.
//
//	score = weight(priority) + daysInQueue*10 + clamp(100 - daysUntilDeadline, 0, 100)
//
// The deadline term reads the clock on every call, so an unchanged exception
// scores higher as its deadline approaches.
package scoring

import (
	"time"

	"github.com/xraph/triage/exception"
)

// Default scoring constants.
const (
	DefaultDaysFactor = 10
	MaxUrgency        = 100
)

// Scorer computes the rank of an exception.
type Scorer interface {
	Score(e *exception.Exception) float64
}

// Breakdown is a score split into its three terms.
type Breakdown struct {
	Priority float64 `json:"priority"`
	Days     float64 `json:"days"`
	Urgency  float64 `json:"urgency"`
	Total    float64 `json:"total"`
}

// Engine is the default Scorer. It is stateless apart from its clock and
// safe for concurrent use.
type Engine struct {
	weights    map[exception.Priority]float64
	daysFactor float64
	now        func() time.Time
	loc        *time.Location
}

// Option configures an Engine.
type Option func(*Engine)

// WithWeight sets the weight for a priority. Priorities without a weight
// score 0; URGENT has none by default.
func WithWeight(p exception.Priority, w float64) Option {
	return func(e *Engine) { e.weights[p] = w }
}

// WithDaysFactor sets the per-day multiplier of the days-in-queue term.
func WithDaysFactor(f float64) Option {
	return func(e *Engine) { e.daysFactor = f }
}

// WithClock sets the clock used to determine today's date.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the location in which today's date is taken.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// DefaultWeights returns the default priority weight table.
func DefaultWeights() map[exception.Priority]float64 {
	return map[exception.Priority]float64{
		exception.PriorityHigh:   100,
		exception.PriorityMedium: 50,
		exception.PriorityLow:    10,
	}
}

// New creates an Engine with the default weights and the system clock.
func New(opts ...Option) *Engine {
	e := &Engine{
		weights:    DefaultWeights(),
		daysFactor: DefaultDaysFactor,
		now:        time.Now,
		loc:        time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score returns the total rank of x.
func (e *Engine) Score(x *exception.Exception) float64 {
	return e.Breakdown(x).Total
}

// Breakdown returns each term of the score of x.
func (e *Engine) Breakdown(x *exception.Exception) Breakdown {
	b := Breakdown{
		Priority: e.Weight(x.Priority()),
		Days:     e.DaysTerm(x.DaysInQueue()),
		Urgency:  e.UrgencyByDeadline(x.NeedByDate()),
	}
	b.Total = b.Priority + b.Days + b.Urgency
	return b
}

// Weight returns the weight of p, or 0 if the table has none.
func (e *Engine) Weight(p exception.Priority) float64 {
	return e.weights[p]
}

// PriorityWeight looks up a priority by name, case-insensitively. Unknown
// or empty names weigh 0.
func (e *Engine) PriorityWeight(name string) float64 {
	p, err := exception.ParsePriority(name)
	if err != nil {
		return 0
	}
	return e.Weight(p)
}

// DaysTerm returns the days-in-queue term. It is linear and uncapped.
func (e *Engine) DaysTerm(days int) float64 {
	return float64(days) * e.daysFactor
}

// UrgencyByDeadline returns MaxUrgency minus the whole days from today to
// the deadline's date, clamped to [0, MaxUrgency]. An unset deadline
// contributes nothing.
func (e *Engine) UrgencyByDeadline(needBy time.Time) float64 {
	if needBy.IsZero() {
		return 0
	}
	u := MaxUrgency - DaysBetween(e.now().In(e.loc), needBy)
	switch {
	case u < 0:
		return 0
	case u > MaxUrgency:
		return MaxUrgency
	default:
		return float64(u)
	}
}

// DaysBetween returns the number of whole calendar days from the date of a
// to the date of b, each taken in its own location. Times of day are
// ignored.
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
