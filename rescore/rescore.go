package rescore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	cronlib "github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/xraph/triage"
	"github.com/xraph/triage/queue"
	"github.com/xraph/triage/store"
)

// DefaultSchedule runs one pass per day at midnight.
const DefaultSchedule = "@daily"

// ErrAlreadyRunning is returned by Start on a running Rescorer.
var ErrAlreadyRunning = errors.New("rescore: already running")

// cronParser supports standard 5-field cron and descriptors like "@every 30s".
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// ParseSchedule parses a cron expression.
func ParseSchedule(expr string) (cronlib.Schedule, error) {
	return cronParser.Parse(expr)
}

// Result summarises one pass over an index.
type Result struct {
	Scanned int           `json:"scanned"`
	Changed int           `json:"changed"`
	Elapsed time.Duration `json:"elapsed"`
}

// Option configures a Rescorer.
type Option func(*Rescorer)

// WithSchedule sets the cron expression used by Start.
func WithSchedule(expr string) Option {
	return func(r *Rescorer) { r.expr = expr }
}

// WithConcurrency caps concurrent rewrites within a pass.
func WithConcurrency(n int) Option {
	return func(r *Rescorer) { r.concurrency = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Rescorer) { r.logger = l }
}

// WithClock sets the clock used to compute the next scheduled pass.
func WithClock(now func() time.Time) Option {
	return func(r *Rescorer) { r.now = now }
}

// Rescorer recomputes the scores of everything in a writer's index.
type Rescorer struct {
	writer *queue.Writer
	reader *queue.Reader

	expr        string
	schedule    cronlib.Schedule
	concurrency int
	logger      *slog.Logger
	now         func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates a Rescorer that rewrites entries through w.
func New(w *queue.Writer, opts ...Option) (*Rescorer, error) {
	r := &Rescorer{
		writer:      w,
		reader:      w.Reader(),
		expr:        DefaultSchedule,
		concurrency: 4,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	sched, err := ParseSchedule(r.expr)
	if err != nil {
		return nil, fmt.Errorf("rescore: parse schedule %q: %w", r.expr, err)
	}
	r.schedule = sched
	return r, nil
}

// RescoreAll runs one pass over the index. Each entry is read again just
// before it is scored, so a field update made during the pass is kept.
// Entries whose score is unchanged are left alone. The first rewrite error
// stops the pass.
func (r *Rescorer) RescoreAll(ctx context.Context) (Result, error) {
	start := time.Now()
	index := r.writer.Index()
	scorer := r.writer.Scorer()

	items, err := r.reader.Range(ctx, store.All())
	if err != nil {
		return Result{}, fmt.Errorf("rescore: list %s: %w", index, err)
	}

	var changed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for _, item := range items {
		g.Go(func() error {
			cur, err := r.reader.Get(gctx, item.ID)
			if errors.Is(err, triage.ErrExceptionNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			fresh := scorer.Score(cur.Exception)
			if fresh == cur.Score {
				return nil
			}
			if err := r.writer.AddException(gctx, cur.Exception); err != nil {
				return err
			}
			changed.Add(1)
			r.writer.Extensions().EmitExceptionRescored(gctx, index, cur.Key, cur.Score, fresh)
			return nil
		})
	}
	err = g.Wait()

	res := Result{
		Scanned: len(items),
		Changed: int(changed.Load()),
		Elapsed: time.Since(start),
	}
	if err != nil {
		return res, fmt.Errorf("rescore: %s: %w", index, err)
	}

	r.writer.Extensions().EmitRescoreCompleted(ctx, index, res.Scanned, res.Changed, res.Elapsed)
	r.logger.Info("rescore pass completed",
		slog.String("index", index),
		slog.Int("scanned", res.Scanned),
		slog.Int("changed", res.Changed),
		slog.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

// ──────────────────────────────────────────────────
// Scheduling
// ──────────────────────────────────────────────────

// Start runs RescoreAll on the configured schedule until Stop is called
// or ctx is done.
func (r *Rescorer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return ErrAlreadyRunning
	}
	r.running = true
	r.stopCh = make(chan struct{})

	r.wg.Add(1)
	go r.loop(ctx, r.stopCh)

	r.logger.Info("rescore scheduler started",
		slog.String("index", r.writer.Index()),
		slog.String("schedule", r.expr),
	)
	return nil
}

// Stop signals the scheduler to stop and waits for a running pass to end.
// Stop on a Rescorer that is not running is a no-op.
func (r *Rescorer) Stop(_ context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	close(r.stopCh)
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Info("rescore scheduler stopped")
	return nil
}

func (r *Rescorer) loop(ctx context.Context, stopCh <-chan struct{}) {
	defer r.wg.Done()

	for {
		now := r.now()
		wait := r.schedule.Next(now).Sub(now)
		timer := time.NewTimer(wait)

		select {
		case <-stopCh:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if _, err := r.RescoreAll(ctx); err != nil {
			r.logger.Error("rescore pass failed",
				slog.String("index", r.writer.Index()),
				slog.String("error", err.Error()),
			)
		}
	}
}
