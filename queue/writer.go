package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xraph/triage"
	"github.com/xraph/triage/backoff"
	"github.com/xraph/triage/exception"
	"github.com/xraph/triage/ext"
	"github.com/xraph/triage/middleware"
	"github.com/xraph/triage/scoring"
	"github.com/xraph/triage/store"
)

// Writer scores exceptions and persists them into a ranked index.
// It is safe for concurrent use.
type Writer struct {
	store  store.Store
	cfg    triage.Config
	scorer scoring.Scorer
	logger *slog.Logger

	middleware []middleware.Middleware
	chain      middleware.Middleware

	pending    []ext.Extension
	extensions *ext.Registry

	retry    backoff.Strategy
	attempts int
	limiter  *rate.Limiter
}

// NewWriter creates a Writer over s. The default index is FINANCE_QUEUE
// and the default key prefix is "WorkflowException:".
func NewWriter(s store.Store, opts ...Option) (*Writer, error) {
	if s == nil {
		return nil, triage.ErrNoStore
	}

	w := &Writer{
		store:    s,
		cfg:      triage.DefaultConfig(),
		logger:   slog.Default(),
		attempts: 1,
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.cfg.Index == "" {
		return nil, fmt.Errorf("%w: empty index", triage.ErrInvalidIndex)
	}
	if w.scorer == nil {
		w.scorer = scoring.New()
	}
	if w.attempts < 1 {
		w.attempts = 1
	}

	w.extensions = ext.NewRegistry(w.logger)
	for _, e := range w.pending {
		w.extensions.Register(e)
	}
	w.pending = nil

	// The timeout sits innermost so every attempt gets its own deadline.
	mws := append(append([]middleware.Middleware(nil), w.middleware...), middleware.Timeout(w.cfg.WriteTimeout))
	w.chain = middleware.Chain(mws...)

	return w, nil
}

// Index returns the ranked index the writer targets.
func (w *Writer) Index() string { return w.cfg.Index }

// Key returns the store key for an exception id.
func (w *Writer) Key(id int64) string { return Key(w.cfg.KeyPrefix, id) }

// Scorer returns the scorer used for new entries.
func (w *Writer) Scorer() scoring.Scorer { return w.scorer }

// Extensions returns the writer's extension registry.
func (w *Writer) Extensions() *ext.Registry { return w.extensions }

// Reader returns a Reader over the same store, index and key prefix.
func (w *Writer) Reader() *Reader {
	return NewReader(w.store,
		ReaderIndex(w.cfg.Index),
		ReaderKeyPrefix(w.cfg.KeyPrefix),
		ReaderLogger(w.logger),
	)
}

// Entry builds the persisted form of e without writing it.
func (w *Writer) Entry(e *exception.Exception) (*exception.Entry, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: nil exception", triage.ErrInvalidArgument)
	}
	if !e.HasID() {
		return nil, fmt.Errorf("%w: exception has no id", triage.ErrInvalidArgument)
	}
	return &exception.Entry{
		Key:    w.Key(e.ID()),
		Fields: e.Fields(),
		Score:  w.scorer.Score(e),
	}, nil
}

// AddException scores e and writes its field-bag and ranked entry. Adding
// the same exception again overwrites the field-bag and moves the existing
// member to its new score. Store failures wrap triage.ErrStore.
func (w *Writer) AddException(ctx context.Context, e *exception.Exception) error {
	entry, err := w.Entry(e)
	if err != nil {
		return err
	}
	return w.write(ctx, e.ID(), entry)
}

func (w *Writer) write(ctx context.Context, id int64, entry *exception.Entry) error {
	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("queue: rate limit wait: %w", err)
		}
	}

	start := time.Now()
	err := backoff.Retry(ctx, w.retry, w.attempts, func(ctx context.Context, attempt int) error {
		wr := &middleware.Write{
			Index:       w.cfg.Index,
			ExceptionID: id,
			Entry:       entry,
			Attempt:     attempt,
		}
		err := w.chain(ctx, wr, func(ctx context.Context) error {
			return w.store.UpsertRanked(ctx, w.cfg.Index, entry)
		})
		if err != nil && attempt < w.attempts {
			w.logger.Warn("retrying exception write",
				slog.String("key", entry.Key),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
			w.extensions.EmitExceptionRetrying(ctx, w.cfg.Index, id, attempt, err)
		}
		return err
	})
	if err != nil {
		err = fmt.Errorf("%w: add %s to %s: %w", triage.ErrStore, entry.Key, w.cfg.Index, err)
		w.extensions.EmitExceptionFailed(ctx, w.cfg.Index, id, err)
		return err
	}

	w.extensions.EmitExceptionAdded(ctx, w.cfg.Index, entry, time.Since(start))
	return nil
}

// AddExceptions writes es concurrently, at most BatchConcurrency at a time.
// The first error cancels the remaining writes and is returned.
func (w *Writer) AddExceptions(ctx context.Context, es []*exception.Exception) error {
	entries := make([]*exception.Entry, len(es))
	for i, e := range es {
		entry, err := w.Entry(e)
		if err != nil {
			return fmt.Errorf("queue: batch item %d: %w", i, err)
		}
		entries[i] = entry
	}

	g, gctx := errgroup.WithContext(ctx)
	if w.cfg.BatchConcurrency > 0 {
		g.SetLimit(w.cfg.BatchConcurrency)
	}
	for i, entry := range entries {
		id := es[i].ID()
		g.Go(func() error {
			return w.write(gctx, id, entry)
		})
	}
	return g.Wait()
}

// Shutdown notifies extensions that the writer is going away. It does not
// close the store, which the caller owns.
func (w *Writer) Shutdown(ctx context.Context) {
	w.extensions.EmitShutdown(ctx)
}
