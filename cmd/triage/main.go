// Package main ranks the two reference exceptions and prints the queue in
// priority order.
//
// Usage:
//
//	TRIAGE_REDIS_ADDR=localhost:6379 go run ./cmd/triage
//
// Without TRIAGE_REDIS_ADDR the demo runs against the in-memory store.
// TRIAGE_INDEX overrides the ranked index (default FINANCE_QUEUE). Set
// TRIAGE_RESCORE_SCHEDULE (for example "@every 1m") to keep the process
// running and re-score the index on that schedule until interrupted.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/triage"
	"github.com/xraph/triage/backoff"
	"github.com/xraph/triage/exception"
	"github.com/xraph/triage/middleware"
	"github.com/xraph/triage/observability"
	"github.com/xraph/triage/queue"
	"github.com/xraph/triage/rescore"
	"github.com/xraph/triage/store"
	"github.com/xraph/triage/store/memory"
	redisstore "github.com/xraph/triage/store/redis"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := run(logger); err != nil {
		logger.Error("triage demo failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := triage.DefaultConfig()
	cfg.WriteTimeout = 5 * time.Second
	if idx := os.Getenv("TRIAGE_INDEX"); idx != "" {
		cfg.Index = idx
	}

	// ──────────────────────────────────────────────────
	// 1. Open the store
	// ──────────────────────────────────────────────────

	s, closeStore, err := openStore(ctx, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// ──────────────────────────────────────────────────
	// 2. Build the writer
	// ──────────────────────────────────────────────────

	w, err := queue.NewWriter(s,
		queue.WithConfig(cfg),
		queue.WithLogger(logger),
		queue.WithMiddleware(
			middleware.Logging(logger),
			middleware.Recover(logger),
			middleware.Tracing(),
			middleware.Metrics(),
		),
		queue.WithExtensions(observability.NewMetricsExtension()),
		queue.WithRetry(backoff.DefaultStrategy(), 3),
	)
	if err != nil {
		return fmt.Errorf("create writer: %w", err)
	}
	defer w.Shutdown(context.Background())

	// ──────────────────────────────────────────────────
	// 3. Rank the reference exceptions
	// ──────────────────────────────────────────────────

	today := time.Now()
	a, err := newException(123123123, 0, "Low", today.AddDate(0, 0, 20), "epostrx", "Finance_Queue", "Default_Filter")
	if err != nil {
		return err
	}
	b, err := newException(123123124, 1, "High", today.AddDate(0, 0, 5), "epostrx", "Finance_Queue")
	if err != nil {
		return err
	}
	if err := w.AddExceptions(ctx, []*exception.Exception{a, b}); err != nil {
		return fmt.Errorf("add exceptions: %w", err)
	}

	// ──────────────────────────────────────────────────
	// 4. Print the ranking
	// ──────────────────────────────────────────────────

	items, err := w.Reader().Top(ctx, 10)
	if err != nil {
		return fmt.Errorf("read ranking: %w", err)
	}
	fmt.Printf("%s (%d ranked)\n", w.Index(), len(items))
	for i, item := range items {
		fmt.Printf("%2d. %-30s %6.1f  %-6s days=%d tags=%v\n",
			i+1, item.Key, item.Score,
			item.Exception.PriorityName(), item.Exception.DaysInQueue(), item.Exception.Tags())
	}

	// ──────────────────────────────────────────────────
	// 5. Optionally keep re-scoring until interrupted
	// ──────────────────────────────────────────────────

	schedule := os.Getenv("TRIAGE_RESCORE_SCHEDULE")
	if schedule == "" {
		return nil
	}
	r, err := rescore.New(w, rescore.WithSchedule(schedule), rescore.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := r.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.Stop(shutdownCtx)
}

func openStore(ctx context.Context, logger *slog.Logger) (store.Store, func(), error) {
	addr := os.Getenv("TRIAGE_REDIS_ADDR")
	if addr == "" {
		logger.Info("TRIAGE_REDIS_ADDR not set, using in-memory store")
		m := memory.New()
		return m, func() { _ = m.Close() }, nil
	}

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	s := redisstore.New(client, redisstore.WithLogger(logger))
	if err := s.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	logger.Info("connected to redis", slog.String("addr", addr))
	return s, func() { _ = client.Close() }, nil
}

func newException(id int64, days int, priority string, needBy time.Time, tags ...string) (*exception.Exception, error) {
	e := exception.New(id)
	e.SetItemNumber(id)
	if err := e.SetDaysInQueue(days); err != nil {
		return nil, err
	}
	if err := e.SetPriority(priority); err != nil {
		return nil, err
	}
	e.SetNeedByDate(needBy)
	if err := e.SetTags(tags); err != nil {
		return nil, err
	}
	return e, nil
}
