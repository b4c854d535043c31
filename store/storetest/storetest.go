// Package storetest provides a conformance suite that every store.Store
// backend runs from its own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/xraph/triage"
	"github.com/xraph/triage/exception"
	"github.com/xraph/triage/store"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"Lifecycle", testLifecycle},
		{"UpsertAndRead", testUpsertAndRead},
		{"UpsertIsIdempotent", testUpsertIsIdempotent},
		{"UpsertOverwritesFields", testUpsertOverwritesFields},
		{"RangeOrdering", testRangeOrdering},
		{"RangeBoundsAndPaging", testRangeBoundsAndPaging},
		{"IndexesAreIsolated", testIndexesAreIsolated},
		{"NotFound", testNotFound},
		{"EmptyFieldBag", testEmptyFieldBag},
		{"ConcurrentUpserts", testConcurrentUpserts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func entry(key string, score float64, tags string) *exception.Entry {
	return &exception.Entry{
		Key: key,
		Fields: map[string]string{
			exception.FieldItemNumber:    "1",
			exception.FieldDaysInQueue:   "0",
			exception.FieldOrderPriority: "LOW",
			exception.FieldNeedByDate:    "2026-01-01T00:00:00",
			exception.FieldTags:          tags,
		},
		Score: score,
	}
}

func testLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func testUpsertAndRead(t *testing.T, s store.Store) {
	ctx := context.Background()
	e := entry("WorkflowException:1", 90, "epostrx,Finance_Queue")

	if err := s.UpsertRanked(ctx, "Q", e); err != nil {
		t.Fatalf("UpsertRanked: %v", err)
	}

	fields, err := s.Fields(ctx, e.Key)
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	for k, v := range e.Fields {
		if fields[k] != v {
			t.Errorf("field %s = %q, want %q", k, fields[k], v)
		}
	}

	score, err := s.Score(ctx, "Q", e.Key)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score != 90 {
		t.Errorf("Score = %v, want 90", score)
	}
}

func testUpsertIsIdempotent(t *testing.T, s store.Store) {
	ctx := context.Background()
	e := entry("WorkflowException:1", 90, "a")

	for range 3 {
		if err := s.UpsertRanked(ctx, "Q", e); err != nil {
			t.Fatalf("UpsertRanked: %v", err)
		}
	}
	e.Score = 120
	if err := s.UpsertRanked(ctx, "Q", e); err != nil {
		t.Fatalf("UpsertRanked: %v", err)
	}

	n, err := s.Count(ctx, "Q")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("Count = %d, want 1", n)
	}
	score, err := s.Score(ctx, "Q", e.Key)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score != 120 {
		t.Fatalf("Score = %v, want updated 120", score)
	}
}

func testUpsertOverwritesFields(t *testing.T, s store.Store) {
	ctx := context.Background()
	e := entry("WorkflowException:1", 10, "old")
	e.Fields["extra"] = "stale"
	if err := s.UpsertRanked(ctx, "Q", e); err != nil {
		t.Fatal(err)
	}

	e = entry("WorkflowException:1", 10, "new")
	if err := s.UpsertRanked(ctx, "Q", e); err != nil {
		t.Fatal(err)
	}

	fields, err := s.Fields(ctx, e.Key)
	if err != nil {
		t.Fatal(err)
	}
	if fields[exception.FieldTags] != "new" {
		t.Errorf("tags = %q, want new", fields[exception.FieldTags])
	}
	if _, ok := fields["extra"]; ok {
		t.Errorf("field-bag was merged, not replaced: %v", fields)
	}
}

func testRangeOrdering(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, e := range []*exception.Entry{
		entry("k:b", 50, ""),
		entry("k:c", 205, ""),
		entry("k:a", 50, ""),
		entry("k:d", 90, ""),
	} {
		if err := s.UpsertRanked(ctx, "Q", e); err != nil {
			t.Fatal(err)
		}
	}

	asc, err := s.RangeByScore(ctx, "Q", store.All())
	if err != nil {
		t.Fatalf("RangeByScore: %v", err)
	}
	assertKeys(t, asc, "k:a", "k:b", "k:d", "k:c")

	opts := store.All()
	opts.Descending = true
	desc, err := s.RangeByScore(ctx, "Q", opts)
	if err != nil {
		t.Fatalf("RangeByScore desc: %v", err)
	}
	assertKeys(t, desc, "k:c", "k:d", "k:b", "k:a")
	if desc[0].Score != 205 {
		t.Errorf("top score = %v, want 205", desc[0].Score)
	}
}

func testRangeBoundsAndPaging(t *testing.T, s store.Store) {
	ctx := context.Background()
	for i := range 10 {
		e := entry(fmt.Sprintf("k:%02d", i), float64(i*10), "")
		if err := s.UpsertRanked(ctx, "Q", e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.RangeByScore(ctx, "Q", store.RangeOpts{Min: 20, Max: 50})
	if err != nil {
		t.Fatal(err)
	}
	assertKeys(t, got, "k:02", "k:03", "k:04", "k:05")

	got, err = s.RangeByScore(ctx, "Q", store.RangeOpts{Min: math.Inf(-1), Max: math.Inf(1), Offset: 2, Limit: 3})
	if err != nil {
		t.Fatal(err)
	}
	assertKeys(t, got, "k:02", "k:03", "k:04")

	got, err = s.RangeByScore(ctx, "Q", store.RangeOpts{Min: math.Inf(-1), Max: math.Inf(1), Limit: 2, Descending: true})
	if err != nil {
		t.Fatal(err)
	}
	assertKeys(t, got, "k:09", "k:08")

	got, err = s.RangeByScore(ctx, "Q", store.RangeOpts{Min: math.Inf(-1), Max: math.Inf(1), Offset: 20})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty page, got %v", got)
	}
}

func testIndexesAreIsolated(t *testing.T, s store.Store) {
	ctx := context.Background()
	if err := s.UpsertRanked(ctx, "FINANCE", entry("k:1", 1, "")); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertRanked(ctx, "OPS", entry("k:2", 2, "")); err != nil {
		t.Fatal(err)
	}

	for index, want := range map[string]string{"FINANCE": "k:1", "OPS": "k:2"} {
		got, err := s.RangeByScore(ctx, index, store.All())
		if err != nil {
			t.Fatal(err)
		}
		assertKeys(t, got, want)
	}

	n, err := s.Count(ctx, "EMPTY")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("Count(EMPTY) = %d", n)
	}
}

func testNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	if _, err := s.Fields(ctx, "k:missing"); !errors.Is(err, triage.ErrExceptionNotFound) {
		t.Errorf("Fields: expected ErrExceptionNotFound, got %v", err)
	}
	if _, err := s.Score(ctx, "Q", "k:missing"); !errors.Is(err, triage.ErrExceptionNotFound) {
		t.Errorf("Score: expected ErrExceptionNotFound, got %v", err)
	}
	if err := s.UpsertRanked(ctx, "", entry("k:1", 1, "")); !errors.Is(err, triage.ErrInvalidIndex) {
		t.Errorf("UpsertRanked with empty index: expected ErrInvalidIndex, got %v", err)
	}
}

func testEmptyFieldBag(t *testing.T, s store.Store) {
	ctx := context.Background()
	if err := s.UpsertRanked(ctx, "Q", &exception.Entry{Key: "k:empty", Score: 3}); err != nil {
		t.Fatalf("UpsertRanked: %v", err)
	}
	if _, err := s.Fields(ctx, "k:empty"); !errors.Is(err, triage.ErrExceptionNotFound) {
		t.Errorf("Fields: expected ErrExceptionNotFound, got %v", err)
	}
	score, err := s.Score(ctx, "Q", "k:empty")
	if err != nil || score != 3 {
		t.Errorf("Score = %v, %v; want 3", score, err)
	}
}

func testConcurrentUpserts(t *testing.T, s store.Store) {
	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.UpsertRanked(ctx, "Q", entry(fmt.Sprintf("k:%d", i%5), float64(i), ""))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("UpsertRanked: %v", err)
		}
	}

	n, err := s.Count(ctx, "Q")
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Fatalf("Count = %d, want 5", n)
	}
}

func assertKeys(t *testing.T, got []store.Member, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d members %v, want %v", len(got), got, want)
	}
	for i := range want {
		if got[i].Key != want[i] {
			t.Fatalf("member %d = %q, want %q (all: %v)", i, got[i].Key, want[i], got)
		}
	}
}
