// Package memory implements store.Store in process memory. It is safe for
// concurrent access and intended for tests and development.
package memory

import (
	"context"
	"errors"
	"maps"
	"sort"
	"sync"

	"github.com/xraph/triage"
	"github.com/xraph/triage/exception"
	"github.com/xraph/triage/store"
)

var _ store.Store = (*Store)(nil)

// Store is a fully in-memory implementation of store.Store.
type Store struct {
	mu sync.RWMutex

	// fields maps key → field name → value.
	fields map[string]map[string]string
	// indexes maps index name → member → score.
	indexes map[string]map[string]float64

	closed bool
}

// New returns a new empty Store.
func New() *Store {
	return &Store{
		fields:  make(map[string]map[string]string),
		indexes: make(map[string]map[string]float64),
	}
}

// ──────────────────────────────────────────────────
// Lifecycle: Migrate / Ping / Close
// ──────────────────────────────────────────────────

// Migrate is a no-op for the memory store.
func (m *Store) Migrate(_ context.Context) error { return nil }

// Ping fails only after Close.
func (m *Store) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return errClosed
	}
	return nil
}

// Close marks the store closed; later calls fail.
func (m *Store) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var errClosed = errors.New("triage/memory: store closed")

// ──────────────────────────────────────────────────
// Ranked writes and reads
// ──────────────────────────────────────────────────

// UpsertRanked replaces the field-bag and sets the member score under a
// single lock.
func (m *Store) UpsertRanked(_ context.Context, index string, e *exception.Entry) error {
	if index == "" {
		return triage.ErrInvalidIndex
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}

	// An empty field-bag leaves no key behind, as in Redis.
	if len(e.Fields) == 0 {
		delete(m.fields, e.Key)
	} else {
		m.fields[e.Key] = maps.Clone(e.Fields)
	}
	idx, ok := m.indexes[index]
	if !ok {
		idx = make(map[string]float64)
		m.indexes[index] = idx
	}
	idx[e.Key] = e.Score
	return nil
}

// Fields returns a copy of the field-bag stored under key.
func (m *Store) Fields(_ context.Context, key string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, errClosed
	}
	f, ok := m.fields[key]
	if !ok {
		return nil, triage.ErrExceptionNotFound
	}
	return maps.Clone(f), nil
}

// Score returns the score of member in index.
func (m *Store) Score(_ context.Context, index, member string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, errClosed
	}
	s, ok := m.indexes[index][member]
	if !ok {
		return 0, triage.ErrExceptionNotFound
	}
	return s, nil
}

// RangeByScore returns members of index within opts, ordered by score then
// key.
func (m *Store) RangeByScore(_ context.Context, index string, opts store.RangeOpts) ([]store.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, errClosed
	}

	idx := m.indexes[index]
	members := make([]store.Member, 0, len(idx))
	for k, s := range idx {
		if s < opts.Min || s > opts.Max {
			continue
		}
		members = append(members, store.Member{Key: k, Score: s})
	}

	sort.Slice(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		return a.Key < b.Key
	})
	if opts.Descending {
		for i, j := 0, len(members)-1; i < j; i, j = i+1, j-1 {
			members[i], members[j] = members[j], members[i]
		}
	}

	// Apply offset/limit.
	if opts.Offset >= len(members) {
		return nil, nil
	}
	if opts.Offset > 0 {
		members = members[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(members) {
		members = members[:opts.Limit]
	}
	return members, nil
}

// Count returns the number of members in index.
func (m *Store) Count(_ context.Context, index string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, errClosed
	}
	return int64(len(m.indexes[index])), nil
}
