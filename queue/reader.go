package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/xraph/triage"
	"github.com/xraph/triage/exception"
	"github.com/xraph/triage/store"
)

// Item is a ranked exception read back from the store.
type Item struct {
	ID        int64                `json:"id"`
	Key       string               `json:"key"`
	Score     float64              `json:"score"`
	Exception *exception.Exception `json:"-"`
}

// Reader decodes ranked members back into exceptions.
type Reader struct {
	store     store.Store
	index     string
	keyPrefix string
	logger    *slog.Logger
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// ReaderIndex sets the ranked index to read.
func ReaderIndex(name string) ReaderOption {
	return func(r *Reader) { r.index = name }
}

// ReaderKeyPrefix sets the key prefix used to recover ids from members.
func ReaderKeyPrefix(prefix string) ReaderOption {
	return func(r *Reader) { r.keyPrefix = prefix }
}

// ReaderLogger sets the logger.
func ReaderLogger(l *slog.Logger) ReaderOption {
	return func(r *Reader) { r.logger = l }
}

// NewReader creates a Reader over s with the default index and prefix.
func NewReader(s store.Store, opts ...ReaderOption) *Reader {
	r := &Reader{
		store:     s,
		index:     triage.DefaultIndex,
		keyPrefix: triage.DefaultKeyPrefix,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Index returns the ranked index the reader targets.
func (r *Reader) Index() string { return r.index }

// Top returns up to n items, highest score first. n <= 0 returns every item.
func (r *Reader) Top(ctx context.Context, n int) ([]*Item, error) {
	opts := store.RangeOpts{
		Min:        math.Inf(-1),
		Max:        math.Inf(1),
		Limit:      max(n, 0),
		Descending: true,
	}
	return r.Range(ctx, opts)
}

// Range returns the items selected by opts, ascending by score unless
// opts.Descending is set. Members whose field-bag has disappeared are
// skipped with a warning.
func (r *Reader) Range(ctx context.Context, opts store.RangeOpts) ([]*Item, error) {
	members, err := r.store.RangeByScore(ctx, r.index, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: range %s: %w", triage.ErrStore, r.index, err)
	}

	items := make([]*Item, 0, len(members))
	for _, m := range members {
		item, err := r.decode(ctx, m.Key, m.Score)
		if errors.Is(err, triage.ErrExceptionNotFound) {
			r.logger.Warn("ranked member has no field-bag",
				slog.String("key", m.Key),
				slog.String("index", r.index),
			)
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Get returns the exception with the given id and its current score.
func (r *Reader) Get(ctx context.Context, id int64) (*Item, error) {
	key := Key(r.keyPrefix, id)
	score, err := r.store.Score(ctx, r.index, key)
	if err != nil {
		return nil, fmt.Errorf("%w: score %s: %w", triage.ErrStore, key, err)
	}
	return r.decode(ctx, key, score)
}

// Count returns the number of ranked members.
func (r *Reader) Count(ctx context.Context) (int64, error) {
	n, err := r.store.Count(ctx, r.index)
	if err != nil {
		return 0, fmt.Errorf("%w: count %s: %w", triage.ErrStore, r.index, err)
	}
	return n, nil
}

func (r *Reader) decode(ctx context.Context, key string, score float64) (*Item, error) {
	id, err := ParseKey(r.keyPrefix, key)
	if err != nil {
		return nil, err
	}
	fields, err := r.store.Fields(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: fields %s: %w", triage.ErrStore, key, err)
	}
	e, err := exception.FromFields(id, fields)
	if err != nil {
		return nil, fmt.Errorf("queue: decode %s: %w", key, err)
	}
	return &Item{ID: id, Key: key, Score: score, Exception: e}, nil
}
