package store

import (
	"context"
	"math"

	"github.com/xraph/triage/exception"
)

// Member is one entry of a ranked index.
type Member struct {
	Key   string  `json:"key"`
	Score float64 `json:"score"`
}

// RangeOpts selects a slice of a ranked index by score.
type RangeOpts struct {
	// Min and Max bound the score, inclusive. Use math.Inf for open ends.
	Min float64
	Max float64

	// Offset is the number of matching members to skip.
	Offset int
	// Limit is the maximum number of members to return. Zero means no limit.
	Limit int

	// Descending returns the highest scores first. Ties are ordered by key,
	// reversed along with the scores.
	Descending bool
}

// All returns RangeOpts covering every score, ascending.
func All() RangeOpts {
	return RangeOpts{Min: math.Inf(-1), Max: math.Inf(1)}
}

// Store is the persistence contract for ranked exceptions: a keyed map of
// text field-bags plus named ranked indexes over those keys.
type Store interface {
	// UpsertRanked replaces the field-bag stored under e.Key and sets the
	// score of e.Key in index to e.Score. Both writes succeed or neither
	// does: a backend checks everything that could fail the second write
	// before it makes the first. An existing member is updated in place.
	UpsertRanked(ctx context.Context, index string, e *exception.Entry) error

	// Fields returns the field-bag stored under key.
	Fields(ctx context.Context, key string) (map[string]string, error)

	// Score returns the score of member in index.
	Score(ctx context.Context, index, member string) (float64, error)

	// RangeByScore returns members of index within opts, ascending by score
	// unless opts.Descending is set.
	RangeByScore(ctx context.Context, index string, opts RangeOpts) ([]Member, error)

	// Count returns the number of members in index.
	Count(ctx context.Context, index string) (int64, error)

	// Migrate prepares the backend schema, if it has one.
	Migrate(ctx context.Context) error

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Close releases resources the store owns.
	Close() error
}
