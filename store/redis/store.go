// Package redis implements store.Store on Redis. Field-bags are Redis
// Hashes and ranked indexes are Sorted Sets; both are written by one Lua
// script, which checks key types before it writes anything.
//
// Usage:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	s := redisstore.New(client)
//	if err := s.Ping(ctx); err != nil { ... }
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/triage"
	"github.com/xraph/triage/exception"
	"github.com/xraph/triage/store"
)

var _ store.Store = (*Store)(nil)

// upsertScript replaces the hash at KEYS[2] and sets its score in the sorted
// set KEYS[1]. ARGV[1] is the score, the rest are field/value pairs. MULTI
// does not roll back a failed command, so the types are checked first.
var upsertScript = goredis.NewScript(`
local it = redis.call('TYPE', KEYS[1])['ok']
if it ~= 'zset' and it ~= 'none' then
  return redis.error_reply('WRONGTYPE index ' .. KEYS[1] .. ' is not a sorted set')
end
redis.call('DEL', KEYS[2])
if #ARGV > 1 then
  redis.call('HSET', KEYS[2], unpack(ARGV, 2))
end
redis.call('ZADD', KEYS[1], ARGV[1], KEYS[2])
return 1
`)

// Option configures the Store.
type Option func(*Store)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store implements store.Store backed by Redis.
type Store struct {
	client goredis.Cmdable
	logger *slog.Logger
}

// New creates a new Redis-backed store. The caller owns the Redis client
// lifecycle.
func New(client goredis.Cmdable, opts ...Option) *Store {
	s := &Store{client: client, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Client returns the underlying Redis client.
func (s *Store) Client() goredis.Cmdable { return s.client }

// Migrate is a no-op for Redis (schemaless).
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping verifies the Redis connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op; the caller owns the Redis client lifecycle.
func (s *Store) Close() error { return nil }

// UpsertRanked replaces the hash at e.Key and sets its score in the index
// sorted set in one script run: DEL, HSET, ZADD. If index holds a value
// that is not a sorted set nothing is written.
func (s *Store) UpsertRanked(ctx context.Context, index string, e *exception.Entry) error {
	if index == "" {
		return triage.ErrInvalidIndex
	}
	if e.Key == index {
		return fmt.Errorf("%w: key %q collides with the index", triage.ErrInvalidArgument, e.Key)
	}

	args := append([]interface{}{strconv.FormatFloat(e.Score, 'f', -1, 64)}, fieldArgs(e.Fields)...)
	if err := upsertScript.Run(ctx, s.client, []string{index, e.Key}, args...).Err(); err != nil {
		return fmt.Errorf("triage/redis: upsert ranked: %w", err)
	}

	s.logger.Debug("ranked exception written",
		slog.String("index", index),
		slog.String("key", e.Key),
		slog.Float64("score", e.Score),
	)
	return nil
}

// Fields returns the hash stored under key.
func (s *Store) Fields(ctx context.Context, key string) (map[string]string, error) {
	vals, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("triage/redis: get fields: %w", err)
	}
	if len(vals) == 0 {
		return nil, triage.ErrExceptionNotFound
	}
	return vals, nil
}

// Score returns the sorted-set score of member.
func (s *Store) Score(ctx context.Context, index, member string) (float64, error) {
	score, err := s.client.ZScore(ctx, index, member).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, triage.ErrExceptionNotFound
		}
		return 0, fmt.Errorf("triage/redis: score: %w", err)
	}
	return score, nil
}

// RangeByScore issues ZRANGEBYSCORE, or ZREVRANGEBYSCORE when descending.
func (s *Store) RangeByScore(ctx context.Context, index string, opts store.RangeOpts) ([]store.Member, error) {
	by := &goredis.ZRangeBy{
		Min: formatBound(opts.Min),
		Max: formatBound(opts.Max),
	}
	if opts.Offset > 0 || opts.Limit > 0 {
		by.Offset = int64(opts.Offset)
		by.Count = -1
		if opts.Limit > 0 {
			by.Count = int64(opts.Limit)
		}
	}

	var (
		zs  []goredis.Z
		err error
	)
	if opts.Descending {
		zs, err = s.client.ZRevRangeByScoreWithScores(ctx, index, by).Result()
	} else {
		zs, err = s.client.ZRangeByScoreWithScores(ctx, index, by).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("triage/redis: range by score: %w", err)
	}

	members := make([]store.Member, 0, len(zs))
	for _, z := range zs {
		key, ok := z.Member.(string)
		if !ok {
			continue
		}
		members = append(members, store.Member{Key: key, Score: z.Score})
	}
	return members, nil
}

// Count returns ZCARD of the index.
func (s *Store) Count(ctx context.Context, index string) (int64, error) {
	n, err := s.client.ZCard(ctx, index).Result()
	if err != nil {
		return 0, fmt.Errorf("triage/redis: count: %w", err)
	}
	return n, nil
}

// ── helpers ──

// fieldArgs flattens fields into HSET arguments, ordered by field name.
func fieldArgs(fields map[string]string) []interface{} {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	slices.Sort(names)

	args := make([]interface{}, 0, 2*len(names))
	for _, k := range names {
		args = append(args, k, fields[k])
	}
	return args
}

// formatBound renders a score bound in Redis syntax, mapping infinities to
// "-inf" and "+inf".
func formatBound(f float64) string {
	switch {
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsInf(f, 1):
		return "+inf"
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}
