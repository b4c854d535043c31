// Package mongo implements store.Store on MongoDB using mongo-driver v2.
//
// Each exception is one document holding its field-bag and its score in
// every index it belongs to:
//
//	{_id: "WorkflowException:42", fields: {...}, scores: {FINANCE_QUEUE: 205}}
//
// A single-document update is atomic, so the field-bag and the index entry
// never diverge. The caller owns the *mongo.Database lifecycle.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/triage"
	"github.com/xraph/triage/exception"
	"github.com/xraph/triage/store"
)

// DefaultCollection is the collection exceptions are stored in.
const DefaultCollection = "triage_exceptions"

var _ store.Store = (*Store)(nil)

// Store is a MongoDB implementation of store.Store.
type Store struct {
	db     *mongod.Database
	col    *mongod.Collection
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithCollection overrides the collection name.
func WithCollection(name string) Option {
	return func(s *Store) {
		s.col = s.db.Collection(name)
	}
}

// New creates a new MongoDB store on db.
func New(db *mongod.Database, opts ...Option) *Store {
	s := &Store{
		db:     db,
		col:    db.Collection(DefaultCollection),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// exceptionModel is the stored document.
type exceptionModel struct {
	Key       string             `bson:"_id"`
	Fields    map[string]string  `bson:"fields"`
	Scores    map[string]float64 `bson:"scores"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// Migrate creates a wildcard index over all index scores.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongod.IndexModel{
		Keys: bson.D{{Key: "scores.$**", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("triage/mongo: migrate indexes: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

// Close is a no-op because the caller owns the database lifecycle.
func (s *Store) Close() error {
	return nil
}

// UpsertRanked replaces the field-bag and sets the index score in one
// document update.
func (s *Store) UpsertRanked(ctx context.Context, index string, e *exception.Entry) error {
	path, err := scorePath(index)
	if err != nil {
		return err
	}

	fields := e.Fields
	if fields == nil {
		fields = map[string]string{}
	}

	_, err = s.col.UpdateOne(ctx,
		bson.M{"_id": e.Key},
		bson.M{"$set": bson.M{
			"fields":     fields,
			path:         e.Score,
			"updated_at": time.Now().UTC(),
		}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("triage/mongo: upsert ranked: %w", err)
	}

	s.logger.Debug("ranked exception written",
		slog.String("index", index),
		slog.String("key", e.Key),
		slog.Float64("score", e.Score),
	)
	return nil
}

// Fields returns the field-bag stored under key.
func (s *Store) Fields(ctx context.Context, key string) (map[string]string, error) {
	var m exceptionModel
	err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, triage.ErrExceptionNotFound
		}
		return nil, fmt.Errorf("triage/mongo: get fields: %w", err)
	}
	if len(m.Fields) == 0 {
		return nil, triage.ErrExceptionNotFound
	}
	return m.Fields, nil
}

// Score returns the score of member in index.
func (s *Store) Score(ctx context.Context, index, member string) (float64, error) {
	path, err := scorePath(index)
	if err != nil {
		return 0, err
	}

	var m exceptionModel
	err = s.col.FindOne(ctx, bson.M{"_id": member, path: bson.M{"$exists": true}}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return 0, triage.ErrExceptionNotFound
		}
		return 0, fmt.Errorf("triage/mongo: score: %w", err)
	}
	return m.Scores[index], nil
}

// RangeByScore returns members of index within opts.
func (s *Store) RangeByScore(ctx context.Context, index string, opts store.RangeOpts) ([]store.Member, error) {
	path, err := scorePath(index)
	if err != nil {
		return nil, err
	}

	cond := bson.M{"$exists": true}
	if !math.IsInf(opts.Min, -1) {
		cond["$gte"] = opts.Min
	}
	if !math.IsInf(opts.Max, 1) {
		cond["$lte"] = opts.Max
	}

	dir := 1
	if opts.Descending {
		dir = -1
	}
	findOpts := options.Find().SetSort(bson.D{{Key: path, Value: dir}, {Key: "_id", Value: dir}})
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}

	cursor, err := s.col.Find(ctx, bson.M{path: cond}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("triage/mongo: range by score: %w", err)
	}
	defer cursor.Close(ctx)

	var models []exceptionModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("triage/mongo: range by score decode: %w", err)
	}

	members := make([]store.Member, 0, len(models))
	for _, m := range models {
		members = append(members, store.Member{Key: m.Key, Score: m.Scores[index]})
	}
	return members, nil
}

// Count returns the number of members in index.
func (s *Store) Count(ctx context.Context, index string) (int64, error) {
	path, err := scorePath(index)
	if err != nil {
		return 0, err
	}
	n, err := s.col.CountDocuments(ctx, bson.M{path: bson.M{"$exists": true}})
	if err != nil {
		return 0, fmt.Errorf("triage/mongo: count: %w", err)
	}
	return n, nil
}

// ── helpers ──────────────────────────────────────────────────────

// scorePath returns the document path of an index score. Index names become
// field names, so they may not be empty, contain dots or start with '$'.
func scorePath(index string) (string, error) {
	if index == "" || strings.Contains(index, ".") || strings.HasPrefix(index, "$") {
		return "", fmt.Errorf("%w: %q", triage.ErrInvalidIndex, index)
	}
	return "scores." + index, nil
}

// isNoDocuments returns true when err indicates no MongoDB documents found.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}
