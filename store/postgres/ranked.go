package postgres

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/xraph/triage"
	"github.com/xraph/triage/exception"
	"github.com/xraph/triage/store"
)

// UpsertRanked replaces the field-bag and upserts the index row in one
// transaction.
func (s *Store) UpsertRanked(ctx context.Context, index string, e *exception.Entry) error {
	if index == "" {
		return triage.ErrInvalidIndex
	}

	fields := e.Fields
	if fields == nil {
		fields = map[string]string{}
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO triage_fields (key, fields, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE
			SET fields = EXCLUDED.fields, updated_at = NOW()`,
			e.Key, fields,
		); err != nil {
			return fmt.Errorf("write fields: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO triage_ranked (index_name, member, score, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (index_name, member) DO UPDATE
			SET score = EXCLUDED.score, updated_at = NOW()`,
			index, e.Key, e.Score,
		); err != nil {
			return fmt.Errorf("write score: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("triage/postgres: upsert ranked: %w", err)
	}
	return nil
}

// Fields returns the field-bag stored under key.
func (s *Store) Fields(ctx context.Context, key string) (map[string]string, error) {
	var fields map[string]string
	err := s.pool.QueryRow(ctx,
		`SELECT fields FROM triage_fields WHERE key = $1`, key,
	).Scan(&fields)
	if err != nil {
		if isNoRows(err) {
			return nil, triage.ErrExceptionNotFound
		}
		return nil, fmt.Errorf("triage/postgres: get fields: %w", err)
	}
	if len(fields) == 0 {
		return nil, triage.ErrExceptionNotFound
	}
	return fields, nil
}

// Score returns the score of member in index.
func (s *Store) Score(ctx context.Context, index, member string) (float64, error) {
	var score float64
	err := s.pool.QueryRow(ctx,
		`SELECT score FROM triage_ranked WHERE index_name = $1 AND member = $2`,
		index, member,
	).Scan(&score)
	if err != nil {
		if isNoRows(err) {
			return 0, triage.ErrExceptionNotFound
		}
		return 0, fmt.Errorf("triage/postgres: score: %w", err)
	}
	return score, nil
}

// RangeByScore returns members of index within opts.
func (s *Store) RangeByScore(ctx context.Context, index string, opts store.RangeOpts) ([]store.Member, error) {
	var b strings.Builder
	args := []any{index}

	b.WriteString(`SELECT member, score FROM triage_ranked WHERE index_name = $1`)
	if !math.IsInf(opts.Min, -1) {
		args = append(args, opts.Min)
		fmt.Fprintf(&b, " AND score >= $%d", len(args))
	}
	if !math.IsInf(opts.Max, 1) {
		args = append(args, opts.Max)
		fmt.Fprintf(&b, " AND score <= $%d", len(args))
	}
	if opts.Descending {
		b.WriteString(" ORDER BY score DESC, member DESC")
	} else {
		b.WriteString(" ORDER BY score ASC, member ASC")
	}
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("triage/postgres: range by score: %w", err)
	}

	members, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.Member, error) {
		var m store.Member
		err := row.Scan(&m.Key, &m.Score)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("triage/postgres: range by score scan: %w", err)
	}
	return members, nil
}

// Count returns the number of members in index.
func (s *Store) Count(ctx context.Context, index string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM triage_ranked WHERE index_name = $1`, index,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("triage/postgres: count: %w", err)
	}
	return n, nil
}
