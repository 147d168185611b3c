package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront-client/internal/port"
)

const (
	getEntrySQL = `SELECT value FROM kv_entries WHERE namespace = $1 AND key = $2`

	getEntryForUpdateSQL = getEntrySQL + ` FOR UPDATE`

	upsertEntrySQL = `
INSERT INTO kv_entries (namespace, key, value, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	insertEntrySQL = `
INSERT INTO kv_entries (namespace, key, value, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (namespace, key) DO NOTHING`

	updateEntrySQL = `UPDATE kv_entries SET value = $3, updated_at = NOW() WHERE namespace = $1 AND key = $2`

	deleteEntrySQL = `DELETE FROM kv_entries WHERE namespace = $1 AND key = $2`
)

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresStore struct {
	pool      *pgxpool.Pool
	namespace string
}

func NewPostgres(pool *pgxpool.Pool, namespace string) (port.Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	if namespace == "" {
		return nil, fmt.Errorf("namespace is empty")
	}

	return &postgresStore{
		pool:      pool,
		namespace: namespace,
	}, nil
}

func (s *postgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("key is empty")
	}

	value, ok, err := s.get(ctx, s.pool, getEntrySQL, key)
	if err != nil {
		return "", false, fmt.Errorf("s.get: %w", err)
	}

	return value, ok, nil
}

func (s *postgresStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	if _, err := s.pool.Exec(ctx, upsertEntrySQL, s.namespace, key, value); err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}

func (s *postgresStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	if _, err := s.pool.Exec(ctx, deleteEntrySQL, s.namespace, key); err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}

// CompareAndSwap locks the existing row for the duration of the transaction.
// An absent row cannot be locked, so the insert path relies on the primary
// key: a concurrent insert makes ON CONFLICT DO NOTHING affect zero rows.
func (s *postgresStore) CompareAndSwap(ctx context.Context, key string, old, next *string) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("key is empty")
	}

	swapped, err := withTx(ctx, s.pool, func(tx pgx.Tx) (bool, error) {
		current, present, err := s.get(ctx, tx, getEntryForUpdateSQL, key)
		if err != nil {
			return false, fmt.Errorf("s.get: %w", err)
		}

		if !matches(current, present, old) {
			return false, nil
		}

		switch {
		case next == nil:
			if !present {
				return true, nil
			}
			if _, err := tx.Exec(ctx, deleteEntrySQL, s.namespace, key); err != nil {
				return false, fmt.Errorf("tx.Exec delete: %w", err)
			}
			return true, nil

		case !present:
			tag, err := tx.Exec(ctx, insertEntrySQL, s.namespace, key, *next)
			if err != nil {
				return false, fmt.Errorf("tx.Exec insert: %w", err)
			}
			return tag.RowsAffected() > 0, nil

		default:
			if _, err := tx.Exec(ctx, updateEntrySQL, s.namespace, key, *next); err != nil {
				return false, fmt.Errorf("tx.Exec update: %w", err)
			}
			return true, nil
		}
	})
	if err != nil {
		return false, fmt.Errorf("withTx: %w", err)
	}

	return swapped, nil
}

func (s *postgresStore) get(ctx context.Context, q querier, sql, key string) (string, bool, error) {
	var value string

	err := q.QueryRow(ctx, sql, s.namespace, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return value, true, nil
}
