package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type kvQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// KVRepo keeps small string values in the kv_store table. It backs the
// cooldown gate when redis is not deployed. Expiry is computed and compared
// on the database clock.
type KVRepo struct {
	db kvQuerier
}

func NewKVRepo(pool *pgxpool.Pool) *KVRepo {
	if pool == nil {
		return &KVRepo{}
	}
	return &KVRepo{db: pool}
}

const (
	kvGetQuery = `
SELECT value
FROM kv_store
WHERE key = $1
  AND (expires_at IS NULL OR expires_at > NOW())
`

	kvSetQuery = `
INSERT INTO kv_store (key, value, expires_at, updated_at)
VALUES (
	$1,
	$2,
	CASE WHEN $3::bigint > 0 THEN NOW() + $3::bigint * INTERVAL '1 millisecond' END,
	NOW()
)
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value,
    expires_at = EXCLUDED.expires_at,
    updated_at = NOW()
`

	kvDeleteQuery        = `DELETE FROM kv_store WHERE key = $1`
	kvDeleteExpiredQuery = `DELETE FROM kv_store WHERE expires_at IS NOT NULL AND expires_at <= $1`
)

func (r *KVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	if r.db == nil {
		return "", false, fmt.Errorf("postgres pool is nil")
	}
	if key == "" {
		return "", false, fmt.Errorf("kv key is required")
	}

	var value string
	if err := r.db.QueryRow(ctx, kvGetQuery, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get kv value: %w", err)
	}
	return value, true, nil
}

// Set upserts value. A non-positive ttl stores it without expiry.
func (r *KVRepo) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if r.db == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if key == "" {
		return fmt.Errorf("kv key is required")
	}

	ttlMillis := int64(0)
	if ttl > 0 {
		ttlMillis = ttl.Milliseconds()
		if ttlMillis == 0 {
			ttlMillis = 1
		}
	}

	if _, err := r.db.Exec(ctx, kvSetQuery, key, value, ttlMillis); err != nil {
		return fmt.Errorf("set kv value: %w", err)
	}
	return nil
}

func (r *KVRepo) Delete(ctx context.Context, key string) error {
	if r.db == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.db.Exec(ctx, kvDeleteQuery, key); err != nil {
		return fmt.Errorf("delete kv value: %w", err)
	}
	return nil
}

func (r *KVRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if r.db == nil {
		return 0, nil
	}

	tag, err := r.db.Exec(ctx, kvDeleteExpiredQuery, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired kv values: %w", err)
	}
	return tag.RowsAffected(), nil
}
