package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type recordedQuery struct {
	sql  string
	args []any
}

type fakeRow struct {
	value string
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.value
	return nil
}

type fakeQuerier struct {
	queries []recordedQuery
	row     fakeRow
	tag     string
	execErr error
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.queries = append(q.queries, recordedQuery{sql: sql, args: args})
	if q.execErr != nil {
		return pgconn.CommandTag{}, q.execErr
	}
	return pgconn.NewCommandTag(q.tag), nil
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.queries = append(q.queries, recordedQuery{sql: sql, args: args})
	return q.row
}

func (q *fakeQuerier) last(t *testing.T) recordedQuery {
	t.Helper()
	if len(q.queries) == 0 {
		t.Fatalf("expected a query to be issued")
	}
	return q.queries[len(q.queries)-1]
}

func TestKVRepoGetSkipsExpiredRows(t *testing.T) {
	db := &fakeQuerier{row: fakeRow{value: "1700000000000"}}
	repo := &KVRepo{db: db}

	value, ok, err := repo.Get(context.Background(), "sensgen:cooldown_end")
	if err != nil || !ok || value != "1700000000000" {
		t.Fatalf("unexpected get result: value=%q ok=%v err=%v", value, ok, err)
	}

	q := db.last(t)
	if !strings.Contains(q.sql, "expires_at IS NULL OR expires_at > NOW()") {
		t.Fatalf("get must filter expired rows, got query %q", q.sql)
	}
	if len(q.args) != 1 || q.args[0] != "sensgen:cooldown_end" {
		t.Fatalf("unexpected get args: %v", q.args)
	}
}

func TestKVRepoGetMissingRow(t *testing.T) {
	repo := &KVRepo{db: &fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}}

	value, ok, err := repo.Get(context.Background(), "k")
	if err != nil || ok || value != "" {
		t.Fatalf("expected miss, got value=%q ok=%v err=%v", value, ok, err)
	}

	repo = &KVRepo{db: &fakeQuerier{row: fakeRow{err: errors.New("conn reset")}}}
	if _, _, err := repo.Get(context.Background(), "k"); err == nil {
		t.Fatalf("expected scan error to propagate")
	}
}

func TestKVRepoSetUpsertsWithTTL(t *testing.T) {
	db := &fakeQuerier{tag: "INSERT 0 1"}
	repo := &KVRepo{db: db}

	if err := repo.Set(context.Background(), "k", "v", 5*time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	q := db.last(t)
	if !strings.Contains(q.sql, "ON CONFLICT (key) DO UPDATE") || !strings.Contains(q.sql, "expires_at = EXCLUDED.expires_at") {
		t.Fatalf("set must upsert value and expiry, got query %q", q.sql)
	}
	if len(q.args) != 3 || q.args[0] != "k" || q.args[1] != "v" || q.args[2] != int64(300000) {
		t.Fatalf("unexpected set args: %v", q.args)
	}

	if err := repo.Set(context.Background(), "k", "v", 0); err != nil {
		t.Fatalf("set without ttl: %v", err)
	}
	if got := db.last(t).args[2]; got != int64(0) {
		t.Fatalf("expected no ttl, got %v", got)
	}

	if err := repo.Set(context.Background(), "k", "v", 200*time.Microsecond); err != nil {
		t.Fatalf("set sub-millisecond ttl: %v", err)
	}
	if got := db.last(t).args[2]; got != int64(1) {
		t.Fatalf("expected sub-millisecond ttl to round up, got %v", got)
	}
}

func TestKVRepoDeleteExpired(t *testing.T) {
	db := &fakeQuerier{tag: "DELETE 3"}
	repo := &KVRepo{db: db}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))

	n, err := repo.DeleteExpired(context.Background(), now)
	if err != nil || n != 3 {
		t.Fatalf("unexpected purge result: n=%d err=%v", n, err)
	}
	q := db.last(t)
	if !strings.Contains(q.sql, "expires_at IS NOT NULL AND expires_at <= $1") {
		t.Fatalf("purge must only remove expired rows, got query %q", q.sql)
	}
	if got, ok := q.args[0].(time.Time); !ok || got.Location() != time.UTC || !got.Equal(now) {
		t.Fatalf("expected utc cutoff, got %v", q.args[0])
	}

	db.execErr = errors.New("timeout")
	if _, err := repo.DeleteExpired(context.Background(), now); err == nil {
		t.Fatalf("expected exec error to propagate")
	}
}
