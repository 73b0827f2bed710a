package memory

import (
	"context"
	"testing"
	"time"
)

func TestKVRepoRoundTrip(t *testing.T) {
	repo := NewKVRepo()
	ctx := context.Background()

	if _, ok, err := repo.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
	if err := repo.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := repo.Get(ctx, "k")
	if err != nil || !ok || value != "v" {
		t.Fatalf("unexpected get: value=%q ok=%v err=%v", value, ok, err)
	}
	if err := repo.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "k"); ok {
		t.Fatalf("expected key to be deleted")
	}
}

func TestKVRepoExpiresEntries(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := NewKVRepo()
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	if err := repo.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	now = now.Add(59 * time.Second)
	if _, ok, _ := repo.Get(ctx, "k"); !ok {
		t.Fatalf("expected key before ttl")
	}
	now = now.Add(time.Second)
	if _, ok, _ := repo.Get(ctx, "k"); ok {
		t.Fatalf("expected key to expire at ttl")
	}
}

func TestKVRepoRejectsEmptyKey(t *testing.T) {
	repo := NewKVRepo()
	if err := repo.Set(context.Background(), "", "v", 0); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
