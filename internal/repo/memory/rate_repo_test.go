package memory

import (
	"context"
	"testing"
	"time"
)

func TestRateRepoWindowResets(t *testing.T) {
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	repo := NewRateRepo()
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	for i := int64(1); i <= 2; i++ {
		count, ttl, err := repo.IncrementWindow(ctx, "k", time.Minute)
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if count != i || ttl != time.Minute {
			t.Fatalf("unexpected window: count=%d ttl=%v", count, ttl)
		}
	}

	now = now.Add(20 * time.Second)
	count, ttl, _ := repo.IncrementWindow(ctx, "k", time.Minute)
	if count != 3 || ttl != 40*time.Second {
		t.Fatalf("unexpected window mid-way: count=%d ttl=%v", count, ttl)
	}

	now = now.Add(40 * time.Second)
	count, _, _ = repo.IncrementWindow(ctx, "k", time.Minute)
	if count != 1 {
		t.Fatalf("expected reset window, got %d", count)
	}
}

func TestRateRepoRejectsEmptyKey(t *testing.T) {
	if _, _, err := NewRateRepo().IncrementWindow(context.Background(), "", time.Minute); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
