package cooldown

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/ivankudzin/sensgen/internal/repo/memory"
)

func newTestGate(t *testing.T, now *time.Time) (*Gate, *memory.KVRepo) {
	t.Helper()

	store := memory.NewKVRepo()
	gate := NewGate(store, Key("client-1"), 0)
	gate.now = func() time.Time { return *now }
	return gate, store
}

func TestStartActivatesGate(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	gate, store := newTestGate(t, &now)
	ctx := context.Background()

	active, err := gate.IsActive(ctx)
	if err != nil || active {
		t.Fatalf("expected inactive gate before start, active=%v err=%v", active, err)
	}

	expiresAt, err := gate.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !expiresAt.Equal(now.Add(5 * time.Minute)) {
		t.Fatalf("unexpected expiry: %v", expiresAt)
	}

	raw, ok, _ := store.Get(ctx, "sensgen:cooldown_end:client-1")
	if !ok || raw != strconv.FormatInt(now.Add(5*time.Minute).UnixMilli(), 10) {
		t.Fatalf("unexpected persisted value: %q ok=%v", raw, ok)
	}

	active, err = gate.IsActive(ctx)
	if err != nil || !active {
		t.Fatalf("expected active gate after start, active=%v err=%v", active, err)
	}
	remaining, err := gate.Remaining(ctx)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if remaining != 5*time.Minute {
		t.Fatalf("unexpected remaining: %v", remaining)
	}

	now = now.Add(2*time.Minute + 30*time.Second)
	remaining, _ = gate.Remaining(ctx)
	if remaining != 2*time.Minute+30*time.Second {
		t.Fatalf("unexpected remaining after 2m30s: %v", remaining)
	}
}

func TestStartOverwritesPreviousExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	gate, _ := newTestGate(t, &now)
	ctx := context.Background()

	if _, err := gate.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	now = now.Add(time.Minute)
	if _, err := gate.Start(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}

	remaining, _ := gate.Remaining(ctx)
	if remaining != 5*time.Minute {
		t.Fatalf("expected restart to reset remaining, got %v", remaining)
	}
}

func TestExpiredValueIsClearedOnRead(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	gate, store := newTestGate(t, &now)
	ctx := context.Background()

	past := strconv.FormatInt(now.Add(-time.Second).UnixMilli(), 10)
	if err := store.Set(ctx, gate.key, past, 0); err != nil {
		t.Fatalf("seed past expiry: %v", err)
	}

	active, err := gate.IsActive(ctx)
	if err != nil || active {
		t.Fatalf("expected inactive gate for past expiry, active=%v err=%v", active, err)
	}
	if _, ok, _ := store.Get(ctx, gate.key); ok {
		t.Fatalf("expected stale expiry to be cleared")
	}
}

func TestExpiryExactlyNowIsInactive(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	gate, store := newTestGate(t, &now)
	ctx := context.Background()

	_ = store.Set(ctx, gate.key, strconv.FormatInt(now.UnixMilli(), 10), 0)
	if active, _ := gate.IsActive(ctx); active {
		t.Fatalf("expected gate to be inactive at its expiry instant")
	}
}

func TestGarbageValueIsCleared(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	gate, store := newTestGate(t, &now)
	ctx := context.Background()

	_ = store.Set(ctx, gate.key, "not-a-timestamp", 0)
	if active, err := gate.IsActive(ctx); err != nil || active {
		t.Fatalf("expected inactive gate for garbage value, active=%v err=%v", active, err)
	}
	if _, ok, _ := store.Get(ctx, gate.key); ok {
		t.Fatalf("expected garbage value to be cleared")
	}
}

func TestGateSurfacesStoreErrors(t *testing.T) {
	gate := NewGate(failingStore{}, "", time.Minute)
	ctx := context.Background()

	if _, err := gate.Start(ctx); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected wrapped store error from start, got %v", err)
	}
	if _, err := gate.IsActive(ctx); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected wrapped store error from is active, got %v", err)
	}
}

func TestKeyScopesByClient(t *testing.T) {
	if Key("") != "sensgen:cooldown_end" {
		t.Fatalf("unexpected shared key: %s", Key(""))
	}
	if Key(" abc ") != "sensgen:cooldown_end:abc" {
		t.Fatalf("unexpected client key: %s", Key(" abc "))
	}
}

func TestFormatRemaining(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{in: 5 * time.Minute, want: "05:00"},
		{in: 4*time.Minute + 59*time.Second + 999*time.Millisecond, want: "04:59"},
		{in: 61 * time.Second, want: "01:01"},
		{in: 0, want: "00:00"},
		{in: -time.Second, want: "00:00"},
	}
	for _, tc := range cases {
		if got := FormatRemaining(tc.in); got != tc.want {
			t.Fatalf("format %v: got %s want %s", tc.in, got, tc.want)
		}
	}
}

func TestCeilSeconds(t *testing.T) {
	if got := CeilSeconds(1500 * time.Millisecond); got != 2 {
		t.Fatalf("unexpected ceil: %d", got)
	}
	if got := CeilSeconds(0); got != 0 {
		t.Fatalf("unexpected ceil of zero: %d", got)
	}
}

var errStoreDown = errors.New("store down")

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errStoreDown
}

func (failingStore) Set(context.Context, string, string, time.Duration) error {
	return errStoreDown
}

func (failingStore) Delete(context.Context, string) error {
	return errStoreDown
}
