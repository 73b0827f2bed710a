package cooldown

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultDuration = 5 * time.Minute
	keyPrefix       = "sensgen:cooldown_end"
)

// Store persists raw string values. A zero ttl means no expiry.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Gate records the absolute expiry of the current cooldown under one key.
// It only reports; callers decide whether to refuse.
type Gate struct {
	store    Store
	key      string
	duration time.Duration
	now      func() time.Time
}

// Key returns the durable key for a client. An empty client id maps to the
// shared key.
func Key(clientID string) string {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return keyPrefix
	}
	return keyPrefix + ":" + clientID
}

func NewGate(store Store, key string, duration time.Duration) *Gate {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if strings.TrimSpace(key) == "" {
		key = keyPrefix
	}

	return &Gate{
		store:    store,
		key:      key,
		duration: duration,
		now:      time.Now,
	}
}

func (g *Gate) Duration() time.Duration {
	return g.duration
}

// Start overwrites any previous expiry with now + duration.
func (g *Gate) Start(ctx context.Context) (time.Time, error) {
	if g.store == nil {
		return time.Time{}, fmt.Errorf("cooldown store is nil")
	}

	expiresAt := g.now().Add(g.duration)
	value := strconv.FormatInt(expiresAt.UnixMilli(), 10)
	if err := g.store.Set(ctx, g.key, value, g.duration); err != nil {
		return time.Time{}, fmt.Errorf("persist cooldown expiry: %w", err)
	}

	return time.UnixMilli(expiresAt.UnixMilli()).UTC(), nil
}

// Expiry returns the persisted expiry while it lies in the future. A stale
// or unreadable value is deleted.
func (g *Gate) Expiry(ctx context.Context) (time.Time, bool, error) {
	if g.store == nil {
		return time.Time{}, false, fmt.Errorf("cooldown store is nil")
	}

	raw, ok, err := g.store.Get(ctx, g.key)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read cooldown expiry: %w", err)
	}
	if !ok {
		return time.Time{}, false, nil
	}

	ms, parseErr := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if parseErr == nil {
		expiresAt := time.UnixMilli(ms).UTC()
		if expiresAt.After(g.now()) {
			return expiresAt, true, nil
		}
	}

	if err := g.store.Delete(ctx, g.key); err != nil {
		return time.Time{}, false, fmt.Errorf("clear stale cooldown: %w", err)
	}
	return time.Time{}, false, nil
}

func (g *Gate) Remaining(ctx context.Context) (time.Duration, error) {
	expiresAt, ok, err := g.Expiry(ctx)
	if err != nil || !ok {
		return 0, err
	}

	remaining := expiresAt.Sub(g.now())
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

func (g *Gate) IsActive(ctx context.Context) (bool, error) {
	remaining, err := g.Remaining(ctx)
	if err != nil {
		return false, err
	}
	return remaining > 0, nil
}

// FormatRemaining renders d as mm:ss, truncating partial seconds.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// CeilSeconds rounds d up to whole seconds.
func CeilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	return sec
}
