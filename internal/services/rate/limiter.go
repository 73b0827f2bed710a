package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/ivankudzin/sensgen/internal/services/cooldown"
)

const sessionWindow = time.Minute

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Limiter caps how many flow sessions one caller may open per minute.
// A zero limit disables the check.
type Limiter struct {
	store     WindowStore
	perMinute int
}

func NewLimiter(store WindowStore, perMinute int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	return &Limiter{
		store:     store,
		perMinute: perMinute,
	}
}

func (l *Limiter) AllowSession(ctx context.Context, caller string) (int64, bool, error) {
	if l == nil || l.perMinute == 0 {
		return 0, true, nil
	}
	if caller == "" {
		return 0, false, fmt.Errorf("caller key is required")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	count, ttl, err := l.store.IncrementWindow(ctx, sessionKey(caller), sessionWindow)
	if err != nil {
		return 0, false, err
	}
	if count > int64(l.perMinute) {
		return retryAfterSeconds(ttl), false, nil
	}
	return 0, true, nil
}

func sessionKey(caller string) string {
	return "sensgen:rate:sessions:" + caller
}

// retryAfterSeconds is never below one so a refused caller is always told
// to wait.
func retryAfterSeconds(ttl time.Duration) int64 {
	return max(1, cooldown.CeilSeconds(ttl))
}
