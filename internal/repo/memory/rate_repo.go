package memory

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const sweepThreshold = 1024

type rateWindow struct {
	count     int64
	expiresAt time.Time
}

type RateRepo struct {
	mu      sync.Mutex
	windows map[string]rateWindow
	now     func() time.Time
}

func NewRateRepo() *RateRepo {
	return &RateRepo{
		windows: make(map[string]rateWindow),
		now:     time.Now,
	}
}

func (r *RateRepo) IncrementWindow(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if key == "" || window <= 0 {
		return 0, 0, fmt.Errorf("invalid rate window payload")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if len(r.windows) >= sweepThreshold {
		for k, w := range r.windows {
			if !w.expiresAt.After(now) {
				delete(r.windows, k)
			}
		}
	}

	w, ok := r.windows[key]
	if !ok || !w.expiresAt.After(now) {
		w = rateWindow{expiresAt: now.Add(window)}
	}
	w.count++
	r.windows[key] = w

	return w.count, w.expiresAt.Sub(now), nil
}
