package memory

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type kvEntry struct {
	value     string
	expiresAt time.Time
}

// KVRepo is a process-local key-value store. Values do not survive a
// restart.
type KVRepo struct {
	mu     sync.Mutex
	values map[string]kvEntry
	now    func() time.Time
}

func NewKVRepo() *KVRepo {
	return &KVRepo{
		values: make(map[string]kvEntry),
		now:    time.Now,
	}
}

func (r *KVRepo) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("kv key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.values[key]
	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(r.now()) {
		delete(r.values, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (r *KVRepo) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return fmt.Errorf("kv key is required")
	}

	entry := kvEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = r.now().Add(ttl)
	}

	r.mu.Lock()
	r.values[key] = entry
	r.mu.Unlock()
	return nil
}

func (r *KVRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	delete(r.values, key)
	r.mu.Unlock()
	return nil
}
