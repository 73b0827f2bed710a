package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ivankudzin/sensgen/internal/services/flow"
)

const DefaultIdleTTL = 30 * time.Minute

var (
	ErrNotFound     = errors.New("session not found")
	ErrLimitReached = errors.New("session limit reached")
)

// Factory builds the flow for a new session. clientID scopes the cooldown.
type Factory func(ctx context.Context, sid, clientID string) (*flow.Flow, error)

type Config struct {
	IdleTTL     time.Duration
	MaxSessions int
}

type Session struct {
	ID       string
	ClientID string
	Flow     *flow.Flow
}

type entry struct {
	session  Session
	lastSeen time.Time
}

// Registry owns the live flows keyed by session id.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	factory Factory
	cfg     Config
	now     func() time.Time
	newID   func() string
}

func NewRegistry(factory Factory, cfg Config) *Registry {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.MaxSessions < 0 {
		cfg.MaxSessions = 0
	}
	return &Registry{
		entries: make(map[string]*entry),
		factory: factory,
		cfg:     cfg,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

func (r *Registry) Create(ctx context.Context, clientID string) (Session, error) {
	if r.factory == nil {
		return Session{}, fmt.Errorf("flow factory is nil")
	}

	r.mu.Lock()
	full := r.cfg.MaxSessions > 0 && len(r.entries) >= r.cfg.MaxSessions
	r.mu.Unlock()
	if full {
		return Session{}, ErrLimitReached
	}

	sid := r.newID()
	f, err := r.factory(ctx, sid, clientID)
	if err != nil {
		return Session{}, fmt.Errorf("create flow: %w", err)
	}

	session := Session{ID: sid, ClientID: clientID, Flow: f}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cfg.MaxSessions > 0 && len(r.entries) >= r.cfg.MaxSessions {
		f.Close()
		return Session{}, ErrLimitReached
	}
	r.entries[sid] = &entry{session: session, lastSeen: r.now()}
	return session, nil
}

// Get returns the session and marks it as seen.
func (r *Registry) Get(sid string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[sid]
	if !ok {
		return Session{}, ErrNotFound
	}
	e.lastSeen = r.now()
	return e.session, nil
}

func (r *Registry) Close(sid string) error {
	r.mu.Lock()
	e, ok := r.entries[sid]
	if ok {
		delete(r.entries, sid)
	}
	r.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	e.session.Flow.Close()
	return nil
}

// EvictIdle closes every session not seen for IdleTTL and reports how many
// were dropped.
func (r *Registry) EvictIdle(now time.Time) int {
	cutoff := now.Add(-r.cfg.IdleTTL)

	r.mu.Lock()
	var stale []*flow.Flow
	for sid, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, e.session.Flow)
			delete(r.entries, sid)
		}
	}
	r.mu.Unlock()

	for _, f := range stale {
		f.Close()
	}
	return len(stale)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		e.session.Flow.Close()
	}
}
