package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultInterval        = time.Minute
	DefaultEventsRetention = 90 * 24 * time.Hour
)

type sessionEvictor interface {
	EvictIdle(now time.Time) int
}

type expiredKVCleaner interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type eventsCleaner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Job evicts idle flow sessions and, when postgres is attached, purges
// expired cooldown rows and old issuance events.
type Job struct {
	sessions        sessionEvictor
	kv              expiredKVCleaner
	events          eventsCleaner
	eventsRetention time.Duration
	interval        time.Duration
	now             func() time.Time
	logger          *zap.Logger
}

func New(sessions sessionEvictor, interval time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		sessions:        sessions,
		eventsRetention: DefaultEventsRetention,
		interval:        interval,
		now:             time.Now,
		logger:          logger,
	}
}

func (j *Job) AttachKVCleanup(cleaner expiredKVCleaner) {
	j.kv = cleaner
}

func (j *Job) AttachEventsCleanup(cleaner eventsCleaner, retention time.Duration) {
	j.events = cleaner
	if retention > 0 {
		j.eventsRetention = retention
	}
}

func (j *Job) Run(ctx context.Context) error {
	now := j.now()

	if j.sessions != nil {
		if evicted := j.sessions.EvictIdle(now); evicted > 0 {
			j.logger.Info("evicted idle sessions", zap.Int("evicted", evicted))
		}
	}

	if j.kv != nil {
		rows, err := j.kv.DeleteExpired(ctx, now)
		if err != nil {
			return fmt.Errorf("cleanup expired kv values: %w", err)
		}
		if rows > 0 {
			j.logger.Info("cleanup expired kv values completed", zap.Int64("deleted", rows))
		}
	}

	if j.events != nil && j.eventsRetention > 0 {
		rows, err := j.events.DeleteOlderThan(ctx, now.Add(-j.eventsRetention))
		if err != nil {
			return fmt.Errorf("cleanup issuance events: %w", err)
		}
		if rows > 0 {
			j.logger.Info("cleanup issuance events completed", zap.Int64("deleted", rows))
		}
	}

	return nil
}

// Loop runs the job every interval until ctx is cancelled. Failures are
// logged and the next tick retries.
func (j *Job) Loop(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Warn("cleanup run failed", zap.Error(err))
			}
		}
	}
}
