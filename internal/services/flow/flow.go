package flow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/sensgen/internal/domain/enums"
	"github.com/ivankudzin/sensgen/internal/domain/model"
)

const (
	EventLoginSucceeded    = "login_succeeded"
	EventLoginFailed       = "login_failed"
	EventProfileGenerated  = "profile_generated"
	EventGenerationRefused = "generation_refused_cooldown"
	EventLogout            = "logout"
)

// Store calls made from timer callbacks run under mu with no request
// deadline, so they are bounded here.
const (
	storeTimeout = 5 * time.Second
	eventTimeout = 5 * time.Second
)

type Dependencies struct {
	SessionID string
	Generator Generator
	Gate      Gate
	Access    AccessChecker
	Events    EventRecorder
	Scheduler Scheduler
	Logger    *zap.Logger
}

// Flow drives one session through login, tier selection, generation and
// results. Events are serialised by mu; timer callbacks re-check epoch so a
// cancelled timer that already fired becomes a no-op.
type Flow struct {
	mu sync.Mutex

	sid       string
	generator Generator
	gate      Gate
	access    AccessChecker
	events    EventRecorder
	scheduler Scheduler
	logger    *zap.Logger
	cfg       Config
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	state       enums.FlowState
	platform    enums.Platform
	deviceModel string
	tier        enums.SensitivityTier
	profile     model.Profile
	showNotice  bool
	lastErr     string

	pending Timer
	poll    Timer
	epoch   uint64
	closed  bool

	// outbox holds events raised under mu; they are written after unlock.
	outbox []queuedEvent
}

type queuedEvent struct {
	name  string
	props map[string]any
}

// New creates a flow in login, or directly in results when a cooldown from
// an earlier session is still running.
func New(ctx context.Context, deps Dependencies, cfg Config) (*Flow, error) {
	if deps.Generator == nil {
		return nil, fmt.Errorf("settings generator is nil")
	}
	if deps.Gate == nil {
		return nil, fmt.Errorf("cooldown gate is nil")
	}
	if deps.Access == nil {
		return nil, fmt.Errorf("access checker is nil")
	}
	if deps.Scheduler == nil {
		deps.Scheduler = realScheduler{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.LoadingDelay <= 0 {
		cfg.LoadingDelay = DefaultLoadingDelay
	}
	if cfg.GeneratingDelay <= 0 {
		cfg.GeneratingDelay = DefaultGeneratingDelay
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	lifeCtx, cancel := context.WithCancel(context.Background())
	f := &Flow{
		sid:       deps.SessionID,
		generator: deps.Generator,
		gate:      deps.Gate,
		access:    deps.Access,
		events:    deps.Events,
		scheduler: deps.Scheduler,
		logger:    deps.Logger.With(zap.String("sid", deps.SessionID)),
		cfg:       cfg,
		now:       time.Now,
		ctx:       lifeCtx,
		cancel:    cancel,
		state:     enums.FlowStateLogin,
	}

	_, active, err := f.remaining(ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	if active {
		f.state = enums.FlowStateResults
		f.startPollLocked()
	}

	return f, nil
}

func (f *Flow) SelectPlatform(platform enums.Platform) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expectLocked(enums.FlowStateLogin); err != nil {
		return err
	}
	if !platform.Valid() {
		return ErrValidation
	}

	f.platform = platform
	return nil
}

func (f *Flow) SubmitLogin(ctx context.Context, in LoginInput) error {
	f.mu.Lock()
	err := f.submitLoginLocked(in)
	queued := f.takeEventsLocked()
	f.mu.Unlock()

	f.emit(ctx, queued)
	return err
}

func (f *Flow) submitLoginLocked(in LoginInput) error {
	if err := f.expectLocked(enums.FlowStateLogin); err != nil {
		return err
	}

	if err := f.access.Check(in.AccessCode); err != nil {
		f.record(EventLoginFailed, nil)
		return ErrAccessDenied
	}

	platform := f.platform
	if in.Platform != "" {
		platform = in.Platform
	}
	deviceModel := strings.TrimSpace(in.DeviceModel)
	if !platform.Valid() || deviceModel == "" {
		return ErrValidation
	}
	if platform == enums.PlatformIOS && !model.IsKnownIPhoneModel(deviceModel) {
		return ErrValidation
	}

	f.platform = platform
	f.deviceModel = deviceModel
	f.lastErr = ""
	f.transitionLocked(enums.FlowStateLoading)
	f.scheduleLocked(f.cfg.LoadingDelay, f.finishLoading)

	f.record(EventLoginSucceeded, map[string]any{
		"platform":     string(platform),
		"device_model": deviceModel,
	})
	return nil
}

func (f *Flow) SelectTier(tier enums.SensitivityTier) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expectLocked(enums.FlowStateTierSelect); err != nil {
		return err
	}
	if !tier.Valid() {
		return ErrValidation
	}

	f.tier = tier
	return nil
}

// RequestGenerate starts a generation from tier_select. From results it is
// the regenerate edge back to tier_select. Both are refused while the
// cooldown is active.
func (f *Flow) RequestGenerate(ctx context.Context) error {
	f.mu.Lock()
	err := f.requestGenerateLocked(ctx)
	queued := f.takeEventsLocked()
	f.mu.Unlock()

	f.emit(ctx, queued)
	return err
}

func (f *Flow) requestGenerateLocked(ctx context.Context) error {
	if f.closed {
		return ErrClosed
	}
	if f.state.Busy() {
		return ErrBusy
	}

	switch f.state {
	case enums.FlowStateTierSelect:
		if !f.platform.Valid() || !f.tier.Valid() {
			return ErrValidation
		}
		if err := f.refuseIfCoolingLocked(ctx); err != nil {
			return err
		}
		f.lastErr = ""
		f.transitionLocked(enums.FlowStateGenerating)
		f.scheduleLocked(f.cfg.GeneratingDelay, f.finishGenerating)
		return nil

	case enums.FlowStateResults:
		if err := f.refuseIfCoolingLocked(ctx); err != nil {
			return err
		}
		f.profile = nil
		if !f.platform.Valid() {
			f.transitionLocked(enums.FlowStateLogin)
			return nil
		}
		f.transitionLocked(enums.FlowStateTierSelect)
		return nil

	default:
		return ErrInvalidTransition
	}
}

// Logout returns to login from any state. Pending display timers are
// cancelled; the persisted cooldown is left alone.
func (f *Flow) Logout(ctx context.Context) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}

	f.cancelPendingLocked()
	f.platform = ""
	f.deviceModel = ""
	f.tier = ""
	f.profile = nil
	f.lastErr = ""
	f.transitionLocked(enums.FlowStateLogin)
	f.record(EventLogout, nil)
	queued := f.takeEventsLocked()
	f.mu.Unlock()

	f.emit(ctx, queued)
}

func (f *Flow) Snapshot(ctx context.Context) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return Snapshot{}, ErrClosed
	}

	expiresAt, active, err := f.remaining(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		State:          f.state,
		Platform:       f.platform,
		DeviceModel:    f.deviceModel,
		Tier:           f.tier,
		Profile:        f.profile,
		CooldownActive: active,
		ShowNotice:     f.showNotice,
		LastError:      f.lastErr,
	}
	if active {
		until := expiresAt
		snap.CooldownUntil = &until
		snap.Remaining = f.until(expiresAt)
		snap.Countdown = f.state == enums.FlowStateResults && f.profile == nil
	}
	return snap, nil
}

// Close ends the session: timers are stopped and later calls fail with
// ErrClosed. The lifetime context is cancelled before taking mu so a timer
// callback stuck in a store call gives up.
func (f *Flow) Close() {
	f.cancel()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	f.cancelPendingLocked()
	if f.poll != nil {
		f.poll.Stop()
		f.poll = nil
	}
	f.outbox = nil
}

func (f *Flow) finishLoading() {
	f.transitionLocked(enums.FlowStateTierSelect)
}

func (f *Flow) finishGenerating() {
	profile := f.generator.Generate(f.platform, f.tier)

	ctx, cancel := context.WithTimeout(f.ctx, storeTimeout)
	defer cancel()

	expiresAt, err := f.gate.Start(ctx)
	if err != nil {
		f.logger.Error("start cooldown failed", zap.Error(err))
		f.lastErr = "cooldown could not be recorded, try again"
		f.transitionLocked(enums.FlowStateTierSelect)
		return
	}

	f.profile = profile
	f.transitionLocked(enums.FlowStateResults)
	f.showNotice = true
	f.startPollLocked()

	f.record(EventProfileGenerated, map[string]any{
		"platform":       string(f.platform),
		"tier":           string(f.tier),
		"device_model":   f.deviceModel,
		"cooldown_until": expiresAt.UnixMilli(),
	})
}

func (f *Flow) expectLocked(state enums.FlowState) error {
	if f.closed {
		return ErrClosed
	}
	if f.state.Busy() {
		return ErrBusy
	}
	if f.state != state {
		return ErrInvalidTransition
	}
	return nil
}

func (f *Flow) transitionLocked(state enums.FlowState) {
	f.state = state
	f.showNotice = false
}

func (f *Flow) refuseIfCoolingLocked(ctx context.Context) error {
	expiresAt, active, err := f.remaining(ctx)
	if err != nil {
		return err
	}
	if !active {
		return nil
	}

	f.record(EventGenerationRefused, map[string]any{
		"state": string(f.state),
	})
	f.startPollLocked()
	return &CooldownError{
		Remaining: f.until(expiresAt),
		ExpiresAt: expiresAt,
	}
}

func (f *Flow) remaining(ctx context.Context) (time.Time, bool, error) {
	expiresAt, ok, err := f.gate.Expiry(ctx)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("check cooldown: %w", err)
	}
	if !ok {
		return time.Time{}, false, nil
	}
	return expiresAt, true, nil
}

func (f *Flow) until(expiresAt time.Time) time.Duration {
	d := expiresAt.Sub(f.now())
	if d < 0 {
		return 0
	}
	return d
}

// scheduleLocked arms the single display timer. fn runs under mu; the
// events it raises are written once mu is released.
func (f *Flow) scheduleLocked(d time.Duration, fn func()) {
	f.cancelPendingLocked()
	epoch := f.epoch
	f.pending = f.scheduler.AfterFunc(d, func() {
		f.mu.Lock()
		if f.closed || f.epoch != epoch {
			f.mu.Unlock()
			return
		}
		f.pending = nil
		fn()
		queued := f.takeEventsLocked()
		f.mu.Unlock()

		f.emit(f.ctx, queued)
	})
}

func (f *Flow) cancelPendingLocked() {
	f.epoch++
	if f.pending != nil {
		f.pending.Stop()
		f.pending = nil
	}
}

// startPollLocked re-reads the gate every PollInterval until expiry is
// observed, which also clears the persisted value.
func (f *Flow) startPollLocked() {
	if f.poll != nil || f.closed {
		return
	}
	f.poll = f.scheduler.AfterFunc(f.cfg.PollInterval, f.pollTick)
}

func (f *Flow) pollTick() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.poll = nil
	if f.closed {
		return
	}

	ctx, cancel := context.WithTimeout(f.ctx, storeTimeout)
	defer cancel()

	_, active, err := f.remaining(ctx)
	if err != nil {
		f.logger.Warn("cooldown poll failed", zap.Error(err))
		f.startPollLocked()
		return
	}
	if active {
		f.startPollLocked()
		return
	}
	f.logger.Debug("cooldown expired")
}

func (f *Flow) record(name string, props map[string]any) {
	if f.events == nil {
		return
	}
	f.outbox = append(f.outbox, queuedEvent{name: name, props: props})
}

func (f *Flow) takeEventsLocked() []queuedEvent {
	queued := f.outbox
	f.outbox = nil
	return queued
}

// emit writes queued events without holding mu. Each write gets its own
// deadline on top of ctx.
func (f *Flow) emit(ctx context.Context, queued []queuedEvent) {
	for _, ev := range queued {
		recordCtx, cancel := context.WithTimeout(ctx, eventTimeout)
		err := f.events.Record(recordCtx, f.sid, ev.name, ev.props)
		cancel()
		if err != nil {
			f.logger.Warn("record flow event failed", zap.String("event", ev.name), zap.Error(err))
		}
	}
}
