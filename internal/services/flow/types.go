package flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ivankudzin/sensgen/internal/domain/enums"
	"github.com/ivankudzin/sensgen/internal/domain/model"
	"github.com/ivankudzin/sensgen/internal/services/cooldown"
)

const (
	DefaultLoadingDelay    = 2500 * time.Millisecond
	DefaultGeneratingDelay = 2 * time.Second
	DefaultPollInterval    = time.Second
)

var (
	ErrValidation        = errors.New("validation error")
	ErrAccessDenied      = errors.New("access denied")
	ErrBusy              = errors.New("flow is busy")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrCooldownActive    = errors.New("cooldown active")
	ErrClosed            = errors.New("flow closed")
)

// CooldownError is returned when generation is refused because the gate is
// still active.
type CooldownError struct {
	Remaining time.Duration
	ExpiresAt time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active, wait %s", cooldown.FormatRemaining(e.Remaining))
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldownActive
}

type Generator interface {
	Generate(platform enums.Platform, tier enums.SensitivityTier) model.Profile
}

type Gate interface {
	Expiry(ctx context.Context) (time.Time, bool, error)
	Start(ctx context.Context) (time.Time, error)
}

type AccessChecker interface {
	Check(code string) error
}

type EventRecorder interface {
	Record(ctx context.Context, sessionID, name string, props map[string]any) error
}

type Timer interface {
	Stop() bool
}

type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Config struct {
	LoadingDelay    time.Duration
	GeneratingDelay time.Duration
	PollInterval    time.Duration
}

type LoginInput struct {
	AccessCode  string
	Platform    enums.Platform
	DeviceModel string
}

// Snapshot is what the presentation layer renders. Countdown is set when
// the flow sits in results without a profile while the cooldown runs.
type Snapshot struct {
	State          enums.FlowState
	Platform       enums.Platform
	DeviceModel    string
	Tier           enums.SensitivityTier
	Profile        model.Profile
	CooldownActive bool
	Remaining      time.Duration
	CooldownUntil  *time.Time
	Countdown      bool
	ShowNotice     bool
	LastError      string
}
