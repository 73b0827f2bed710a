package model

import "github.com/ivankudzin/sensgen/internal/domain/enums"

// Profile is a generated settings record. It is implemented only by
// AndroidProfile and IOSProfile; switch on the concrete type to consume it.
type Profile interface {
	Platform() enums.Platform
	isProfile()
}

type AndroidProfile struct {
	DPI            int
	CursorSpeed    int
	AnimationScale string
}

func (AndroidProfile) Platform() enums.Platform { return enums.PlatformAndroid }
func (AndroidProfile) isProfile()               {}

type IOSProfile struct {
	AutoScan           string
	Pause              string
	MovementRepetition string
	LongPress          string
	Cycles             int
	MobileCursor       string
	MobileCursorSpeed  int

	MouseKeys           enums.AdvancedTier
	TrackingSensitivity enums.AdvancedTier
	MovementTolerance   enums.AdvancedTier
}

func (IOSProfile) Platform() enums.Platform { return enums.PlatformIOS }
func (IOSProfile) isProfile()               {}
