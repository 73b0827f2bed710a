package rules

import (
	"slices"

	"github.com/ivankudzin/sensgen/internal/domain/enums"
)

const (
	CursorSpeedCeiling = 120
	LongPress          = "1.00"
	MinCycles          = 1
	MaxCycles          = 10
)

// IntRange is a closed integer interval.
type IntRange struct {
	Min int
	Max int
}

func (r IntRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

type AndroidRanges struct {
	DPI             IntRange
	CursorSpeed     IntRange
	AnimationScales []string
}

type IOSRanges struct {
	AutoScan           []float64
	Pause              []float64
	MovementRepetition []float64
	CursorSpeed        IntRange
	Cycles             IntRange
}

var androidRanges = map[enums.SensitivityTier]AndroidRanges{
	enums.SensitivityLow: {
		DPI:             IntRange{Min: 320, Max: 480},
		CursorSpeed:     IntRange{Min: 1, Max: 40},
		AnimationScales: []string{"0.5x", "1x"},
	},
	enums.SensitivityMedium: {
		DPI:             IntRange{Min: 481, Max: 640},
		CursorSpeed:     IntRange{Min: 41, Max: 80},
		AnimationScales: []string{"1x", "1.5x"},
	},
	enums.SensitivityHigh: {
		DPI:             IntRange{Min: 641, Max: 960},
		CursorSpeed:     IntRange{Min: 81, Max: 120},
		AnimationScales: []string{"1.5x", "2x"},
	},
}

var iosRanges = map[enums.SensitivityTier]IOSRanges{
	enums.SensitivityLow: {
		AutoScan:           []float64{0.25, 0.30},
		Pause:              []float64{0.25, 0.30, 0.50},
		MovementRepetition: []float64{0.25, 0.30, 0.50},
		CursorSpeed:        IntRange{Min: 1, Max: 40},
	},
	enums.SensitivityMedium: {
		AutoScan:           []float64{0.30, 1.00},
		Pause:              []float64{0.50, 1.00},
		MovementRepetition: []float64{0.50, 1.00},
		CursorSpeed:        IntRange{Min: 41, Max: 80},
	},
	enums.SensitivityHigh: {
		AutoScan:           []float64{1.00, 1.35},
		Pause:              []float64{1.00, 1.35},
		MovementRepetition: []float64{1.00, 1.35},
		CursorSpeed:        IntRange{Min: 81, Max: 120},
	},
}

var mobileCursorLabels = []string{"Preciso", "Refinado", "Individual"}

// AndroidRangesFor returns a copy of the base ranges for tier.
func AndroidRangesFor(tier enums.SensitivityTier) (AndroidRanges, bool) {
	r, ok := androidRanges[tier]
	if !ok {
		return AndroidRanges{}, false
	}
	r.AnimationScales = slices.Clone(r.AnimationScales)
	return r, true
}

// IOSRangesFor returns a copy of the base ranges for tier. The cycle range
// is the same for every tier.
func IOSRangesFor(tier enums.SensitivityTier) (IOSRanges, bool) {
	r, ok := iosRanges[tier]
	if !ok {
		return IOSRanges{}, false
	}
	r.AutoScan = slices.Clone(r.AutoScan)
	r.Pause = slices.Clone(r.Pause)
	r.MovementRepetition = slices.Clone(r.MovementRepetition)
	r.Cycles = IntRange{Min: MinCycles, Max: MaxCycles}
	return r, true
}

func MobileCursorLabels() []string {
	return slices.Clone(mobileCursorLabels)
}
