package settings

import (
	"math"

	"github.com/ivankudzin/sensgen/internal/domain/enums"
	"github.com/ivankudzin/sensgen/internal/domain/rules"
)

type weightedTier struct {
	value  enums.AdvancedTier
	weight int
}

// Each sensitivity tier leans towards its matching advanced tier. Entries
// are ordered so a seeded source always walks them the same way.
var advancedWeights = map[enums.SensitivityTier][]weightedTier{
	enums.SensitivityLow: {
		{value: enums.AdvancedMinimal, weight: 2},
		{value: enums.AdvancedMedium, weight: 1},
	},
	enums.SensitivityMedium: {
		{value: enums.AdvancedMinimal, weight: 1},
		{value: enums.AdvancedMedium, weight: 1},
		{value: enums.AdvancedMaximum, weight: 1},
	},
	enums.SensitivityHigh: {
		{value: enums.AdvancedMedium, weight: 1},
		{value: enums.AdvancedMaximum, weight: 2},
	},
}

var (
	trackingMultipliers = map[enums.AdvancedTier]float64{
		enums.AdvancedMinimal: 0.8,
		enums.AdvancedMedium:  1.0,
		enums.AdvancedMaximum: 1.2,
	}
	mouseKeysMultipliers = map[enums.AdvancedTier]float64{
		enums.AdvancedMinimal: 0.85,
		enums.AdvancedMedium:  1.0,
		enums.AdvancedMaximum: 1.15,
	}
	toleranceMultipliers = map[enums.AdvancedTier]float64{
		enums.AdvancedMinimal: 1.2,
		enums.AdvancedMedium:  1.0,
		enums.AdvancedMaximum: 0.8,
	}
)

// AdvancedWeights returns the draw weights used for tier.
func AdvancedWeights(tier enums.SensitivityTier) map[enums.AdvancedTier]int {
	entries := advancedWeights[tier]
	out := make(map[enums.AdvancedTier]int, len(entries))
	for _, e := range entries {
		out[e.value] = e.weight
	}
	return out
}

type advancedProfile struct {
	MouseKeys           enums.AdvancedTier
	TrackingSensitivity enums.AdvancedTier
	MovementTolerance   enums.AdvancedTier
}

func drawAdvanced(src RandomSource, tier enums.SensitivityTier) advancedProfile {
	return advancedProfile{
		MouseKeys:           drawWeighted(src, tier),
		TrackingSensitivity: drawWeighted(src, tier),
		MovementTolerance:   drawWeighted(src, tier),
	}
}

func drawWeighted(src RandomSource, tier enums.SensitivityTier) enums.AdvancedTier {
	entries, ok := advancedWeights[tier]
	if !ok || len(entries) == 0 {
		panic("settings: no advanced weights for tier " + string(tier))
	}

	total := 0
	for _, e := range entries {
		total += e.weight
	}

	roll := index(src, total)
	for _, e := range entries {
		if roll < e.weight {
			return e.value
		}
		roll -= e.weight
	}
	return entries[len(entries)-1].value
}

func adjustIOSRanges(base rules.IOSRanges, adv advancedProfile) rules.IOSRanges {
	tracking := trackingMultipliers[adv.TrackingSensitivity]
	out := rules.IOSRanges{
		AutoScan:           scaleAll(base.AutoScan, tracking),
		Pause:              scaleAll(base.Pause, tracking),
		MovementRepetition: scaleAll(base.MovementRepetition, tracking),
	}

	mouseKeys := mouseKeysMultipliers[adv.MouseKeys]
	speed := rules.IntRange{
		Min: scaleInt(base.CursorSpeed.Min, mouseKeys),
		Max: scaleInt(base.CursorSpeed.Max, mouseKeys),
	}
	if speed.Max > rules.CursorSpeedCeiling {
		speed.Max = rules.CursorSpeedCeiling
	}
	if speed.Min > speed.Max {
		speed.Min = speed.Max
	}
	out.CursorSpeed = speed

	tolerance := toleranceMultipliers[adv.MovementTolerance]
	cycles := rules.IntRange{
		Min: clampCycles(scaleInt(base.Cycles.Min, tolerance)),
		Max: clampCycles(scaleInt(base.Cycles.Max, tolerance)),
	}
	if cycles.Min > cycles.Max {
		cycles.Min, cycles.Max = cycles.Max, cycles.Min
	}
	out.Cycles = cycles

	return out
}

func scaleAll(values []float64, m float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * m
	}
	return out
}

func scaleInt(v int, m float64) int {
	return int(math.Round(float64(v) * m))
}

func clampCycles(v int) int {
	if v < rules.MinCycles {
		return rules.MinCycles
	}
	if v > rules.MaxCycles {
		return rules.MaxCycles
	}
	return v
}
