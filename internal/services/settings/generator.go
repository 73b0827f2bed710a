package settings

import (
	"fmt"
	"strconv"

	"github.com/ivankudzin/sensgen/internal/domain/enums"
	"github.com/ivankudzin/sensgen/internal/domain/model"
	"github.com/ivankudzin/sensgen/internal/domain/rules"
)

// Generator produces randomized sensitivity profiles. Platform and tier
// must be defined enum values; anything else panics.
type Generator struct {
	src RandomSource
}

func NewGenerator(src RandomSource) *Generator {
	if src == nil {
		src = DefaultSource()
	}
	return &Generator{src: src}
}

func (g *Generator) Generate(platform enums.Platform, tier enums.SensitivityTier) model.Profile {
	switch platform {
	case enums.PlatformAndroid:
		return g.android(tier)
	case enums.PlatformIOS:
		return g.ios(tier)
	default:
		panic(fmt.Sprintf("settings: unknown platform %q", platform))
	}
}

func (g *Generator) android(tier enums.SensitivityTier) model.AndroidProfile {
	r, ok := rules.AndroidRangesFor(tier)
	if !ok {
		panic(fmt.Sprintf("settings: unknown sensitivity tier %q", tier))
	}

	return model.AndroidProfile{
		DPI:            intBetween(g.src, r.DPI.Min, r.DPI.Max),
		CursorSpeed:    intBetween(g.src, r.CursorSpeed.Min, r.CursorSpeed.Max),
		AnimationScale: pick(g.src, r.AnimationScales),
	}
}

func (g *Generator) ios(tier enums.SensitivityTier) model.IOSProfile {
	base, ok := rules.IOSRangesFor(tier)
	if !ok {
		panic(fmt.Sprintf("settings: unknown sensitivity tier %q", tier))
	}

	adv := drawAdvanced(g.src, tier)
	r := adjustIOSRanges(base, adv)

	return model.IOSProfile{
		AutoScan:            formatDecimal(pick(g.src, r.AutoScan)),
		Pause:               formatDecimal(pick(g.src, r.Pause)),
		MovementRepetition:  formatDecimal(pick(g.src, r.MovementRepetition)),
		LongPress:           rules.LongPress,
		Cycles:              intBetween(g.src, r.Cycles.Min, r.Cycles.Max),
		MobileCursor:        pick(g.src, rules.MobileCursorLabels()),
		MobileCursorSpeed:   intBetween(g.src, r.CursorSpeed.Min, r.CursorSpeed.Max),
		MouseKeys:           adv.MouseKeys,
		TrackingSensitivity: adv.TrackingSensitivity,
		MovementTolerance:   adv.MovementTolerance,
	}
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
