package enums

// AdvancedTier is derived per generation on the iOS path and never selected
// by the user.
type AdvancedTier string

const (
	AdvancedMinimal AdvancedTier = "minimal"
	AdvancedMedium  AdvancedTier = "medium"
	AdvancedMaximum AdvancedTier = "maximum"
)

func (t AdvancedTier) Valid() bool {
	switch t {
	case AdvancedMinimal, AdvancedMedium, AdvancedMaximum:
		return true
	default:
		return false
	}
}

func AdvancedTiers() []AdvancedTier {
	return []AdvancedTier{AdvancedMinimal, AdvancedMedium, AdvancedMaximum}
}
