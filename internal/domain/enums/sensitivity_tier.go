package enums

type SensitivityTier string

const (
	SensitivityLow    SensitivityTier = "low"
	SensitivityMedium SensitivityTier = "medium"
	SensitivityHigh   SensitivityTier = "high"
)

func (t SensitivityTier) Valid() bool {
	switch t {
	case SensitivityLow, SensitivityMedium, SensitivityHigh:
		return true
	default:
		return false
	}
}

func SensitivityTiers() []SensitivityTier {
	return []SensitivityTier{SensitivityLow, SensitivityMedium, SensitivityHigh}
}
