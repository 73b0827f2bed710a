package dto

type CatalogResponse struct {
	Platforms           []string `json:"platforms"`
	Tiers               []string `json:"tiers"`
	IPhoneModels        []string `json:"iphone_models"`
	MobileCursorLabels  []string `json:"mobile_cursor_labels"`
	CooldownDurationSec int64    `json:"cooldown_duration_sec"`
}
