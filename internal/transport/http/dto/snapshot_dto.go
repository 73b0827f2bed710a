package dto

import "time"

type SnapshotResponse struct {
	State       string           `json:"state"`
	Platform    string           `json:"platform,omitempty"`
	DeviceModel string           `json:"device_model,omitempty"`
	Tier        string           `json:"tier,omitempty"`
	Profile     *ProfileResponse `json:"profile,omitempty"`
	Cooldown    CooldownResponse `json:"cooldown"`
	Countdown   bool             `json:"countdown"`
	ShowNotice  bool             `json:"show_notice"`
	LastError   string           `json:"last_error,omitempty"`
}

type CooldownResponse struct {
	Active       bool       `json:"active"`
	RemainingSec int64      `json:"remaining_sec"`
	Remaining    string     `json:"remaining,omitempty"`
	Until        *time.Time `json:"until,omitempty"`
}
