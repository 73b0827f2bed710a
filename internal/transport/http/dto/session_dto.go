package dto

type CreateSessionResponse struct {
	SessionID    string           `json:"session_id"`
	AccessToken  string           `json:"access_token"`
	ExpiresInSec int64            `json:"expires_in_sec"`
	Session      SnapshotResponse `json:"session"`
}

type SelectPlatformRequest struct {
	Platform string `json:"platform"`
}

type LoginRequest struct {
	AccessCode  string `json:"access_code"`
	Platform    string `json:"platform,omitempty"`
	DeviceModel string `json:"device_model"`
}

type SelectTierRequest struct {
	Tier string `json:"tier"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
