package dto

// ProfileResponse carries exactly one of Android or IOS, matching Platform.
type ProfileResponse struct {
	Platform string                  `json:"platform"`
	Android  *AndroidProfileResponse `json:"android,omitempty"`
	IOS      *IOSProfileResponse     `json:"ios,omitempty"`
}

type AndroidProfileResponse struct {
	DPI            int    `json:"dpi"`
	CursorSpeed    int    `json:"cursor_speed"`
	AnimationScale string `json:"animation_scale"`
}

type IOSProfileResponse struct {
	AutoScan            string `json:"auto_scan"`
	Pause               string `json:"pause"`
	MovementRepetition  string `json:"movement_repetition"`
	LongPress           string `json:"long_press"`
	Cycles              int    `json:"cycles"`
	MobileCursor        string `json:"mobile_cursor"`
	MobileCursorSpeed   int    `json:"mobile_cursor_speed"`
	MouseKeys           string `json:"mouse_keys"`
	TrackingSensitivity string `json:"tracking_sensitivity"`
	MovementTolerance   string `json:"movement_tolerance"`
}
