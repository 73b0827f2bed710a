package handlers

import (
	"github.com/ivankudzin/sensgen/internal/domain/model"
	"github.com/ivankudzin/sensgen/internal/services/cooldown"
	"github.com/ivankudzin/sensgen/internal/services/flow"
	"github.com/ivankudzin/sensgen/internal/transport/http/dto"
)

func toSnapshotResponse(snap flow.Snapshot) dto.SnapshotResponse {
	res := dto.SnapshotResponse{
		State:       string(snap.State),
		Platform:    string(snap.Platform),
		DeviceModel: snap.DeviceModel,
		Tier:        string(snap.Tier),
		Profile:     toProfileResponse(snap.Profile),
		Countdown:   snap.Countdown,
		ShowNotice:  snap.ShowNotice,
		LastError:   snap.LastError,
	}
	if snap.CooldownActive {
		res.Cooldown = dto.CooldownResponse{
			Active:       true,
			RemainingSec: cooldown.CeilSeconds(snap.Remaining),
			Remaining:    cooldown.FormatRemaining(snap.Remaining),
			Until:        snap.CooldownUntil,
		}
	}
	return res
}

func toProfileResponse(profile model.Profile) *dto.ProfileResponse {
	switch p := profile.(type) {
	case model.AndroidProfile:
		return &dto.ProfileResponse{
			Platform: string(p.Platform()),
			Android: &dto.AndroidProfileResponse{
				DPI:            p.DPI,
				CursorSpeed:    p.CursorSpeed,
				AnimationScale: p.AnimationScale,
			},
		}
	case model.IOSProfile:
		return &dto.ProfileResponse{
			Platform: string(p.Platform()),
			IOS: &dto.IOSProfileResponse{
				AutoScan:            p.AutoScan,
				Pause:               p.Pause,
				MovementRepetition:  p.MovementRepetition,
				LongPress:           p.LongPress,
				Cycles:              p.Cycles,
				MobileCursor:        p.MobileCursor,
				MobileCursorSpeed:   p.MobileCursorSpeed,
				MouseKeys:           string(p.MouseKeys),
				TrackingSensitivity: string(p.TrackingSensitivity),
				MovementTolerance:   string(p.MovementTolerance),
			},
		}
	default:
		return nil
	}
}
