package config

import (
	_ "embed"
)

//go:embed defaults/tuning.yaml
var defaultTuningYAML []byte

// DefaultTuning returns the built-in tuning with the desktop profile active.
func DefaultTuning() Tuning {
	t := Tuning{
		Profiles: Profiles{
			Desktop: Profile{
				Gravity:       0.3,
				ObstacleSpeed: 1.5,
				JumpImpulse:   -8,
			},
			Mobile: Profile{
				Gravity:       0.4,
				ObstacleSpeed: 2.0,
				JumpImpulse:   -11,
			},
		},
		Obstacles: ObstacleTuning{
			Width:         120,
			MinGap:        185,
			MaxGap:        220,
			SpawnSpacing:  300,
			Cap:           3,
			OffscreenEdge: 50,
			MinTopRatio:   0.2,
			MaxTopRatio:   0.6,
		},
		Player: PlayerTuning{
			Radius:           33,
			TerminalVelocity: 4,
			AnchorX:          0.2,
			AnchorY:          0.5,
		},
		Animation: AnimationTuning{
			TicksPerFrame: 3,
			Frames:        3,
		},
	}
	t.Profile = t.Profiles.Desktop
	return t
}

// DefaultYAML returns the embedded default tuning file.
func DefaultYAML() []byte {
	return defaultTuningYAML
}
