// Package config provides YAML-based tuning for the game and the
// environment classification that picks a physics profile.
package config

import (
	"regexp"
	"strings"
)

// Environment is the coarse device classification used to pick a profile.
type Environment string

const (
	EnvDesktop Environment = "desktop"
	EnvMobile  Environment = "mobile"
)

// ParseEnvironment maps a flag or payload value to an Environment.
// Anything unrecognised is treated as desktop.
func ParseEnvironment(s string) Environment {
	if strings.EqualFold(strings.TrimSpace(s), string(EnvMobile)) {
		return EnvMobile
	}
	return EnvDesktop
}

var mobileHint = regexp.MustCompile(`(?i)Mobile|Android|iPhone`)

// DetectEnvironment classifies a client hint (SSH client version, terminal
// program name, user agent) as mobile or desktop.
func DetectEnvironment(hint string) Environment {
	if mobileHint.MatchString(hint) {
		return EnvMobile
	}
	return EnvDesktop
}

// Profile holds the environment-dependent physics values.
type Profile struct {
	Gravity       float64 `yaml:"gravity"`
	ObstacleSpeed float64 `yaml:"obstacle_speed"`
	JumpImpulse   float64 `yaml:"jump_impulse"` // negative = up
}

// Tuning is the complete set of simulation constants. A single value is
// computed at startup and passed explicitly to the generator and step.
type Tuning struct {
	Profile Profile `yaml:"-"`

	Profiles  Profiles        `yaml:"profiles"`
	Obstacles ObstacleTuning  `yaml:"obstacles"`
	Player    PlayerTuning    `yaml:"player"`
	Animation AnimationTuning `yaml:"animation"`
}

// Profiles lists the per-environment physics.
type Profiles struct {
	Desktop Profile `yaml:"desktop"`
	Mobile  Profile `yaml:"mobile"`
}

// ObstacleTuning defines obstacle geometry and recycling.
type ObstacleTuning struct {
	Width         float64 `yaml:"width"`
	MinGap        float64 `yaml:"min_gap"`
	MaxGap        float64 `yaml:"max_gap"`
	SpawnSpacing  float64 `yaml:"spawn_spacing"`
	Cap           int     `yaml:"cap"`
	OffscreenEdge float64 `yaml:"offscreen_margin"`
	MinTopRatio   float64 `yaml:"min_top_ratio"`
	MaxTopRatio   float64 `yaml:"max_top_ratio"`
}

// PlayerTuning defines the player's shape and anchor.
type PlayerTuning struct {
	Radius           float64 `yaml:"radius"`
	TerminalVelocity float64 `yaml:"terminal_velocity"`
	AnchorX          float64 `yaml:"anchor_x"` // fraction of viewport width
	AnchorY          float64 `yaml:"anchor_y"` // fraction of viewport height
}

// AnimationTuning controls the cosmetic flap cycle.
type AnimationTuning struct {
	TicksPerFrame int `yaml:"ticks_per_frame"`
	Frames        int `yaml:"frames"`
}

// ProfileFor returns the physics profile for env. Unknown values get the
// desktop profile.
func (t Tuning) ProfileFor(env Environment) Profile {
	if env == EnvMobile {
		return t.Profiles.Mobile
	}
	return t.Profiles.Desktop
}

// WithEnvironment returns a copy of t with the active profile selected.
func (t Tuning) WithEnvironment(env Environment) Tuning {
	t.Profile = t.ProfileFor(env)
	return t
}

// ProfileFor returns the built-in physics profile for env.
func ProfileFor(env Environment) Profile {
	return DefaultTuning().ProfileFor(env)
}
