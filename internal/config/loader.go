package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TuningFile is the file name searched for in the config directories.
const TuningFile = "tuning.yaml"

// ErrInvalidTuning is returned by Validate for unusable values.
var ErrInvalidTuning = errors.New("config: invalid tuning")

// Load loads the tuning file.
// Search order: customPath -> ~/.flappy/configs/tuning.yaml -> ./configs/tuning.yaml -> embedded default
// Fields missing from a file keep their built-in values.
func Load(customPath string) (Tuning, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return DefaultTuning(), fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parse(data)
		if err != nil {
			return DefaultTuning(), fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(TuningFile); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parse(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", TuningFile)); err == nil {
		if cfg, err := parse(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := parse(defaultTuningYAML)
	if err != nil {
		return DefaultTuning(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// parse decodes YAML over the built-in defaults and validates the result.
func parse(data []byte) (Tuning, error) {
	cfg := DefaultTuning()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.Profile = cfg.Profiles.Desktop
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports values the simulation cannot work with.
func (t Tuning) Validate() error {
	o := t.Obstacles
	switch {
	case o.Width <= 0:
		return fmt.Errorf("%w: obstacle width must be positive", ErrInvalidTuning)
	case o.MinGap <= 0 || o.MinGap > o.MaxGap:
		return fmt.Errorf("%w: need 0 < min_gap <= max_gap, got %v..%v", ErrInvalidTuning, o.MinGap, o.MaxGap)
	case o.MinTopRatio < 0 || o.MinTopRatio > o.MaxTopRatio:
		return fmt.Errorf("%w: need 0 <= min_top_ratio <= max_top_ratio", ErrInvalidTuning)
	case o.Cap < 1:
		return fmt.Errorf("%w: obstacle cap must be at least 1", ErrInvalidTuning)
	case t.Player.Radius <= 0:
		return fmt.Errorf("%w: player radius must be positive", ErrInvalidTuning)
	case t.Player.TerminalVelocity <= 0:
		return fmt.Errorf("%w: terminal velocity must be positive", ErrInvalidTuning)
	case t.Animation.TicksPerFrame < 1 || t.Animation.Frames < 1:
		return fmt.Errorf("%w: animation needs at least one frame and tick", ErrInvalidTuning)
	}
	return nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".flappy", "configs", filename)
}
