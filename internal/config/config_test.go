package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestProfileFor(t *testing.T) {
	tests := []struct {
		env      Environment
		expected Profile
	}{
		{EnvDesktop, Profile{Gravity: 0.3, ObstacleSpeed: 1.5, JumpImpulse: -8}},
		{EnvMobile, Profile{Gravity: 0.4, ObstacleSpeed: 2.0, JumpImpulse: -11}},
		{Environment("tablet"), Profile{Gravity: 0.3, ObstacleSpeed: 1.5, JumpImpulse: -8}},
	}

	for _, tc := range tests {
		t.Run(string(tc.env), func(t *testing.T) {
			if got := ProfileFor(tc.env); got != tc.expected {
				t.Errorf("ProfileFor(%q) = %+v, expected %+v", tc.env, got, tc.expected)
			}
		})
	}
}

func TestDetectEnvironment(t *testing.T) {
	tests := []struct {
		hint     string
		expected Environment
	}{
		{"SSH-2.0-OpenSSH_9.6", EnvDesktop},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)", EnvMobile},
		{"SSH-2.0-Termius android", EnvMobile},
		{"", EnvDesktop},
	}

	for _, tc := range tests {
		if got := DetectEnvironment(tc.hint); got != tc.expected {
			t.Errorf("DetectEnvironment(%q) = %q, expected %q", tc.hint, got, tc.expected)
		}
	}
}

func TestParseEnvironment(t *testing.T) {
	if ParseEnvironment(" Mobile ") != EnvMobile {
		t.Error("ParseEnvironment should accept mixed case mobile")
	}
	if ParseEnvironment("console") != EnvDesktop {
		t.Error("ParseEnvironment should default to desktop")
	}
}

func TestWithEnvironment(t *testing.T) {
	base := DefaultTuning()
	mobile := base.WithEnvironment(EnvMobile)

	if mobile.Profile.JumpImpulse != -11 {
		t.Errorf("mobile jump impulse = %v, expected -11", mobile.Profile.JumpImpulse)
	}
	if base.Profile.JumpImpulse != -8 {
		t.Error("WithEnvironment must not modify the receiver")
	}
}

func TestEmbeddedDefaultsMatchBuiltin(t *testing.T) {
	cfg, err := parse(DefaultYAML())
	if err != nil {
		t.Fatalf("parse(embedded) failed: %v", err)
	}
	if cfg != DefaultTuning() {
		t.Errorf("embedded tuning = %+v, expected %+v", cfg, DefaultTuning())
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	data := []byte("profiles:\n  desktop:\n    gravity: 0.5\n    obstacle_speed: 3\n    jump_impulse: -9\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Profile.Gravity != 0.5 || cfg.Profile.JumpImpulse != -9 {
		t.Errorf("custom profile not applied: %+v", cfg.Profile)
	}
	// Untouched sections keep their defaults
	if cfg.Obstacles.Width != 120 {
		t.Errorf("obstacle width = %v, expected default 120", cfg.Obstacles.Width)
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("Load() should fail for a missing custom path")
	}
}

func TestLoadRejectsInvertedGap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	data := []byte("obstacles:\n  min_gap: 300\n  max_gap: 200\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrInvalidTuning) {
		t.Errorf("Load() error = %v, expected ErrInvalidTuning", err)
	}
}
