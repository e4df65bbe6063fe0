package tui

import (
	_ "embed"
	"errors"
	"fmt"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/flappy-chicken/internal/core"
)

//go:embed assets/sprites.yaml
var defaultSpritesYAML []byte

// ErrInvalidSprites is returned for sheets the renderer cannot draw.
var ErrInvalidSprites = errors.New("tui: invalid sprite sheet")

var colorNames = map[string]core.Color{
	"":              core.ColorDefault,
	"default":       core.ColorDefault,
	"red":           core.ColorRed,
	"green":         core.ColorGreen,
	"yellow":        core.ColorYellow,
	"white":         core.ColorWhite,
	"bright_green":  core.ColorBrightGreen,
	"bright_yellow": core.ColorBrightYellow,
	"orange":        core.ColorOrange,
	"pink":          core.ColorPink,
	"gray":          core.ColorGray,
}

// Sprites is the decoded glyph sheet. It is loaded once before the first
// frame and never changes afterwards.
type Sprites struct {
	PlayerFrames []string
	PlayerColor  core.Color
	BeakColor    core.Color

	ObstacleBody  rune
	ObstacleColor core.Color
	CapColor      core.Color
	Caps          []rune // Indexed by flappy.Variant

	Sky      rune
	SkyColor core.Color

	HUDColor   core.Color
	TitleColor core.Color
	AlertColor core.Color
	DimColor   core.Color
}

type spriteFile struct {
	Player struct {
		Color     string   `yaml:"color"`
		BeakColor string   `yaml:"beak_color"`
		Frames    []string `yaml:"frames"`
	} `yaml:"player"`
	Obstacle struct {
		Body     string   `yaml:"body"`
		Color    string   `yaml:"color"`
		CapColor string   `yaml:"cap_color"`
		Caps     []string `yaml:"caps"`
	} `yaml:"obstacle"`
	Sky struct {
		Glyph string `yaml:"glyph"`
		Color string `yaml:"color"`
	} `yaml:"sky"`
	HUD struct {
		Color      string `yaml:"color"`
		TitleColor string `yaml:"title_color"`
		AlertColor string `yaml:"alert_color"`
		DimColor   string `yaml:"dim_color"`
	} `yaml:"hud"`
}

// LoadSprites decodes a sprite sheet. A nil or empty input loads the
// built-in sheet.
func LoadSprites(data []byte) (*Sprites, error) {
	if len(data) == 0 {
		data = defaultSpritesYAML
	}

	var f spriteFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("tui: cannot parse sprite sheet: %w", err)
	}

	if len(f.Player.Frames) == 0 {
		return nil, fmt.Errorf("%w: player needs at least one frame", ErrInvalidSprites)
	}
	if len(f.Obstacle.Caps) < 2 {
		return nil, fmt.Errorf("%w: obstacle needs a cap per variant", ErrInvalidSprites)
	}

	sp := &Sprites{PlayerFrames: f.Player.Frames}
	var err error
	lookup := func(name string) core.Color {
		c, ok := colorNames[name]
		if !ok && err == nil {
			err = fmt.Errorf("%w: unknown color %q", ErrInvalidSprites, name)
		}
		return c
	}
	glyph := func(s string, fallback rune) rune {
		if r, _ := utf8.DecodeRuneInString(s); r != utf8.RuneError {
			return r
		}
		return fallback
	}

	sp.PlayerColor = lookup(f.Player.Color)
	sp.BeakColor = lookup(f.Player.BeakColor)
	sp.ObstacleBody = glyph(f.Obstacle.Body, '#')
	sp.ObstacleColor = lookup(f.Obstacle.Color)
	sp.CapColor = lookup(f.Obstacle.CapColor)
	for _, c := range f.Obstacle.Caps {
		sp.Caps = append(sp.Caps, glyph(c, sp.ObstacleBody))
	}
	sp.Sky = glyph(f.Sky.Glyph, ' ')
	sp.SkyColor = lookup(f.Sky.Color)
	sp.HUDColor = lookup(f.HUD.Color)
	sp.TitleColor = lookup(f.HUD.TitleColor)
	sp.AlertColor = lookup(f.HUD.AlertColor)
	sp.DimColor = lookup(f.HUD.DimColor)

	if err != nil {
		return nil, err
	}
	return sp, nil
}

// MustDefaultSprites loads the built-in sheet and panics if it is broken.
func MustDefaultSprites() *Sprites {
	sp, err := LoadSprites(nil)
	if err != nil {
		panic(err)
	}
	return sp
}
