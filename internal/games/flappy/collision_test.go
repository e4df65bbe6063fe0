package flappy

import (
	"testing"

	"github.com/vovakirdan/flappy-chicken/internal/config"
)

func TestCollides(t *testing.T) {
	tuning := config.DefaultTuning()
	// Default player: x = 80, radius 33, so its box spans x 47..113.
	at := func(y float64) Player { return Player{X: 80, Y: y} }
	gap := func(x float64) []Obstacle {
		return []Obstacle{{X: x, TopHeight: 300, BottomY: 400}}
	}

	tests := []struct {
		name      string
		player    Player
		obstacles []Obstacle
		expected  bool
	}{
		{"open sky", at(350), nil, false},
		{"inside the gap", at(350), gap(60), false},
		{"touching the top edge", at(333), gap(60), false},
		{"touching the bottom edge", at(367), gap(60), false},
		{"top segment", at(320), gap(60), true},
		{"bottom segment", at(380), gap(60), true},
		{"leading edge overlaps", at(100), gap(112), true},
		{"just right of the player", at(100), gap(113), false},
		{"trailing edge overlaps", at(100), gap(-72), true},
		{"just left of the player", at(100), gap(-73), false},
		{"far right", at(100), gap(400), false},
		{"ceiling", at(33), nil, true},
		{"below the ceiling", at(34), nil, false},
		{"floor", at(667), nil, true},
		{"above the floor", at(666), nil, false},
		{"second obstacle hits", at(380), []Obstacle{{X: -60, TopHeight: 300, BottomY: 450}, {X: 100, TopHeight: 100, BottomY: 300}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Collides(tt.player, tt.obstacles, testH, tuning)
			if got != tt.expected {
				t.Errorf("Collides(y=%v, %+v) = %v, expected %v", tt.player.Y, tt.obstacles, got, tt.expected)
			}
		})
	}
}
