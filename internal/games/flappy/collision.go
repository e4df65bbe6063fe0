package flappy

import (
	"math"

	"github.com/vovakirdan/flappy-chicken/internal/config"
	"github.com/vovakirdan/flappy-chicken/internal/core"
)

// Collides tests the player against the viewport bounds and every obstacle.
// The test is discrete: a fast player can pass through a thin obstacle
// between two ticks.
func Collides(p Player, obstacles []Obstacle, height float64, t config.Tuning) bool {
	r := t.Player.Radius
	box := core.BoxAround(p.X, p.Y, r)

	if box.Top <= 0 || box.Bottom >= height {
		return true
	}

	w := t.Obstacles.Width
	for _, o := range obstacles {
		if math.Abs(p.X-o.X) > w+r {
			continue
		}
		if !box.OverlapsX(o.X, o.X+w) {
			continue
		}
		if box.Top < o.TopHeight || box.Bottom > o.BottomY {
			return true
		}
	}
	return false
}
