package flappy

import (
	"math/rand"

	"github.com/vovakirdan/flappy-chicken/internal/config"
)

// ObstacleSource produces new obstacles at the right edge of the viewport.
type ObstacleSource interface {
	Obstacle(width, height float64) Obstacle
}

// Generator is the random ObstacleSource. It is not safe for concurrent
// use; each session driver owns its own.
type Generator struct {
	rng *rand.Rand
	cfg config.ObstacleTuning
}

// NewGenerator creates a generator with the given RNG seed.
func NewGenerator(seed int64, t config.Tuning) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		cfg: t.Obstacles,
	}
}

// Obstacle creates an obstacle at x = width with a random opening.
func (g *Generator) Obstacle(width, height float64) Obstacle {
	minTop := height * g.cfg.MinTopRatio
	maxTop := height * g.cfg.MaxTopRatio
	top := g.uniform(minTop, maxTop)
	gap := g.uniform(g.cfg.MinGap, g.cfg.MaxGap)

	return Obstacle{
		X:             width,
		TopHeight:     top,
		BottomY:       top + gap,
		TopVariant:    g.variant(),
		BottomVariant: g.variant(),
	}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *Generator) variant() Variant {
	if g.rng.Intn(2) == 0 {
		return VariantTop
	}
	return VariantBottom
}

// advanceObstacles scrolls every obstacle left and drops the ones that have
// left the screen. The result never aliases the input.
func advanceObstacles(in []Obstacle, t config.Tuning) []Obstacle {
	out := make([]Obstacle, 0, len(in)+1)
	for _, o := range in {
		o.X -= t.Profile.ObstacleSpeed
		if o.X+t.Obstacles.Width > -t.Obstacles.OffscreenEdge {
			out = append(out, o)
		}
	}
	return out
}

// needsSpawn reports whether a new obstacle should enter this tick.
func needsSpawn(obstacles []Obstacle, width float64, t config.Tuning) bool {
	if len(obstacles) == 0 {
		return true
	}
	if len(obstacles) >= t.Obstacles.Cap {
		return false
	}
	return obstacles[len(obstacles)-1].X <= width-t.Obstacles.SpawnSpacing
}
