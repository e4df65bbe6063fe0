package core

// RuntimeConfig contains the platform settings for one play session.
type RuntimeConfig struct {
	ScreenW   int     // Screen width in characters
	ScreenH   int     // Screen height in characters
	ViewportW float64 // Simulation viewport width in world pixels
	ViewportH float64 // Simulation viewport height in world pixels
	TickRate  int     // Simulation ticks per second (default 60)
	Seed      int64   // RNG seed for deterministic obstacle layouts
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
// The 400x700 viewport is the portrait canvas the tuning was made for.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:   80,
		ScreenH:   24,
		ViewportW: 400,
		ViewportH: 700,
		TickRate:  60,
		Seed:      0, // 0 means use current time in platform layer
	}
}
