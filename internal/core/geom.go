// Package core provides fundamental types shared by the simulation and the
// terminal platform. It has no external dependencies (especially no Bubble
// Tea) to keep game logic pure and testable.
package core

import "math"

// Rect is an integer rectangle in screen cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Box is an axis-aligned box in world (viewport pixel) coordinates.
type Box struct {
	Left, Top, Right, Bottom float64
}

// BoxAround returns the bounding box of a circle.
func BoxAround(cx, cy, radius float64) Box {
	return Box{
		Left:   cx - radius,
		Top:    cy - radius,
		Right:  cx + radius,
		Bottom: cy + radius,
	}
}

// OverlapsX reports strict horizontal overlap with the span [left, right).
func (b Box) OverlapsX(left, right float64) bool {
	return b.Right > left && b.Left < right
}

// Viewport maps world coordinates onto a grid of screen cells.
type Viewport struct {
	WorldW, WorldH float64
	Cols, Rows     int
}

// Col converts a world x to a screen column.
func (v Viewport) Col(x float64) int {
	if v.WorldW <= 0 {
		return 0
	}
	return int(math.Floor(x * float64(v.Cols) / v.WorldW))
}

// Row converts a world y to a screen row.
func (v Viewport) Row(y float64) int {
	if v.WorldH <= 0 {
		return 0
	}
	return int(math.Floor(y * float64(v.Rows) / v.WorldH))
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
