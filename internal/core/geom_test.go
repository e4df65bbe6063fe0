package core

import "testing"

func TestBoxAround(t *testing.T) {
	b := BoxAround(100, 200, 10)
	expected := Box{Left: 90, Top: 190, Right: 110, Bottom: 210}
	if b != expected {
		t.Errorf("BoxAround() = %+v, expected %+v", b, expected)
	}
}

func TestBoxOverlapsX(t *testing.T) {
	b := BoxAround(50, 50, 10) // spans 40..60

	tests := []struct {
		name        string
		left, right float64
		expected    bool
	}{
		{"inside", 45, 55, true},
		{"covering", 0, 100, true},
		{"touching left edge", 60, 80, false},
		{"touching right edge", 20, 40, false},
		{"partial right", 59, 80, true},
		{"far away", 200, 320, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := b.OverlapsX(tc.left, tc.right); got != tc.expected {
				t.Errorf("OverlapsX(%v, %v) = %v, expected %v", tc.left, tc.right, got, tc.expected)
			}
		})
	}
}

func TestViewportMapping(t *testing.T) {
	v := Viewport{WorldW: 400, WorldH: 700, Cols: 40, Rows: 35}

	tests := []struct {
		x, y     float64
		col, row int
	}{
		{0, 0, 0, 0},
		{399, 699, 39, 34},
		{200, 350, 20, 17},
		{-10, -20, -1, -1},
	}

	for _, tc := range tests {
		if c := v.Col(tc.x); c != tc.col {
			t.Errorf("Col(%v) = %d, expected %d", tc.x, c, tc.col)
		}
		if r := v.Row(tc.y); r != tc.row {
			t.Errorf("Row(%v) = %d, expected %d", tc.y, r, tc.row)
		}
	}
}

func TestViewportDegenerate(t *testing.T) {
	v := Viewport{Cols: 10, Rows: 10}
	if v.Col(50) != 0 || v.Row(50) != 0 {
		t.Error("zero-sized world should map everything to the origin")
	}
}

func TestRectEdges(t *testing.T) {
	r := NewRect(5, 10, 20, 15)

	if r.Right() != 25 {
		t.Errorf("Right() = %d, expected 25", r.Right())
	}
	if r.Bottom() != 25 {
		t.Errorf("Bottom() = %d, expected 25", r.Bottom())
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, expected int
	}{
		{5, 0, 10, 5},   // within range
		{-5, 0, 10, 0},  // below min
		{15, 0, 10, 10}, // above max
	}

	for _, tc := range tests {
		if got := Clamp(tc.val, tc.min, tc.max); got != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.min, tc.max, got, tc.expected)
		}
	}

	if ClampF(-0.5, -0.3, 0.3) != -0.3 {
		t.Error("ClampF should clamp to the lower bound")
	}
}
