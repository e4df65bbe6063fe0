package tui

import (
	"fmt"
	"unicode/utf8"

	"github.com/vovakirdan/flappy-chicken/internal/config"
	"github.com/vovakirdan/flappy-chicken/internal/core"
	"github.com/vovakirdan/flappy-chicken/internal/games/flappy"
)

// hudRows is the number of screen rows above the playfield.
const hudRows = 1

// cellAspect is how many columns make a square on a typical terminal.
const cellAspect = 2.0

// Playfield is where the world viewport lands on the screen.
type Playfield struct {
	core.Viewport
	OffsetX, OffsetY int
}

// Contains reports whether a playfield cell is visible.
func (p Playfield) Contains(col, row int) bool {
	return col >= 0 && col < p.Cols && row >= 0 && row < p.Rows
}

// Renderer draws sessions onto a character screen. It reads sessions and
// never modifies them.
type Renderer struct {
	sprites *Sprites
	tuning  config.Tuning
	worldW  float64
	worldH  float64
}

// NewRenderer creates a renderer for a world of the given size.
func NewRenderer(sp *Sprites, t config.Tuning, worldW, worldH float64) *Renderer {
	return &Renderer{sprites: sp, tuning: t, worldW: worldW, worldH: worldH}
}

// Layout fits the world into a screen, keeping its aspect ratio and
// centering it horizontally below the HUD.
func (r *Renderer) Layout(screenW, screenH int) Playfield {
	rows := max(screenH-hudRows, 0)
	cols := screenW
	if r.worldH > 0 {
		cols = min(screenW, int(float64(rows)*r.worldW/r.worldH*cellAspect+0.5))
	}
	return Playfield{
		Viewport: core.Viewport{WorldW: r.worldW, WorldH: r.worldH, Cols: cols, Rows: rows},
		OffsetX:  (screenW - cols) / 2,
		OffsetY:  hudRows,
	}
}

// Render draws the playfield and the score line.
func (r *Renderer) Render(dst *core.Screen, s flappy.Session, best int) {
	dst.Clear()
	pf := r.Layout(dst.Width(), dst.Height())
	sp := r.sprites

	dst.FillRect(core.NewRect(pf.OffsetX, pf.OffsetY, pf.Cols, pf.Rows), sp.Sky, sp.SkyColor)
	if pf.OffsetX > 0 {
		for y := pf.OffsetY; y < pf.OffsetY+pf.Rows; y++ {
			dst.SetColor(pf.OffsetX-1, y, '│', sp.DimColor)
			dst.SetColor(pf.OffsetX+pf.Cols, y, '│', sp.DimColor)
		}
	}

	for _, o := range s.Obstacles {
		r.drawObstacle(dst, pf, o)
	}
	r.drawPlayer(dst, pf, s.Player)

	dst.DrawText(pf.OffsetX+1, 0, fmt.Sprintf("Score: %d", s.Score), sp.HUDColor)
	if best > 0 {
		text := fmt.Sprintf("Best: %d", best)
		dst.DrawText(pf.OffsetX+pf.Cols-utf8.RuneCountInString(text)-1, 0, text, sp.DimColor)
	}
}

func (r *Renderer) drawObstacle(dst *core.Screen, pf Playfield, o flappy.Obstacle) {
	sp := r.sprites
	left := max(pf.Col(o.X), 0)
	right := min(pf.Col(o.X+r.tuning.Obstacles.Width), pf.Cols)
	if left >= right {
		return
	}

	topEnd := pf.Row(o.TopHeight)
	bottomStart := pf.Row(o.BottomY)

	for col := left; col < right; col++ {
		for row := 0; row < topEnd; row++ {
			r.set(dst, pf, col, row, sp.ObstacleBody, sp.ObstacleColor)
		}
		for row := bottomStart; row < pf.Rows; row++ {
			r.set(dst, pf, col, row, sp.ObstacleBody, sp.ObstacleColor)
		}
		r.set(dst, pf, col, topEnd-1, r.cap(o.TopVariant), sp.CapColor)
		r.set(dst, pf, col, bottomStart, r.cap(o.BottomVariant), sp.CapColor)
	}
}

func (r *Renderer) drawPlayer(dst *core.Screen, pf Playfield, p flappy.Player) {
	sp := r.sprites
	glyphs := []rune(sp.PlayerFrames[p.Frame%len(sp.PlayerFrames)])
	col := pf.Col(p.X) - len(glyphs)/2
	row := pf.Row(p.Y)

	for i, g := range glyphs {
		c := sp.PlayerColor
		if i == len(glyphs)-1 {
			c = sp.BeakColor
		}
		r.set(dst, pf, col+i, row, g, c)
	}
}

func (r *Renderer) cap(v flappy.Variant) rune {
	return r.sprites.Caps[int(v)%len(r.sprites.Caps)]
}

// set draws one playfield cell, clipping to the playfield.
func (r *Renderer) set(dst *core.Screen, pf Playfield, col, row int, g rune, c core.Color) {
	if !pf.Contains(col, row) {
		return
	}
	dst.SetColor(pf.OffsetX+col, pf.OffsetY+row, g, c)
}

// DrawPanel draws a centered message box over whatever is on screen.
func (r *Renderer) DrawPanel(dst *core.Screen, title string, lines []string, titleColor core.Color) {
	inner := utf8.RuneCountInString(title)
	for _, l := range lines {
		inner = max(inner, utf8.RuneCountInString(l))
	}

	boxW := inner + 4
	boxH := len(lines) + 4
	box := core.NewRect((dst.Width()-boxW)/2, (dst.Height()-boxH)/2, boxW, boxH)

	dst.FillRect(box, ' ', core.ColorDefault)
	dst.DrawBox(box, r.sprites.HUDColor)

	center := func(y int, text string, c core.Color) {
		x := box.X + (boxW-utf8.RuneCountInString(text))/2
		dst.DrawText(x, y, text, c)
	}
	center(box.Y+1, title, titleColor)
	for i, l := range lines {
		center(box.Y+3+i, l, r.sprites.HUDColor)
	}
}
