package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"chosenoffset.com/raidnight/internal/core/grid"
	"chosenoffset.com/raidnight/internal/game"
	"chosenoffset.com/raidnight/internal/schedule"
)

// Each grid cell takes cellCols columns and one row, offset by the margin.
const (
	cellCols   = 3
	marginX    = 2
	marginY    = 1
	panelGap   = 4
	hintText   = "arrows/wasd plan  backspace undo  space confirm  q quit"
	emptyGlyph = '.'
	trailGlyph = '*'
)

// Renderer draws world snapshots to a Screen.
type Renderer struct {
	screen *Screen
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// CellOrigin returns the terminal position of the first column of cell c.
func CellOrigin(c grid.Coordinate) (col, row int) {
	return marginX + c.X*cellCols, marginY + c.Y
}

// CellAt maps a terminal position back to a grid coordinate. The result may
// be out of bounds.
func CellAt(col, row int) (grid.Coordinate, bool) {
	if col < marginX || row < marginY {
		return grid.Coordinate{}, false
	}
	return grid.C((col-marginX)/cellCols, row-marginY), true
}

// Render draws the grid, the pieces, pending paths and the turn order panel.
func (r *Renderer) Render(s schedule.Snapshot, message string) {
	r.screen.Clear()

	floor := tcell.StyleDefault.Foreground(tcell.ColorGray)
	hover := floor.Background(tcell.ColorDarkSlateGray)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			c := grid.C(x, y)
			style := floor
			if s.Hover != nil && *s.Hover == c {
				style = hover
			}
			col, row := CellOrigin(c)
			r.screen.Text(col, row, fmt.Sprintf(" %c ", emptyGlyph), style)
		}
	}

	for _, d := range s.Moves {
		a, ok := s.Actor(d.Source)
		if !ok {
			continue
		}
		style := tcell.StyleDefault.Foreground(actorColor(a))
		cur := a.Pos
		for _, dir := range d.Move {
			cur = cur.Step(dir)
			if cur.X < 0 || cur.Y < 0 || cur.X >= s.Width || cur.Y >= s.Height {
				break
			}
			col, row := CellOrigin(cur)
			r.screen.SetContent(col+1, row, trailGlyph, style)
		}
	}

	for _, a := range s.Actors {
		if a.Pos.X < 0 || a.Pos.Y < 0 || a.Pos.X >= s.Width || a.Pos.Y >= s.Height {
			continue
		}
		col, row := CellOrigin(a.Pos)
		style := tcell.StyleDefault.Foreground(actorColor(a)).Bold(true)
		r.screen.Text(col, row, "["+a.Initial+"]", style)
	}

	panelX := marginX + s.Width*cellCols + panelGap
	ink := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	r.screen.Text(panelX, marginY, fmt.Sprintf("Round %d %s", s.Turn.Round, s.Turn.State), ink.Bold(true))
	for i, l := range game.TurnOrderLines(s) {
		r.screen.Text(panelX, marginY+2+i, l, ink)
	}

	bottom := marginY + s.Height + 1
	if message != "" {
		r.screen.Text(marginX, bottom, message, tcell.StyleDefault.Foreground(tcell.ColorYellow))
	}
	r.screen.Text(marginX, bottom+1, hintText, floor)

	r.screen.Show()
}

func actorColor(a schedule.ActorView) tcell.Color {
	return tcell.NewRGBColor(int32(a.Color[0]), int32(a.Color[1]), int32(a.Color[2]))
}
