package game

import (
	"fmt"
	"image/color"

	"chosenoffset.com/raidnight/internal/core/grid"
	"chosenoffset.com/raidnight/internal/render"
	"chosenoffset.com/raidnight/internal/schedule"
)

var (
	backgroundColor = color.RGBA{R: 0x4c, G: 0x3f, B: 0x2f, A: 0xff}
	gridLineColor   = color.RGBA{R: 0x82, G: 0x82, B: 0x82, A: 0xff}
	hoverColor      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x30}
	panelColor      = color.RGBA{R: 0x82, G: 0x82, B: 0x82, A: 0xff}
	inkColor        = color.Black
	hintColor       = color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
)

const (
	pieceInset   = 4
	trailWidth   = 4
	panelX       = 1000
	panelY       = 64
	panelWidth   = 200
	panelRowStep = 32
)

// Draw renders the game to the screen.
func (g *Game) Draw(screen render.Image) {
	w := g.Scheduler.World()
	snap := w.Snapshot()

	screen.Fill(backgroundColor)
	g.drawGrid(screen, w.Grid, snap)
	g.drawPieces(screen, w.Grid, snap)
	g.drawDeclaredMoves(screen, w.Grid, snap)
	g.drawTurnTracker(screen, snap)
	g.drawUI(screen)
}

func (g *Game) drawGrid(screen render.Image, bg *grid.BattleGrid, snap schedule.Snapshot) {
	lw := float32(bg.LineWidth)
	size := float32(bg.CellSize)
	for y := 0; y < bg.Height; y++ {
		for x := 0; x < bg.Width; x++ {
			tl := bg.CellTopLeft(x, y)
			g.Renderer.StrokeRect(screen, float32(tl.X)-lw/2, float32(tl.Y)-lw/2, size+lw, size+lw, lw, gridLineColor)
		}
	}

	if snap.Hover != nil {
		tl := bg.CellTopLeft(snap.Hover.X, snap.Hover.Y)
		g.Renderer.FillRect(screen, float32(tl.X), float32(tl.Y), size, size, hoverColor)
	}
}

func (g *Game) drawPieces(screen render.Image, bg *grid.BattleGrid, snap schedule.Snapshot) {
	size := float32(bg.CellSize)
	for _, a := range snap.Actors {
		if !bg.InBounds(a.Pos) {
			continue
		}
		tl := bg.CellTopLeft(a.Pos.X, a.Pos.Y)
		clr := color.RGBA{R: a.Color[0], G: a.Color[1], B: a.Color[2], A: a.Color[3]}
		g.Renderer.FillRect(screen, float32(tl.X)+pieceInset, float32(tl.Y)+pieceInset, size-2*pieceInset, size-2*pieceInset, clr)

		scale := bg.CellSize / 32
		tw, th := g.Renderer.MeasureText(a.Initial, scale)
		g.Renderer.DrawText(screen, a.Initial,
			int(tl.X+bg.CellSize/2)-tw/2,
			int(tl.Y+bg.CellSize/2)-th/2,
			inkColor, scale)
	}
}

// drawDeclaredMoves traces each pending path from its actor through the cell
// centres it would visit.
func (g *Game) drawDeclaredMoves(screen render.Image, bg *grid.BattleGrid, snap schedule.Snapshot) {
	for _, d := range snap.Moves {
		a, ok := snap.Actor(d.Source)
		if !ok {
			continue
		}
		clr := color.RGBA{R: a.Color[0], G: a.Color[1], B: a.Color[2], A: a.Color[3]}

		cur := a.Pos
		for _, dir := range d.Move {
			next := cur.Step(dir)
			from := bg.CellCenter(cur.X, cur.Y)
			to := bg.CellCenter(next.X, next.Y)
			g.Renderer.StrokeLine(screen, float32(from.X), float32(from.Y), float32(to.X), float32(to.Y), trailWidth, clr)
			cur = next
		}
	}
}

func (g *Game) drawTurnTracker(screen render.Image, snap schedule.Snapshot) {
	lines := TurnOrderLines(snap)
	height := float32(60 + panelRowStep*len(lines))
	g.Renderer.FillRect(screen, panelX, panelY, panelWidth, height, panelColor)

	header := fmt.Sprintf("Round %d %s", snap.Turn.Round, snap.Turn.State)
	g.Renderer.DrawText(screen, header, panelX+8, panelY+8, inkColor, 1.5)
	for i, l := range lines {
		g.Renderer.DrawText(screen, l, panelX+8, panelY+48+i*panelRowStep, inkColor, 1.5)
	}
}

const hint = "arrows/WASD plan  backspace undo  space confirm  C copy order  esc quit"

func (g *Game) drawUI(screen render.Image) {
	g.Renderer.DrawText(screen, hint, 16, g.ScreenHeight-32, hintColor, 1)

	y := g.ScreenHeight - 64
	for i := len(g.Messages) - 1; i >= 0; i-- {
		m := g.Messages[i]
		a := uint8(255 * m.Alpha())
		g.Renderer.DrawText(screen, m.Text, 16, y, color.RGBA{R: a, G: a, B: a, A: a}, 1.5)
		y -= 24
	}
}
