// Package game is the windowed front end. It turns keyboard and mouse input
// into scheduler frames and draws the battle from world snapshots.
package game

import (
	"context"
	"fmt"
	"strings"

	"chosenoffset.com/raidnight/internal/core/grid"
	"chosenoffset.com/raidnight/internal/logger"
	"chosenoffset.com/raidnight/internal/render"
	"chosenoffset.com/raidnight/internal/schedule"
	"chosenoffset.com/raidnight/internal/simulation"
	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"
)

const messageDuration = 2.5

// Game holds the view state and drives the scheduler once per Update.
type Game struct {
	ScreenWidth  int
	ScreenHeight int

	Scheduler *schedule.Scheduler
	Renderer  render.Renderer
	InputMgr  render.InputManager

	// Delta is the simulated time per Update, 1/TPS.
	Delta float64

	// CopyText writes to the system clipboard. Replaced in tests.
	CopyText func(string) error

	// UI state
	Messages []Message

	ctx context.Context
	log *logrus.Entry
}

// New creates a game over sched sized from the window config.
func New(ctx context.Context, sched *schedule.Scheduler, r render.Renderer, input render.InputManager, win simulation.WindowConfig, tps int) *Game {
	if tps <= 0 {
		tps = 60
	}
	return &Game{
		ScreenWidth:  win.Width,
		ScreenHeight: win.Height,
		Scheduler:    sched,
		Renderer:     r,
		InputMgr:     input,
		Delta:        1.0 / float64(tps),
		CopyText:     clipboard.WriteAll,
		ctx:          ctx,
		log:          logger.For("game"),
	}
}

// Update reads input and runs one scheduler tick.
func (g *Game) Update() error {
	if g.InputMgr.IsKeyJustPressed(render.KeyEscape) {
		return render.ErrTerminate
	}
	g.updateMessages(g.Delta)

	if g.InputMgr.IsKeyJustPressed(render.KeyC) {
		g.copyTurnOrder()
	}

	if err := g.Scheduler.Tick(g.ctx, g.readFrame()); err != nil {
		return fmt.Errorf("tick: %w", err)
	}
	return nil
}

var stepKeys = []struct {
	keys []render.Key
	dir  grid.Direction
}{
	{[]render.Key{render.KeyUp, render.KeyW}, grid.Up},
	{[]render.Key{render.KeyRight, render.KeyD}, grid.Right},
	{[]render.Key{render.KeyDown, render.KeyS}, grid.Down},
	{[]render.Key{render.KeyLeft, render.KeyA}, grid.Left},
}

func (g *Game) readFrame() schedule.Frame {
	cx, cy := g.InputMgr.GetCursorPosition()
	f := schedule.Frame{
		Delta:   g.Delta,
		Confirm: g.InputMgr.IsKeyJustPressed(render.KeySpace),
		Undo:    g.InputMgr.IsKeyJustPressed(render.KeyBackspace),
		Cursor:  grid.Point{X: float64(cx), Y: float64(cy)},
	}
	for _, sk := range stepKeys {
		for _, k := range sk.keys {
			if g.InputMgr.IsKeyJustPressed(k) {
				f.Steps = append(f.Steps, sk.dir)
				break
			}
		}
	}
	return f
}

// Layout implements render.Game with a fixed logical size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.ScreenWidth, g.ScreenHeight
}

func (g *Game) copyTurnOrder() {
	txt := TurnOrderText(g.Scheduler.World().Snapshot())
	if err := g.CopyText(txt); err != nil {
		g.log.WithError(err).Warn("clipboard unavailable")
		g.ShowMessage("Clipboard unavailable")
		return
	}
	g.ShowMessage("Turn order copied")
}

// ShowMessage queues a toast at the bottom of the screen.
func (g *Game) ShowMessage(text string) {
	g.Messages = append(g.Messages, Message{Text: text, TimeLeft: messageDuration, MaxTime: messageDuration})
}

func (g *Game) updateMessages(dt float64) {
	kept := g.Messages[:0]
	for _, m := range g.Messages {
		m.TimeLeft -= dt
		if m.TimeLeft > 0 {
			kept = append(kept, m)
		}
	}
	g.Messages = kept
}

// TurnOrderLines formats the turn order one combatant per line, marking the
// active one with "> ".
func TurnOrderLines(s schedule.Snapshot) []string {
	lines := make([]string, 0, len(s.Turn.Combatants))
	for i, c := range s.Turn.Combatants {
		name := "???"
		if a, ok := s.Actor(c.Entity); ok {
			name = a.Name
		}
		prefix := "  "
		if s.Turn.IsActive(i) {
			prefix = "> "
		}
		lines = append(lines, fmt.Sprintf("%s[%d] %s", prefix, c.Init, name))
	}
	return lines
}

// TurnOrderText is the clipboard form of the turn order.
func TurnOrderText(s schedule.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Round %d (%s)\n", s.Turn.Round, s.Turn.State)
	for _, l := range TurnOrderLines(s) {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}
