package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"chosenoffset.com/raidnight/internal/core/grid"
	"chosenoffset.com/raidnight/internal/logger"
	"chosenoffset.com/raidnight/internal/schedule"
	"chosenoffset.com/raidnight/internal/telemetry"
)

var offGrid = grid.Point{X: -1, Y: -1}

// App runs the scheduler against a terminal. Input arriving between ticks is
// buffered into the next frame.
type App struct {
	screen   *Screen
	renderer *Renderer
	sched    *schedule.Scheduler
	tick     time.Duration

	pending schedule.Frame
	message string
	running bool
	log     *logrus.Entry
}

// NewApp creates an app ticking tps times per second.
func NewApp(screen *Screen, sched *schedule.Scheduler, tps int) *App {
	if tps <= 0 {
		tps = 30
	}
	return &App{
		screen:   screen,
		renderer: NewRenderer(screen),
		sched:    sched,
		tick:     time.Second / time.Duration(tps),
		pending:  schedule.Frame{Cursor: offGrid},
		running:  true,
		log:      logger.For("tui"),
	}
}

// Run executes the main loop until the player quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, span := telemetry.Tracer("tui").Start(ctx, "tui.run")
	defer span.End()

	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(events)
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(a.tick)
	defer ticker.Stop()
	defer a.screen.Close()

	a.render()
	for a.running {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			a.handleEvent(ev)
		case <-ticker.C:
			if err := a.step(ctx); err != nil {
				return err
			}
			a.render()
		}
	}
	span.SetAttributes(attribute.Int("rounds", a.sched.World().Tracker.Round))
	return nil
}

// step runs one tick with the input buffered since the last one.
func (a *App) step(ctx context.Context) error {
	f := a.pending
	f.Delta = a.tick.Seconds()
	a.pending = schedule.Frame{Cursor: f.Cursor}
	if err := a.sched.Tick(ctx, f); err != nil {
		return fmt.Errorf("tick: %w", err)
	}
	return nil
}

func (a *App) render() {
	a.renderer.Render(a.sched.World().Snapshot(), a.message)
}

func (a *App) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		a.handleKeyEvent(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventResize:
		a.screen.Sync()
	}
}

func (a *App) handleKeyEvent(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		a.running = false
	case tcell.KeyUp:
		a.addStep(grid.Up)
	case tcell.KeyDown:
		a.addStep(grid.Down)
	case tcell.KeyLeft:
		a.addStep(grid.Left)
	case tcell.KeyRight:
		a.addStep(grid.Right)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.pending.Undo = true
	case tcell.KeyEnter:
		a.pending.Confirm = true
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			a.pending.Confirm = true
		case 'w', 'W':
			a.addStep(grid.Up)
		case 's', 'S':
			a.addStep(grid.Down)
		case 'a', 'A':
			a.addStep(grid.Left)
		case 'd', 'D':
			a.addStep(grid.Right)
		case 'q', 'Q':
			a.running = false
		}
	}
}

func (a *App) addStep(d grid.Direction) {
	a.pending.Steps = append(a.pending.Steps, d)
}

// handleMouse turns the terminal position into the pixel centre of the cell
// beneath it, so hover tracking works the same as in the window.
func (a *App) handleMouse(ev *tcell.EventMouse) {
	col, row := ev.Position()
	g := a.sched.World().Grid
	c, ok := CellAt(col, row)
	if !ok || !g.InBounds(c) {
		a.pending.Cursor = offGrid
		a.message = ""
		return
	}
	a.pending.Cursor = g.CellCenter(c.X, c.Y)
	a.message = fmt.Sprintf("%s %s", c, g.StatusAt(c))
}
