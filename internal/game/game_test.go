package game

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math/rand"
	"strings"
	"testing"

	"chosenoffset.com/raidnight/internal/action"
	"chosenoffset.com/raidnight/internal/core/grid"
	"chosenoffset.com/raidnight/internal/entity"
	"chosenoffset.com/raidnight/internal/logger"
	"chosenoffset.com/raidnight/internal/render"
	"chosenoffset.com/raidnight/internal/schedule"
	"chosenoffset.com/raidnight/internal/simulation"
	"chosenoffset.com/raidnight/internal/telemetry"
	"chosenoffset.com/raidnight/internal/turn"
	"github.com/sirupsen/logrus"
)

type fakeImage struct{ w, h int }

func (i *fakeImage) Bounds() image.Rectangle                    { return image.Rect(0, 0, i.w, i.h) }
func (i *fakeImage) Size() (int, int)                           { return i.w, i.h }
func (i *fakeImage) Fill(color.Color)                           {}
func (i *fakeImage) Clear()                                     {}
func (i *fakeImage) DrawImageAt(render.Image, float64, float64) {}
func (i *fakeImage) Dispose()                                   {}

// recorder counts draw calls and keeps every string drawn
type recorder struct {
	rects, strokes, lines, circles int
	texts                          []string
}

func (r *recorder) NewImage(w, h int) render.Image { return &fakeImage{w, h} }
func (r *recorder) FillRect(render.Image, float32, float32, float32, float32, color.Color) {
	r.rects++
}
func (r *recorder) StrokeRect(render.Image, float32, float32, float32, float32, float32, color.Color) {
	r.strokes++
}
func (r *recorder) StrokeLine(render.Image, float32, float32, float32, float32, float32, color.Color) {
	r.lines++
}
func (r *recorder) FillCircle(render.Image, float32, float32, float32, color.Color) { r.circles++ }
func (r *recorder) DrawText(_ render.Image, s string, _, _ int, _ color.Color, _ float64) {
	r.texts = append(r.texts, s)
}
func (r *recorder) MeasureText(s string, scale float64) (int, int) {
	return int(float64(7*len(s)) * scale), int(13 * scale)
}

// keys presses each key for exactly one Update
type keys struct {
	just   map[render.Key]bool
	cx, cy int
}

func (k *keys) IsKeyPressed(key render.Key) bool             { return k.just[key] }
func (k *keys) IsKeyJustPressed(key render.Key) bool         { return k.just[key] }
func (k *keys) GetCursorPosition() (int, int)                { return k.cx, k.cy }
func (k *keys) IsMouseButtonPressed(render.MouseButton) bool { return false }

func (k *keys) press(ks ...render.Key) {
	k.just = map[render.Key]bool{}
	for _, key := range ks {
		k.just[key] = true
	}
}

func newTestGame(t *testing.T) (*Game, *recorder, *keys) {
	t.Helper()
	cfg := simulation.DefaultConfig()
	cfg.Turn.Initiative = "0"
	w, err := schedule.NewWorld(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	w.Log = logrus.NewEntry(logger.Discard())
	if err := w.Load(entity.DefaultEncounter()); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	in := &keys{}
	g := New(context.Background(), schedule.New(w, telemetry.NoopTracer()), rec, in, cfg.Window, 2)
	g.log = logrus.NewEntry(logger.Discard())
	return g, rec, in
}

func TestEscapeTerminates(t *testing.T) {
	g, _, in := newTestGame(t)
	in.press(render.KeyEscape)
	if err := g.Update(); !errors.Is(err, render.ErrTerminate) {
		t.Errorf("expected ErrTerminate, got %v", err)
	}
}

func TestPlayerDeclaresFromKeys(t *testing.T) {
	g, _, in := newTestGame(t)
	w := g.Scheduler.World()
	warden, _ := w.Roster.FindByName("Warden")

	// Delta is 0.5 at 2 TPS, so every AI step takes one update.
	for i := 0; i < 10 && !(w.Tracker.State == turn.DeclarePhase && w.ActiveActor() == warden); i++ {
		in.press()
		if err := g.Update(); err != nil {
			t.Fatal(err)
		}
	}
	if w.ActiveActor() != warden {
		t.Fatalf("expected the warden to be declaring, got %s", w.ActiveActor().Name)
	}

	in.press(render.KeyRight)
	g.Update()
	in.press(render.KeyS)
	g.Update()
	d, ok := w.Board.PendingMove(warden.ID)
	if !ok || len(d.Move) != 2 || d.Move[0] != grid.Right || d.Move[1] != grid.Down {
		t.Fatalf("unexpected declared path %+v", d)
	}

	in.press(render.KeySpace)
	g.Update()
	if !w.Board.Finished(warden.ID) {
		t.Error("space should confirm the declaration")
	}
}

func TestCopyTurnOrder(t *testing.T) {
	g, _, in := newTestGame(t)
	var copied string
	g.CopyText = func(s string) error {
		copied = s
		return nil
	}

	in.press()
	g.Update()
	in.press(render.KeyC)
	g.Update()

	if !strings.HasPrefix(copied, "Round 1 (declare)") {
		t.Errorf("unexpected clipboard text %q", copied)
	}
	if !strings.Contains(copied, "] Warden") {
		t.Errorf("turn order should list the warden: %q", copied)
	}
	if len(g.Messages) != 1 {
		t.Errorf("expected a toast, got %d", len(g.Messages))
	}
}

func TestCopyFailureShowsMessage(t *testing.T) {
	g, _, in := newTestGame(t)
	g.CopyText = func(string) error { return errors.New("no display") }
	in.press(render.KeyC)
	g.Update()
	if len(g.Messages) != 1 || g.Messages[0].Text != "Clipboard unavailable" {
		t.Errorf("unexpected messages %+v", g.Messages)
	}
}

func TestMessagesExpire(t *testing.T) {
	g, _, _ := newTestGame(t)
	g.ShowMessage("hello")
	g.updateMessages(1)
	if len(g.Messages) != 1 || g.Messages[0].Alpha() != 1 {
		t.Fatalf("message should still be fully visible: %+v", g.Messages)
	}
	g.updateMessages(1.2)
	if a := g.Messages[0].Alpha(); a <= 0 || a >= 1 {
		t.Errorf("message should be fading, alpha %v", a)
	}
	g.updateMessages(1)
	if len(g.Messages) != 0 {
		t.Errorf("message should have expired")
	}
}

func TestDrawTrailsAndTracker(t *testing.T) {
	g, rec, in := newTestGame(t)
	w := g.Scheduler.World()
	in.press()
	g.Update() // into the declare phase

	a := w.ActiveActor()
	w.Board.Declare(action.Move(a.ID, w.Tracker.Round, []grid.Direction{grid.Left, grid.Up}))

	g.Draw(&fakeImage{g.ScreenWidth, g.ScreenHeight})

	cells := w.Grid.Width * w.Grid.Height
	if rec.strokes != cells {
		t.Errorf("Expected %d cell outlines, got %d", cells, rec.strokes)
	}
	if rec.lines != 2 {
		t.Errorf("Expected 2 trail segments, got %d", rec.lines)
	}

	var active int
	for _, s := range rec.texts {
		if strings.HasPrefix(s, "> ") {
			active++
			if !strings.HasSuffix(s, a.Name) {
				t.Errorf("active row %q should name %s", s, a.Name)
			}
		}
	}
	if active != 1 {
		t.Errorf("Expected exactly one active row, got %d", active)
	}
}

func TestTurnOrderLinesBeforeFirstRound(t *testing.T) {
	g, _, _ := newTestGame(t)
	if lines := TurnOrderLines(g.Scheduler.World().Snapshot()); len(lines) != 0 {
		t.Errorf("no one should be in the turn order yet, got %v", lines)
	}
}

func TestHoverFromCursor(t *testing.T) {
	g, _, in := newTestGame(t)
	w := g.Scheduler.World()
	c := w.Grid.CellCenter(1, 2)
	in.cx, in.cy = int(c.X), int(c.Y)
	in.press()
	g.Update()
	if w.Hover == nil || *w.Hover != grid.C(1, 2) {
		t.Errorf("Expected hover at (1,2), got %v", w.Hover)
	}
}
