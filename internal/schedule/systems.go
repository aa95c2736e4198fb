package schedule

import (
	"context"

	"chosenoffset.com/raidnight/internal/action"
	"chosenoffset.com/raidnight/internal/core/grid"
	"chosenoffset.com/raidnight/internal/movement"
	"chosenoffset.com/raidnight/internal/turn"
	"github.com/sirupsen/logrus"
)

// Frame is the input gathered for one tick
type Frame struct {
	Delta   float64          // Seconds since the previous tick
	Confirm bool             // The player confirmed their declaration this tick
	Undo    bool             // The player took back their last declared step
	Steps   []grid.Direction // Steps the player added this tick
	Cursor  grid.Point       // Pointer position in screen space
}

// System is one unit of per-tick logic
type System func(ctx context.Context, w *World, f Frame)

// RefreshOccupancy rebuilds the grid's occupancy from actor positions.
func RefreshOccupancy(_ context.Context, w *World, _ Frame) {
	w.Grid.Reset()
	for _, a := range w.Roster.All() {
		if w.Grid.InBounds(a.Pos) {
			w.Grid.SetStatus(a.Pos, a.Status)
		}
	}
}

// TrackCursor records the cell under the pointer.
func TrackCursor(_ context.Context, w *World, f Frame) {
	if c, ok := w.Grid.CellAtScreenPoint(f.Cursor); ok {
		w.Hover = &c
		return
	}
	w.Hover = nil
}

// ClearRoundMessages discards declarations left over from the previous round.
func ClearRoundMessages(_ context.Context, w *World, _ Frame) {
	if n := w.Board.Clear(); n > 0 {
		w.Log.WithField("dropped", n).Debug("cleared unconsumed declarations")
	}
}

// RollInitiative registers every actor that has an initiative component with
// a fresh roll, once per round. Combatants whose actor is gone or has lost
// its initiative are dropped.
func RollInitiative(_ context.Context, w *World, _ Frame) {
	round := w.Tracker.Round + 1
	if w.rolledFor == round {
		return
	}
	w.rolledFor = round

	for _, c := range w.Tracker.Snapshot().Combatants {
		if a, ok := w.Roster.Get(c.Entity); !ok || a.Initiative == nil {
			w.Tracker.Remove(c.Entity)
		}
	}
	for _, a := range w.Roster.All() {
		if a.Initiative != nil {
			w.register(a)
		}
	}
}

// DeclarePlayer edits the active player's path from frame input and marks
// the declaration finished on confirm.
func DeclarePlayer(_ context.Context, w *World, f Frame) {
	if w.Tracker.Len() == 0 {
		return
	}
	a := w.ActiveActor()
	if !w.controlledByPlayer(a) || w.Board.Finished(a.ID) {
		return
	}

	round := w.Tracker.Round
	if f.Undo || len(f.Steps) > 0 {
		var path []grid.Direction
		if d, ok := w.Board.PendingMove(a.ID); ok {
			path = append(path, d.Move...)
		}
		if f.Undo && len(path) > 0 {
			path = path[:len(path)-1]
		}
		for _, d := range f.Steps {
			if len(path) >= w.Config.Turn.MaxSteps {
				break
			}
			path = append(path, d)
		}
		w.Board.Declare(action.Move(a.ID, round, path))
	}

	if f.Confirm {
		w.Board.Declare(action.Finished(a.ID, round))
		w.Log.WithFields(logrus.Fields{"actor": a.Name, "round": round}).Debug("player declared")
	}
}

// DeclareAI lets the planner declare for the active non-player combatant once
// the declare delay has elapsed.
func DeclareAI(_ context.Context, w *World, f Frame) {
	if w.Tracker.Len() == 0 {
		return
	}
	a := w.ActiveActor()
	if w.controlledByPlayer(a) || w.Board.Finished(a.ID) {
		return
	}

	w.Timer += f.Delta
	if w.Timer < w.Config.Turn.DeclareDelay {
		return
	}
	w.Timer = 0

	round := w.Tracker.Round
	path := w.Planner.Plan(w.RNG, a.Pos, w.Grid)
	w.Board.Declare(action.Move(a.ID, round, path))
	w.Board.Declare(action.Finished(a.ID, round))
	w.Log.WithFields(logrus.Fields{
		"actor": a.Name,
		"round": round,
		"path":  path,
	}).Debug("ai declared")
}

// ResolveActive applies the active combatant's pending move.
func ResolveActive(_ context.Context, w *World, _ Frame) {
	if w.Tracker.Len() == 0 {
		return
	}
	movement.ResolveDeclaration(w.Grid, w.Roster, w.Board, w.Tracker.Active().Entity)
}

// EndOfPhase advances the tracker when the current step is done.
//
// In DeclarePhase a step is done once the active combatant has a finished
// marker. In the other phases steps are paced by StepDelay; a long frame
// catches up by advancing several times, but never past the end of the phase
// it started in; time left over at a phase boundary is dropped. Each
// combatant stepped onto during a resolve catch-up has its move applied on
// the way.
func EndOfPhase(ctx context.Context, w *World, f Frame) {
	if w.Tracker.Len() == 0 {
		w.Timer = 0
		return
	}

	state := w.Tracker.State
	if state == turn.DeclarePhase {
		if w.Board.Finished(w.Tracker.Active().Entity) {
			w.advance()
		}
		return
	}

	w.Timer += f.Delta
	for w.Timer >= w.Config.Turn.StepDelay {
		w.Timer -= w.Config.Turn.StepDelay
		w.advance()
		if w.Tracker.State != state {
			w.Timer = 0
			break
		}
		if state == turn.ResolvePhase {
			ResolveActive(ctx, w, f)
		}
	}
}
