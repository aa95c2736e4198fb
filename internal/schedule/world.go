// Package schedule drives the combat loop. Each tick runs the pipeline of
// systems that belongs to the tracker's current state against an explicitly
// owned World.
package schedule

import (
	"fmt"
	"math/rand"

	"chosenoffset.com/raidnight/internal/action"
	"chosenoffset.com/raidnight/internal/ai"
	"chosenoffset.com/raidnight/internal/core/grid"
	"chosenoffset.com/raidnight/internal/dice"
	"chosenoffset.com/raidnight/internal/entity"
	"chosenoffset.com/raidnight/internal/logger"
	"chosenoffset.com/raidnight/internal/simulation"
	"chosenoffset.com/raidnight/internal/turn"
	"github.com/sirupsen/logrus"
)

// World is every piece of mutable combat state. One tick's pipeline is its
// only writer.
type World struct {
	Grid    *grid.BattleGrid
	Tracker *turn.Tracker
	Roster  *entity.Roster
	Board   *action.Board

	// Timer accumulates frame time for the delayed steps. It is shared by
	// the AI declaration delay and the automatic phase steps.
	Timer float64

	RNG        *rand.Rand
	Dice       *dice.Roller
	Initiative *dice.Expr
	Planner    ai.Planner
	Config     *simulation.Config

	// Hover is the cell under the cursor, if any.
	Hover *grid.Coordinate

	// rolledFor is the round initiative was last rolled for.
	rolledFor int

	// AutoPlay lets the planner declare for player actors too and confirms
	// on their behalf. Used by the headless runner.
	AutoPlay bool

	Log *logrus.Entry
}

// NewWorld builds an empty world from cfg
func NewWorld(cfg *simulation.Config, rng *rand.Rand) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	expr, err := dice.Parse(cfg.Turn.Initiative)
	if err != nil {
		return nil, fmt.Errorf("initiative: %w", err)
	}

	g := grid.New(cfg.Grid.Width, cfg.Grid.Height,
		grid.Point{X: cfg.Grid.OriginX, Y: cfg.Grid.OriginY},
		cfg.Grid.CellSize, cfg.Grid.LineWidth)

	return &World{
		Grid:       g,
		Tracker:    turn.NewTracker(),
		Roster:     entity.NewRoster(),
		Board:      action.NewBoard(),
		RNG:        rng,
		Dice:       dice.NewRoller(rng),
		Initiative: expr,
		Planner:    ai.RandomWalker{Depth: cfg.AI.WalkDepth},
		Config:     cfg,
		Log:        logger.For("schedule"),
	}, nil
}

// Load spawns every actor of enc into the world
func (w *World) Load(enc *entity.Encounter) error {
	actors, err := enc.Populate(w.Grid, w.Roster)
	if err != nil {
		return err
	}
	w.Log.WithFields(logrus.Fields{
		"encounter": enc.Name,
		"actors":    len(actors),
	}).Info("encounter loaded")
	return nil
}

// Spawn materializes an actor mid-encounter. An arrival with initiative
// joins the turn order straight away with a fresh roll, unless this round's
// initiative has not been rolled yet and will pick it up.
func (w *World) Spawn(req entity.SpawnRequest) (*entity.Actor, error) {
	a, err := w.Roster.SpawnOn(w.Grid, req)
	if err != nil {
		return nil, err
	}
	rolled := w.rolledFor == w.Tracker.Round+1
	if a.Initiative != nil && (w.Tracker.State != turn.StartOfRound || rolled) {
		w.register(a)
	}
	w.Log.WithFields(logrus.Fields{"actor": a.Name, "pos": a.Pos.String()}).Info("actor spawned")
	return a, nil
}

// Despawn removes an actor from the roster, the turn order, the board and the
// grid.
func (w *World) Despawn(id entity.ID) bool {
	a, ok := w.Roster.Get(id)
	if !ok {
		return false
	}
	if w.Grid.InBounds(a.Pos) {
		w.Grid.SetStatus(a.Pos, grid.Empty)
	}
	w.Roster.Remove(id)
	w.Tracker.Remove(id)
	w.Board.Forget(id)
	w.Log.WithField("actor", a.Name).Info("actor despawned")
	return true
}

// register rolls initiative for a and records it in the tracker
func (w *World) register(a *entity.Actor) int {
	roll := w.Dice.RollExpr(w.Initiative)
	score := roll.Total + a.Initiative.Mod
	w.Tracker.Register(a.ID, score, a.Initiative.Priority)
	w.Log.WithFields(logrus.Fields{
		"actor":    a.Name,
		"roll":     roll.Breakdown,
		"mod":      a.Initiative.Mod,
		"init":     score,
		"priority": a.Initiative.Priority,
	}).Debug("initiative rolled")
	return score
}

// ActiveActor returns the actor whose turn it is. It panics when the tracker
// is empty or names an actor the roster does not know.
func (w *World) ActiveActor() *entity.Actor {
	return w.Roster.MustGet(w.Tracker.Active().Entity)
}

// controlledByPlayer reports whether a waits for player input
func (w *World) controlledByPlayer(a *entity.Actor) bool {
	return a.IsPlayer() && !w.AutoPlay
}

// advance steps the tracker and logs phase changes
func (w *World) advance() {
	before := w.Tracker.State
	w.Tracker.Next()
	if after := w.Tracker.State; after != before {
		w.Log.WithFields(logrus.Fields{
			"round": w.Tracker.Round,
			"from":  before.String(),
			"to":    after.String(),
		}).Info("phase changed")
	}
}

// ActorView is a copy of an actor's presentation-relevant state
type ActorView struct {
	ID      entity.ID
	Name    string
	Kind    entity.Kind
	Pos     grid.Coordinate
	Initial string
	Color   [4]uint8
}

// Snapshot is a read-only copy of the world for the presentation layer
type Snapshot struct {
	Width, Height int
	Tiles         []grid.TileStatus
	Turn          turn.View
	Actors        []ActorView
	Moves         []action.Declaration
	Hover         *grid.Coordinate
}

// Snapshot copies the world's presentation-relevant state
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Width:  w.Grid.Width,
		Height: w.Grid.Height,
		Tiles:  w.Grid.Snapshot(),
		Turn:   w.Tracker.Snapshot(),
		Moves:  w.Board.Moves(),
	}
	if w.Hover != nil {
		h := *w.Hover
		s.Hover = &h
	}
	for _, a := range w.Roster.All() {
		c := a.DisplayColor()
		s.Actors = append(s.Actors, ActorView{
			ID:      a.ID,
			Name:    a.Name,
			Kind:    a.Kind,
			Pos:     a.Pos,
			Initial: a.Initial(),
			Color:   [4]uint8{c.R, c.G, c.B, c.A},
		})
	}
	return s
}

// Actor returns the view of the actor with the given id
func (s Snapshot) Actor(id entity.ID) (ActorView, bool) {
	for _, a := range s.Actors {
		if a.ID == id {
			return a, true
		}
	}
	return ActorView{}, false
}
