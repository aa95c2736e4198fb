package schedule

import (
	"context"
	"math/rand"
	"testing"

	"chosenoffset.com/raidnight/internal/core/grid"
	"chosenoffset.com/raidnight/internal/entity"
	"chosenoffset.com/raidnight/internal/logger"
	"chosenoffset.com/raidnight/internal/simulation"
	"chosenoffset.com/raidnight/internal/telemetry"
	"chosenoffset.com/raidnight/internal/turn"
	"github.com/sirupsen/logrus"
)

// scriptedPlanner declares the same path for everyone
type scriptedPlanner []grid.Direction

func (p scriptedPlanner) Plan(*rand.Rand, grid.Coordinate, *grid.BattleGrid) []grid.Direction {
	return p
}

func newTestScheduler(t *testing.T, cfg *simulation.Config) *Scheduler {
	t.Helper()
	if cfg == nil {
		cfg = simulation.DefaultConfig()
	}
	w, err := NewWorld(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	w.Log = logrus.NewEntry(logger.Discard())
	return New(w, telemetry.NoopTracer())
}

func fixedInitiative() *simulation.Config {
	cfg := simulation.DefaultConfig()
	cfg.Turn.Initiative = "0"
	return cfg
}

func spawn(t *testing.T, w *World, name string, kind entity.Kind, pos grid.Coordinate, mod int) *entity.Actor {
	t.Helper()
	a, err := w.Roster.SpawnOn(w.Grid, entity.SpawnRequest{
		Name:       name,
		Kind:       kind,
		Pos:        pos,
		Initiative: &entity.Initiative{Mod: mod},
	})
	if err != nil {
		t.Fatalf("spawn %s: %v", name, err)
	}
	return a
}

func tick(t *testing.T, s *Scheduler, f Frame) {
	t.Helper()
	if err := s.Tick(context.Background(), f); err != nil {
		t.Fatalf("Tick: %v", err)
	}
}

func TestNewWorldRejectsBadInitiative(t *testing.T) {
	cfg := simulation.DefaultConfig()
	cfg.Turn.Initiative = "1d"
	if _, err := NewWorld(cfg, rand.New(rand.NewSource(1))); err == nil {
		t.Error("expected error for invalid initiative expression")
	}
}

func TestStartOfRoundCatchUpStopsAtBoundary(t *testing.T) {
	s := newTestScheduler(t, fixedInitiative())
	w := s.World()
	spawn(t, w, "a", entity.KindEnemy, grid.C(0, 0), 5)
	spawn(t, w, "b", entity.KindEnemy, grid.C(1, 1), 3)

	tick(t, s, Frame{Delta: 10})

	if w.Tracker.State != turn.DeclarePhase {
		t.Fatalf("expected declare phase, got %v", w.Tracker.State)
	}
	if w.Tracker.Current != 1 || w.Tracker.Round != 1 {
		t.Errorf("expected round 1 at index 1, got round %d at %d", w.Tracker.Round, w.Tracker.Current)
	}
	if w.Timer != 0 {
		t.Errorf("leftover time should be dropped at the boundary, got %v", w.Timer)
	}
}

func TestStartOfRoundWaitsForDelay(t *testing.T) {
	s := newTestScheduler(t, fixedInitiative())
	w := s.World()
	spawn(t, w, "a", entity.KindEnemy, grid.C(0, 0), 0)

	tick(t, s, Frame{Delta: 0.3})
	if w.Tracker.State != turn.StartOfRound {
		t.Fatalf("advanced before the step delay")
	}
	if w.Tracker.Len() != 1 {
		t.Errorf("initiative should be rolled during start of round, got %d combatants", w.Tracker.Len())
	}
	tick(t, s, Frame{Delta: 0.3})
	if w.Tracker.State != turn.DeclarePhase {
		t.Errorf("expected declare phase after 0.6s, got %v", w.Tracker.State)
	}
}

func TestFullRoundWithAI(t *testing.T) {
	s := newTestScheduler(t, fixedInitiative())
	w := s.World()
	w.Planner = scriptedPlanner{grid.Right}
	fast := spawn(t, w, "fast", entity.KindEnemy, grid.C(0, 0), 10)
	slow := spawn(t, w, "slow", entity.KindEnemy, grid.C(3, 3), 0)

	tick(t, s, Frame{Delta: 0.5}) // start -> declare, slow first
	if w.ActiveActor() != slow {
		t.Fatalf("lowest initiative should declare first, got %s", w.ActiveActor().Name)
	}

	tick(t, s, Frame{Delta: 0.2})
	if w.Board.Finished(slow.ID) {
		t.Fatal("AI declared before its delay")
	}
	tick(t, s, Frame{Delta: 0.3})
	if _, ok := w.Board.PendingMove(slow.ID); !ok {
		t.Fatal("expected slow to have declared")
	}
	if w.ActiveActor() != fast {
		t.Fatalf("expected fast to declare next, got %s", w.ActiveActor().Name)
	}

	tick(t, s, Frame{Delta: 0.5})
	if w.Tracker.State != turn.ResolvePhase || w.ActiveActor() != fast {
		t.Fatalf("expected fast to resolve first, got %v %s", w.Tracker.State, w.ActiveActor().Name)
	}
	if fast.Pos != grid.C(0, 0) || slow.Pos != grid.C(3, 3) {
		t.Fatal("nobody moves during the declare phase")
	}

	tick(t, s, Frame{Delta: 0.1})
	if fast.Pos != grid.C(1, 0) {
		t.Errorf("fast should have moved to (1,0), at %v", fast.Pos)
	}
	if slow.Pos != grid.C(3, 3) {
		t.Errorf("slow resolves after fast, already at %v", slow.Pos)
	}

	tick(t, s, Frame{Delta: 0.4}) // step to slow, resolve it
	if slow.Pos != grid.C(4, 3) {
		t.Errorf("slow should have moved to (4,3), at %v", slow.Pos)
	}

	tick(t, s, Frame{Delta: 0.5})
	if w.Tracker.State != turn.StartOfRound {
		t.Fatalf("expected a new round, got %v", w.Tracker.State)
	}
	if w.Grid.OccupiedCount() != 2 || w.Grid.StatusAt(grid.C(0, 0)) != grid.Empty {
		t.Errorf("occupancy out of date: %v", w.Grid.Snapshot())
	}
	if w.Board.Len() != 2 {
		t.Errorf("finished markers stay until the next round, got %d", w.Board.Len())
	}

	tick(t, s, Frame{Delta: 0.1})
	if w.Board.Len() != 0 {
		t.Errorf("round messages should be cleared, got %d", w.Board.Len())
	}
}

func TestResolveCatchUpAppliesEveryMove(t *testing.T) {
	s := newTestScheduler(t, fixedInitiative())
	w := s.World()
	w.Planner = scriptedPlanner{grid.Down}
	a := spawn(t, w, "a", entity.KindEnemy, grid.C(0, 0), 3)
	b := spawn(t, w, "b", entity.KindEnemy, grid.C(1, 0), 2)
	c := spawn(t, w, "c", entity.KindEnemy, grid.C(2, 0), 1)

	tick(t, s, Frame{Delta: 0.5})
	for w.Tracker.State == turn.DeclarePhase {
		tick(t, s, Frame{Delta: 0.5})
	}
	tick(t, s, Frame{Delta: 30})

	if w.Tracker.State != turn.StartOfRound {
		t.Fatalf("expected the round to finish, got %v", w.Tracker.State)
	}
	for _, actor := range []*entity.Actor{a, b, c} {
		if actor.Pos.Y != 1 {
			t.Errorf("%s was skipped by the catch-up, at %v", actor.Name, actor.Pos)
		}
	}
}

func TestPlayerWaitsForConfirm(t *testing.T) {
	s := newTestScheduler(t, fixedInitiative())
	w := s.World()
	hero := spawn(t, w, "hero", entity.KindPlayer, grid.C(0, 0), 0)

	tick(t, s, Frame{Delta: 0.5})
	tick(t, s, Frame{Delta: 5, Steps: []grid.Direction{grid.Right, grid.Down}})
	if w.Tracker.State != turn.DeclarePhase {
		t.Fatal("player turn must wait for confirm")
	}

	tick(t, s, Frame{Delta: 5, Undo: true})
	tick(t, s, Frame{Delta: 5, Steps: []grid.Direction{grid.Down, grid.Down, grid.Down}})
	d, ok := w.Board.PendingMove(hero.ID)
	if !ok || len(d.Move) != 3 {
		t.Fatalf("expected a three step path capped by max_steps, got %+v", d)
	}
	if d.Move[0] != grid.Right || d.Move[1] != grid.Down {
		t.Errorf("unexpected path %v", d.Move)
	}

	tick(t, s, Frame{Delta: 0.1, Confirm: true})
	if w.Tracker.State != turn.ResolvePhase {
		t.Fatalf("confirm should end the declaration, got %v", w.Tracker.State)
	}

	tick(t, s, Frame{Delta: 0.5})
	if hero.Pos != grid.C(1, 2) {
		t.Errorf("hero should be at (1,2), at %v", hero.Pos)
	}
	if w.Tracker.State != turn.StartOfRound {
		t.Errorf("expected a new round, got %v", w.Tracker.State)
	}
}

func TestSpawnMidRoundKeepsActive(t *testing.T) {
	s := newTestScheduler(t, fixedInitiative())
	w := s.World()
	spawn(t, w, "a", entity.KindEnemy, grid.C(0, 0), 5)
	b := spawn(t, w, "b", entity.KindEnemy, grid.C(1, 0), 1)
	tick(t, s, Frame{Delta: 0.5})

	if _, err := w.Spawn(entity.SpawnRequest{
		Name:       "late",
		Pos:        grid.C(4, 4),
		Initiative: &entity.Initiative{Mod: 3},
	}); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if w.Tracker.Len() != 3 {
		t.Errorf("late arrival should join the turn order, got %d", w.Tracker.Len())
	}
	if w.ActiveActor() != b {
		t.Errorf("active combatant changed to %s", w.ActiveActor().Name)
	}
}

func TestSpawnAfterRollJoinsRound(t *testing.T) {
	s := newTestScheduler(t, fixedInitiative())
	w := s.World()
	spawn(t, w, "a", entity.KindEnemy, grid.C(0, 0), 5)

	tick(t, s, Frame{Delta: 0.1})
	if w.Tracker.State != turn.StartOfRound || w.Tracker.Len() != 1 {
		t.Fatalf("expected a rolled start of round, got %v with %d combatants", w.Tracker.State, w.Tracker.Len())
	}

	late, err := w.Spawn(entity.SpawnRequest{
		Name:       "late",
		Pos:        grid.C(4, 4),
		Initiative: &entity.Initiative{Mod: 3},
	})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if w.Tracker.Len() != 2 {
		t.Fatalf("late arrival should be registered at once, got %d combatants", w.Tracker.Len())
	}

	tick(t, s, Frame{Delta: 0.5})
	if w.Tracker.State != turn.DeclarePhase || w.Tracker.Round != 1 {
		t.Fatalf("expected round 1 declare, got round %d %v", w.Tracker.Round, w.Tracker.State)
	}
	if w.Tracker.Len() != 2 {
		t.Errorf("Expected 2 combatants in round 1, got %d", w.Tracker.Len())
	}
	if w.ActiveActor() != late {
		t.Errorf("lower initiative should declare first, got %s", w.ActiveActor().Name)
	}
}

func TestSpawnBeforeRollWaitsForRoll(t *testing.T) {
	s := newTestScheduler(t, fixedInitiative())
	w := s.World()
	if _, err := w.Spawn(entity.SpawnRequest{
		Name:       "early",
		Pos:        grid.C(1, 1),
		Initiative: &entity.Initiative{Mod: 1},
	}); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if w.Tracker.Len() != 0 {
		t.Errorf("spawn before the roll should wait for it, got %d combatants", w.Tracker.Len())
	}

	tick(t, s, Frame{Delta: 0.1})
	if w.Tracker.Len() != 1 {
		t.Errorf("Expected 1 combatant after the roll, got %d", w.Tracker.Len())
	}
}

func TestSetPipelineReplacesSystems(t *testing.T) {
	s := newTestScheduler(t, fixedInitiative())
	w := s.World()
	spawn(t, w, "a", entity.KindEnemy, grid.C(0, 0), 0)

	var ran []turn.State
	record := func(_ context.Context, w *World, _ Frame) {
		ran = append(ran, w.Tracker.State)
	}
	start := DefaultPipelines()[turn.StartOfRound]
	s.SetPipeline(turn.StartOfRound, Pipeline{
		Name:    start.Name,
		Systems: append([]System{record}, start.Systems...),
	})

	tick(t, s, Frame{Delta: 0.5})
	tick(t, s, Frame{Delta: 0.1})

	if len(ran) != 1 || ran[0] != turn.StartOfRound {
		t.Errorf("Expected the extra system to run once at start of round, got %v", ran)
	}
	if w.Tracker.State != turn.DeclarePhase {
		t.Errorf("the stock systems should still advance the round, got %v", w.Tracker.State)
	}
}

func TestDespawnActive(t *testing.T) {
	s := newTestScheduler(t, fixedInitiative())
	w := s.World()
	a := spawn(t, w, "a", entity.KindEnemy, grid.C(0, 0), 5)
	b := spawn(t, w, "b", entity.KindEnemy, grid.C(1, 0), 1)
	tick(t, s, Frame{Delta: 0.5})

	if !w.Despawn(b.ID) {
		t.Fatal("expected despawn to succeed")
	}
	if w.ActiveActor() != a {
		t.Errorf("expected a to become active, got %s", w.ActiveActor().Name)
	}
	if w.Grid.StatusAt(grid.C(1, 0)) != grid.Empty {
		t.Error("despawned actor's cell should be empty")
	}
	if w.Despawn(b.ID) {
		t.Error("second despawn should report false")
	}

	w.Despawn(a.ID)
	tick(t, s, Frame{Delta: 1})
	if w.Tracker.State != turn.StartOfRound {
		t.Errorf("an empty encounter idles at start of round, got %v", w.Tracker.State)
	}
}

func TestTrackCursor(t *testing.T) {
	s := newTestScheduler(t, nil)
	w := s.World()

	tick(t, s, Frame{Cursor: w.Grid.CellTopLeft(2, 3).Add(grid.Point{X: 1, Y: 1})})
	if w.Hover == nil || *w.Hover != grid.C(2, 3) {
		t.Errorf("expected hover on (2,3), got %v", w.Hover)
	}
	if snap := w.Snapshot(); snap.Hover == nil || *snap.Hover != grid.C(2, 3) {
		t.Error("snapshot should carry the hovered cell")
	}

	tick(t, s, Frame{Cursor: grid.Point{}})
	if w.Hover != nil {
		t.Errorf("expected no hover outside the grid, got %v", *w.Hover)
	}
}

func TestRunRoundsHeadless(t *testing.T) {
	s := newTestScheduler(t, nil)
	w := s.World()
	w.AutoPlay = true
	if err := w.Load(entity.DefaultEncounter()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := s.RunRounds(context.Background(), 20, 1.0/60); err != nil {
		t.Fatalf("RunRounds: %v", err)
	}
	if w.Tracker.Round != 20 {
		t.Errorf("expected 20 rounds, got %d", w.Tracker.Round)
	}

	seen := map[grid.Coordinate]bool{}
	for _, a := range w.Roster.All() {
		if seen[a.Pos] {
			t.Fatalf("two actors share %v", a.Pos)
		}
		seen[a.Pos] = true
		if w.Grid.StatusAt(a.Pos) != grid.Occupied {
			t.Errorf("%s at %v is not marked occupied", a.Name, a.Pos)
		}
	}
	if w.Grid.OccupiedCount() != w.Roster.Len() {
		t.Errorf("%d occupied cells for %d actors", w.Grid.OccupiedCount(), w.Roster.Len())
	}
}

func TestRunRoundsStallsOnPlayer(t *testing.T) {
	s := newTestScheduler(t, nil)
	if err := s.World().Load(entity.DefaultEncounter()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RunRounds(context.Background(), 1, 0.1); err == nil {
		t.Error("expected a stall waiting on the player")
	}
}

func TestTickCancelled(t *testing.T) {
	s := newTestScheduler(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Tick(ctx, Frame{Delta: 1}); err == nil {
		t.Error("expected context error")
	}
}
