package schedule

import (
	"context"
	"fmt"
	"math"

	"chosenoffset.com/raidnight/internal/turn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Pipeline is an ordered list of systems run for one state
type Pipeline struct {
	Name    string
	Systems []System
}

// Run executes every system in order
func (p Pipeline) Run(ctx context.Context, w *World, f Frame) {
	for _, sys := range p.Systems {
		sys(ctx, w, f)
	}
}

// DefaultPipelines returns the stock pipeline for each tracker state
func DefaultPipelines() map[turn.State]Pipeline {
	return map[turn.State]Pipeline{
		turn.StartOfRound: {
			Name:    "start_of_round",
			Systems: []System{RefreshOccupancy, TrackCursor, ClearRoundMessages, RollInitiative, EndOfPhase},
		},
		turn.DeclarePhase: {
			Name:    "declare",
			Systems: []System{RefreshOccupancy, TrackCursor, DeclarePlayer, DeclareAI, EndOfPhase},
		},
		turn.ResolvePhase: {
			Name:    "resolve",
			Systems: []System{RefreshOccupancy, TrackCursor, ResolveActive, EndOfPhase},
		},
	}
}

// Scheduler runs one pipeline per tick
type Scheduler struct {
	world     *World
	pipelines map[turn.State]Pipeline
	tracer    trace.Tracer
}

// New creates a scheduler over w with the default pipelines
func New(w *World, tracer trace.Tracer) *Scheduler {
	return &Scheduler{
		world:     w,
		pipelines: DefaultPipelines(),
		tracer:    tracer,
	}
}

// World returns the world the scheduler drives
func (s *Scheduler) World() *World {
	return s.world
}

// SetPipeline replaces the pipeline for state
func (s *Scheduler) SetPipeline(state turn.State, p Pipeline) {
	s.pipelines[state] = p
}

// Tick runs the pipeline selected by the tracker's state at the start of the
// tick. Exactly one pipeline runs per call.
func (s *Scheduler) Tick(ctx context.Context, f Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w := s.world
	state := w.Tracker.State
	p, ok := s.pipelines[state]
	if !ok {
		panic(fmt.Sprintf("schedule: no pipeline for state %v", state))
	}

	ctx, span := s.tracer.Start(ctx, "tick."+p.Name, trace.WithAttributes(
		attribute.Int("round", w.Tracker.Round),
		attribute.Int("combatants", w.Tracker.Len()),
		attribute.Float64("delta", f.Delta),
	))
	defer span.End()

	p.Run(ctx, w, f)

	if after := w.Tracker.State; after != state {
		span.AddEvent("phase changed", trace.WithAttributes(
			attribute.String("from", state.String()),
			attribute.String("to", after.String()),
		))
	}
	return nil
}

// RunRounds ticks with a fixed delta until rounds full rounds have completed.
// It fails if the loop stalls, which happens when a player actor is waiting
// for input that a headless run cannot give.
func (s *Scheduler) RunRounds(ctx context.Context, rounds int, delta float64) (int, error) {
	if delta <= 0 {
		return 0, fmt.Errorf("delta must be positive, got %v", delta)
	}
	w := s.world
	cfg := w.Config.Turn
	perStep := int(math.Ceil(math.Max(cfg.StepDelay, cfg.DeclareDelay)/delta)) + 2
	budget := rounds * (2*w.Roster.Len() + 2) * perStep

	target := w.Tracker.Round + rounds
	ticks := 0
	for {
		if w.Tracker.Round >= target && w.Tracker.State == turn.StartOfRound {
			return ticks, nil
		}
		if ticks >= budget {
			return ticks, fmt.Errorf("stalled after %d ticks in round %d (%v)", ticks, w.Tracker.Round, w.Tracker.State)
		}
		if err := s.Tick(ctx, Frame{Delta: delta}); err != nil {
			return ticks, err
		}
		ticks++
	}
}
