package entity

import (
	"fmt"
	"image/color"

	"chosenoffset.com/raidnight/internal/core/grid"
)

// SpawnRequest asks for an actor to be materialized. Card loading produces
// these; the effect text travels with the actor untouched.
type SpawnRequest struct {
	Name       string
	Kind       Kind
	Pos        grid.Coordinate
	Initiative *Initiative
	Color      color.RGBA

	Cost    *int
	Effects string
}

// Spawn validates req and adds the resulting actor to the roster. The grid is
// not touched; use SpawnOn to also claim the actor's cell.
func (r *Roster) Spawn(req SpawnRequest) (*Actor, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("spawn request has no name")
	}
	kind := req.Kind
	if kind == "" {
		kind = KindEnemy
	}
	if kind != KindPlayer && kind != KindEnemy {
		return nil, fmt.Errorf("spawn %s: unknown kind %q", req.Name, kind)
	}

	a := &Actor{
		ID:      NewID(),
		Name:    req.Name,
		Kind:    kind,
		Pos:     req.Pos,
		Status:  grid.Occupied,
		Color:   req.Color,
		Effects: req.Effects,
	}
	if req.Initiative != nil {
		ini := *req.Initiative
		a.Initiative = &ini
	}
	if req.Cost != nil {
		cost := *req.Cost
		a.Cost = &cost
	}
	r.Add(a)
	return a, nil
}

// SpawnOn spawns req and places it on g in one step. Nothing is added to the
// roster when the placement fails.
func (r *Roster) SpawnOn(g *grid.BattleGrid, req SpawnRequest) (*Actor, error) {
	if !g.InBounds(req.Pos) {
		return nil, fmt.Errorf("spawn %s: %v is outside the %dx%d grid", req.Name, req.Pos, g.Width, g.Height)
	}
	if !g.IsFree(req.Pos) {
		return nil, fmt.Errorf("spawn %s: %v is already occupied", req.Name, req.Pos)
	}
	a, err := r.Spawn(req)
	if err != nil {
		return nil, err
	}
	g.SetStatus(a.Pos, a.Status)
	return a, nil
}
