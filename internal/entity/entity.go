// Package entity provides the combatants that stand on the battle grid and the
// roster that owns them.
package entity

import (
	"fmt"
	"image/color"

	"chosenoffset.com/raidnight/internal/core/grid"
	"github.com/google/uuid"
)

// ID uniquely identifies an actor for the lifetime of a process
type ID string

// NewID returns a fresh random ID. Replaced in tests that need stable IDs.
var NewID = func() ID {
	return ID(uuid.NewString())
}

// Kind identifies who controls an actor
type Kind string

const (
	KindPlayer Kind = "player"
	KindEnemy  Kind = "enemy"
)

// Initiative is the turn-order component. Actors without one never join the
// turn order.
type Initiative struct {
	Mod      int `yaml:"mod"`      // Added to the initiative roll
	Priority int `yaml:"priority"` // Tie-breaker, higher acts first
}

// Actor is a combatant or any other thing placed on the grid
type Actor struct {
	ID   ID
	Name string
	Kind Kind

	// Position on the grid and the status it imposes on that cell
	Pos    grid.Coordinate
	Status grid.TileStatus

	Initiative *Initiative

	// Visual
	Color color.RGBA

	// Card data carried through from a spawn request. Effects are kept as
	// raw text and never interpreted here.
	Cost    *int
	Effects string
}

// IsPlayer reports whether the actor waits for player input when declaring
func (a *Actor) IsPlayer() bool {
	return a.Kind == KindPlayer
}

// Initial returns the first letter of the name, or "?" for unnamed actors.
func (a *Actor) Initial() string {
	for _, r := range a.Name {
		return string(r)
	}
	return "?"
}

func (a *Actor) String() string {
	return fmt.Sprintf("%s@%v", a.Name, a.Pos)
}

// Roster owns every actor in the encounter. Iteration order is insertion order.
type Roster struct {
	order []ID
	byID  map[ID]*Actor
}

// NewRoster creates an empty roster
func NewRoster() *Roster {
	return &Roster{byID: make(map[ID]*Actor)}
}

// Add registers an actor. Adding a second actor with the same ID replaces the
// first in place.
func (r *Roster) Add(a *Actor) {
	if _, ok := r.byID[a.ID]; !ok {
		r.order = append(r.order, a.ID)
	}
	r.byID[a.ID] = a
}

// Get looks up an actor by ID
func (r *Roster) Get(id ID) (*Actor, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// MustGet looks up an actor that is known to exist. A missing actor means the
// turn order and the roster disagree, which is a programming error.
func (r *Roster) MustGet(id ID) *Actor {
	a, ok := r.byID[id]
	if !ok {
		panic(fmt.Sprintf("entity: no actor with id %s", id))
	}
	return a
}

// Remove drops an actor. It reports whether the actor was present.
func (r *Roster) Remove(id ID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// All returns the actors in insertion order
func (r *Roster) All() []*Actor {
	out := make([]*Actor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of actors
func (r *Roster) Len() int {
	return len(r.order)
}

// FindByName returns the first actor with the given name
func (r *Roster) FindByName(name string) (*Actor, bool) {
	for _, id := range r.order {
		if a := r.byID[id]; a.Name == name {
			return a, true
		}
	}
	return nil, false
}
