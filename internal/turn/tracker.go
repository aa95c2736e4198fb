// Package turn provides the initiative-ordered turn tracker.
//
// A round runs in three states. StartOfRound collects initiative. DeclarePhase
// walks the combatants from the lowest initiative up so faster combatants see
// slower ones commit first. ResolvePhase walks them back from the highest
// initiative down and applies what was declared.
package turn

import (
	"fmt"
	"sort"

	"chosenoffset.com/raidnight/internal/entity"
)

// State is the phase the tracker is in
type State int

const (
	StartOfRound State = iota
	DeclarePhase
	ResolvePhase
)

func (s State) String() string {
	switch s {
	case StartOfRound:
		return "start_of_round"
	case DeclarePhase:
		return "declare"
	case ResolvePhase:
		return "resolve"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Combatant is one participant's initiative for the current round
type Combatant struct {
	Entity   entity.ID
	Init     int
	Priority int
}

// before reports whether c acts before o: higher Init first, then higher Priority.
func (c Combatant) before(o Combatant) bool {
	if c.Init != o.Init {
		return c.Init > o.Init
	}
	return c.Priority > o.Priority
}

// Tracker is the turn-order state machine. The zero value is not usable; call
// NewTracker.
type Tracker struct {
	State      State
	Current    int
	Combatants []Combatant

	// Round counts completed StartOfRound transitions, starting at 0.
	Round int
}

// NewTracker returns a tracker at the start of the first round
func NewTracker() *Tracker {
	return &Tracker{State: StartOfRound}
}

func (t *Tracker) order() {
	sort.SliceStable(t.Combatants, func(i, j int) bool {
		return t.Combatants[i].before(t.Combatants[j])
	})
}

// Next advances the state machine by one step.
//
//	StartOfRound  sort, point at the last combatant, enter DeclarePhase
//	DeclarePhase  move toward index 0, then enter ResolvePhase at index 0
//	ResolvePhase  move toward the last index, then return to StartOfRound
//
// Advancing with no combatants is a programming error and panics.
func (t *Tracker) Next() {
	if len(t.Combatants) == 0 {
		panic(fmt.Sprintf("turn: advance from %v with no combatants", t.State))
	}

	switch t.State {
	case StartOfRound:
		t.order()
		t.Current = len(t.Combatants) - 1
		t.State = DeclarePhase
		t.Round++
	case DeclarePhase:
		if t.Current > 0 {
			t.Current--
		} else {
			t.State = ResolvePhase
			t.Current = 0
		}
	case ResolvePhase:
		if t.Current < len(t.Combatants)-1 {
			t.Current++
		} else {
			t.State = StartOfRound
		}
	}
}

// Register adds a combatant or overwrites the initiative of an existing one.
// Outside StartOfRound the list is re-sorted straight away; the active
// combatant stays active even if its index changes.
func (t *Tracker) Register(id entity.ID, score, priority int) {
	var active entity.ID
	hasActive := len(t.Combatants) > 0
	if hasActive {
		active = t.Combatants[t.Current].Entity
	}

	if i := t.indexOf(id); i >= 0 {
		t.Combatants[i].Init = score
		t.Combatants[i].Priority = priority
	} else {
		t.Combatants = append(t.Combatants, Combatant{Entity: id, Init: score, Priority: priority})
	}

	if t.State == StartOfRound {
		return
	}
	t.order()
	if hasActive {
		t.Current = t.indexOf(active)
	}
}

// Remove drops a combatant. When the active combatant is removed the cursor
// stays at the same index, clamped to the shrunken list. Removing the last
// combatant sends the tracker back to StartOfRound.
func (t *Tracker) Remove(id entity.ID) bool {
	i := t.indexOf(id)
	if i < 0 {
		return false
	}
	t.Combatants = append(t.Combatants[:i], t.Combatants[i+1:]...)

	switch {
	case len(t.Combatants) == 0:
		t.Current = 0
		t.State = StartOfRound
	case i < t.Current:
		t.Current--
	case t.Current >= len(t.Combatants):
		t.Current = len(t.Combatants) - 1
	}
	return true
}

// Active returns the combatant whose turn it is. Calling it with no
// combatants is a programming error and panics.
func (t *Tracker) Active() Combatant {
	if len(t.Combatants) == 0 {
		panic(fmt.Sprintf("turn: no active combatant in %v, combatant list is empty", t.State))
	}
	return t.Combatants[t.Current]
}

// Len returns the number of combatants
func (t *Tracker) Len() int {
	return len(t.Combatants)
}

func (t *Tracker) indexOf(id entity.ID) int {
	for i, c := range t.Combatants {
		if c.Entity == id {
			return i
		}
	}
	return -1
}

// View is a read-only copy of the tracker for the presentation layer
type View struct {
	State      State
	Round      int
	Current    int
	Combatants []Combatant
}

// Snapshot copies the tracker's state
func (t *Tracker) Snapshot() View {
	return View{
		State:      t.State,
		Round:      t.Round,
		Current:    t.Current,
		Combatants: append([]Combatant(nil), t.Combatants...),
	}
}

// IsActive reports whether the combatant at index i is the one acting.
// Nobody is active at the start of a round.
func (v View) IsActive(i int) bool {
	return v.State != StartOfRound && i == v.Current
}
