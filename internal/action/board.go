// Package action holds the declarations combatants make during the declare
// phase and the board they wait on until resolution.
package action

import (
	"fmt"

	"chosenoffset.com/raidnight/internal/core/grid"
	"chosenoffset.com/raidnight/internal/entity"
	"github.com/zyedidia/generic/mapset"
)

// Kind tags what a declaration carries
type Kind int

const (
	KindMove     Kind = iota // Move holds the planned path
	KindFinished             // The source has nothing more to declare this round
)

func (k Kind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindFinished:
		return "finished"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Declaration is one message posted during the declare phase
type Declaration struct {
	Kind   Kind
	Source entity.ID
	Round  int
	Move   []grid.Direction // KindMove only, may be empty
}

// Move builds a move declaration
func Move(source entity.ID, round int, dirs []grid.Direction) Declaration {
	return Declaration{Kind: KindMove, Source: source, Round: round, Move: append([]grid.Direction(nil), dirs...)}
}

// Finished builds a finished marker
func Finished(source entity.ID, round int) Declaration {
	return Declaration{Kind: KindFinished, Source: source, Round: round}
}

// Board stores the current round's declarations. A source has at most one
// pending move; declaring again replaces it.
type Board struct {
	moves    []Declaration
	finished mapset.Set[entity.ID]
}

// NewBoard creates an empty board
func NewBoard() *Board {
	return &Board{finished: mapset.New[entity.ID]()}
}

// Declare posts d
func (b *Board) Declare(d Declaration) {
	switch d.Kind {
	case KindFinished:
		b.finished.Put(d.Source)
	case KindMove:
		if i := b.indexOf(d.Source); i >= 0 {
			b.moves[i] = d
			return
		}
		b.moves = append(b.moves, d)
	default:
		panic(fmt.Sprintf("action: unknown declaration kind %v", d.Kind))
	}
}

// Finished reports whether id has posted a finished marker this round
func (b *Board) Finished(id entity.ID) bool {
	return b.finished.Has(id)
}

// PendingMove returns id's move without consuming it
func (b *Board) PendingMove(id entity.ID) (Declaration, bool) {
	if i := b.indexOf(id); i >= 0 {
		return b.moves[i], true
	}
	return Declaration{}, false
}

// Take removes and returns id's move
func (b *Board) Take(id entity.ID) (Declaration, bool) {
	i := b.indexOf(id)
	if i < 0 {
		return Declaration{}, false
	}
	d := b.moves[i]
	b.moves = append(b.moves[:i], b.moves[i+1:]...)
	return d, true
}

// Moves returns the pending moves in declaration order
func (b *Board) Moves() []Declaration {
	return append([]Declaration(nil), b.moves...)
}

// Len returns the number of pending moves and finished markers
func (b *Board) Len() int {
	return len(b.moves) + b.finished.Size()
}

// Forget drops everything id has declared, used when an actor leaves mid-round
func (b *Board) Forget(id entity.ID) {
	b.Take(id)
	b.finished.Remove(id)
}

// Clear discards every declaration and returns how many were dropped
func (b *Board) Clear() int {
	n := b.Len()
	b.moves = nil
	b.finished = mapset.New[entity.ID]()
	return n
}

func (b *Board) indexOf(id entity.ID) int {
	for i, d := range b.moves {
		if d.Source == id {
			return i
		}
	}
	return -1
}
