// Package movement commits declared paths to the battle grid.
//
// A path is truncated rather than searched: the mover walks its declared steps
// in order and stops one step short of the first cell that is off the grid or
// occupied. Everything after that step is dropped.
package movement

import (
	"chosenoffset.com/raidnight/internal/action"
	"chosenoffset.com/raidnight/internal/core/grid"
	"chosenoffset.com/raidnight/internal/entity"
	"chosenoffset.com/raidnight/internal/logger"
	"github.com/sirupsen/logrus"
)

// Result describes what resolving a path did
type Result struct {
	From     grid.Coordinate
	Intended grid.Coordinate // End of the full path, possibly off the grid
	To       grid.Coordinate
	Steps    int // Steps of the path that were kept
}

// Moved reports whether the mover changed cells
func (r Result) Moved() bool {
	return r.To != r.From
}

// Truncated returns how many trailing steps were dropped
func (r Result) Truncated(pathLen int) int {
	return pathLen - r.Steps
}

// Resolve moves a mover standing on start along dirs. status is what the
// mover leaves on its destination cell. start must be in bounds.
//
// The mover's own cell never blocks it, so a path that loops back to start is
// a valid "stay put". The grid is only written when the mover actually
// changes cells.
func Resolve(g *grid.BattleGrid, start grid.Coordinate, status grid.TileStatus, dirs []grid.Direction) Result {
	res := Result{From: start, Intended: start.Walk(dirs), To: start}

	pos := start
	for i, d := range dirs {
		pos = pos.Step(d)
		if pos != start && !g.IsFree(pos) {
			break
		}
		res.To = pos
		res.Steps = i + 1
	}

	if res.Moved() {
		g.SetStatus(start, grid.Empty)
		g.SetStatus(res.To, status)
	}
	return res
}

// ResolveDeclaration consumes the pending move of actor id, if any, and
// applies it. The declaration is removed whether or not the actor moved.
func ResolveDeclaration(g *grid.BattleGrid, roster *entity.Roster, board *action.Board, id entity.ID) (Result, bool) {
	decl, ok := board.Take(id)
	if !ok {
		return Result{}, false
	}

	actor := roster.MustGet(id)
	res := Resolve(g, actor.Pos, actor.Status, decl.Move)
	actor.Pos = res.To

	logger.For("movement").WithFields(logrus.Fields{
		"actor":     actor.Name,
		"round":     decl.Round,
		"from":      res.From.String(),
		"intended":  res.Intended.String(),
		"to":        res.To.String(),
		"truncated": res.Truncated(len(decl.Move)),
	}).Debug("resolved move")

	return res, true
}
