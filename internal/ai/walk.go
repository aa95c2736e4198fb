// Package ai generates declarations for combatants that are not driven by a
// player.
package ai

import (
	"math/rand"

	"chosenoffset.com/raidnight/internal/core/grid"
)

// Planner decides the path a combatant declares for the round
type Planner interface {
	Plan(rng *rand.Rand, start grid.Coordinate, g *grid.BattleGrid) []grid.Direction
}

// RandomWalker plans a random walk of up to Depth steps
type RandomWalker struct {
	Depth int
}

// Plan implements Planner
func (w RandomWalker) Plan(rng *rand.Rand, start grid.Coordinate, g *grid.BattleGrid) []grid.Direction {
	return RandomWalk(rng, start, g, w.Depth)
}

// RandomWalk returns a path of at most maxDepth steps from start. Each step is
// drawn uniformly from the directions that neither reverse the previous step
// nor leave the grid. The walk ends early when no direction qualifies.
//
// Occupancy is ignored; movement resolution truncates the path if it runs
// into another combatant.
func RandomWalk(rng *rand.Rand, start grid.Coordinate, g *grid.BattleGrid, maxDepth int) []grid.Direction {
	path := make([]grid.Direction, 0, maxDepth)
	pos := start

	var candidates [4]grid.Direction
	for len(path) < maxDepth {
		n := 0
		for _, d := range grid.AllDirections() {
			if len(path) > 0 && d == path[len(path)-1].Reverse() {
				continue
			}
			if !g.InBounds(pos.Step(d)) {
				continue
			}
			candidates[n] = d
			n++
		}
		if n == 0 {
			break
		}

		d := candidates[rng.Intn(n)]
		path = append(path, d)
		pos = pos.Step(d)
	}
	return path
}
