// Package grid provides the coordinate model and the battle grid that combat
// movement is resolved against.
package grid

import "fmt"

// Coordinate is an integer cell position. X grows to the right, Y grows downward.
// A Coordinate may be out of bounds while a path is being computed; check it with
// BattleGrid.InBounds before using it as an index.
type Coordinate struct {
	X, Y int
}

// C is shorthand for Coordinate{X: x, Y: y}.
func C(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

// Add returns c + o
func (c Coordinate) Add(o Coordinate) Coordinate {
	return Coordinate{X: c.X + o.X, Y: c.Y + o.Y}
}

// Sub returns c - o
func (c Coordinate) Sub(o Coordinate) Coordinate {
	return Coordinate{X: c.X - o.X, Y: c.Y - o.Y}
}

// Mul scales both components by k
func (c Coordinate) Mul(k int) Coordinate {
	return Coordinate{X: c.X * k, Y: c.Y * k}
}

// Step returns the neighbouring coordinate in direction d.
func (c Coordinate) Step(d Direction) Coordinate {
	return c.Add(d.Delta())
}

// Walk folds every direction onto c and returns the unconstrained end point.
func (c Coordinate) Walk(dirs []Direction) Coordinate {
	for _, d := range dirs {
		c = c.Step(d)
	}
	return c
}

// String returns "(x,y)".
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Point is a position in screen space.
type Point struct {
	X, Y float64
}

// Add returns p + o
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns p - o
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}
