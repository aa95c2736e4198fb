package grid

import (
	"fmt"
	"math"
)

// TileStatus records whether a cell hosts a combatant.
type TileStatus int

const (
	Empty TileStatus = iota
	Occupied
)

// String returns the status name
func (s TileStatus) String() string {
	switch s {
	case Empty:
		return "empty"
	case Occupied:
		return "occupied"
	default:
		return "unknown"
	}
}

// BattleGrid is a fixed-size rectangular occupancy map. It also knows how its
// cells are laid out on screen so the presentation layer and cursor input can
// translate between cells and pixels.
//
// Every in-bounds coordinate has exactly one status, stored at x + y*Width.
// Out-of-bounds coordinates have no entry.
type BattleGrid struct {
	Width     int
	Height    int
	Origin    Point   // Screen position of the top-left cell
	CellSize  float64 // Side length of a cell in pixels
	LineWidth float64 // Border gap between neighbouring cells

	tiles []TileStatus
}

// New creates a grid with every cell Empty.
func New(width, height int, origin Point, cellSize, lineWidth float64) *BattleGrid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("grid: invalid dimensions %dx%d", width, height))
	}
	return &BattleGrid{
		Width:     width,
		Height:    height,
		Origin:    origin,
		CellSize:  cellSize,
		LineWidth: lineWidth,
		tiles:     make([]TileStatus, width*height),
	}
}

func (g *BattleGrid) pitch() float64 {
	return g.CellSize + g.LineWidth
}

// CellTopLeft returns the screen position of the top-left pixel of cell (x, y).
func (g *BattleGrid) CellTopLeft(x, y int) Point {
	return Point{
		X: g.Origin.X + float64(x)*g.pitch(),
		Y: g.Origin.Y + float64(y)*g.pitch(),
	}
}

// CellCenter returns the screen position of the centre of cell (x, y).
func (g *BattleGrid) CellCenter(x, y int) Point {
	tl := g.CellTopLeft(x, y)
	return Point{X: tl.X + g.CellSize/2, Y: tl.Y + g.CellSize/2}
}

// CellAtScreenPoint maps a screen position back to the cell under it.
// Points outside the grid, and points in the border gap between cells, belong
// to no cell.
func (g *BattleGrid) CellAtScreenPoint(p Point) (Coordinate, bool) {
	offset := p.Sub(g.Origin)
	if offset.X < 0 || offset.Y < 0 {
		return Coordinate{}, false
	}

	col := math.Floor(offset.X / g.pitch())
	row := math.Floor(offset.Y / g.pitch())
	c := Coordinate{X: int(col), Y: int(row)}
	if !g.InBounds(c) {
		return Coordinate{}, false
	}

	// Border pixels
	if offset.X-col*g.pitch() >= g.CellSize || offset.Y-row*g.pitch() >= g.CellSize {
		return Coordinate{}, false
	}
	return c, true
}

// Bounds returns the top-left and bottom-right screen corners of the grid.
func (g *BattleGrid) Bounds() (Point, Point) {
	br := g.CellTopLeft(g.Width-1, g.Height-1)
	return g.Origin, Point{X: br.X + g.CellSize, Y: br.Y + g.CellSize}
}

// InBounds reports whether 0 <= x < Width and 0 <= y < Height.
func (g *BattleGrid) InBounds(c Coordinate) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

func (g *BattleGrid) index(c Coordinate) int {
	if !g.InBounds(c) {
		panic(fmt.Sprintf("grid: coordinate %v outside %dx%d grid", c, g.Width, g.Height))
	}
	return c.X + c.Y*g.Width
}

// StatusAt returns the occupancy of c. c must be in bounds; indexing outside the
// grid is a programming error and panics.
func (g *BattleGrid) StatusAt(c Coordinate) TileStatus {
	return g.tiles[g.index(c)]
}

// SetStatus sets the occupancy of c. Same precondition as StatusAt.
func (g *BattleGrid) SetStatus(c Coordinate, s TileStatus) {
	g.tiles[g.index(c)] = s
}

// IsFree reports whether c is in bounds and Empty.
func (g *BattleGrid) IsFree(c Coordinate) bool {
	return g.InBounds(c) && g.StatusAt(c) == Empty
}

// Reset marks every cell Empty.
func (g *BattleGrid) Reset() {
	for i := range g.tiles {
		g.tiles[i] = Empty
	}
}

// Snapshot returns a copy of the occupancy map in x + y*Width order.
func (g *BattleGrid) Snapshot() []TileStatus {
	out := make([]TileStatus, len(g.tiles))
	copy(out, g.tiles)
	return out
}

// OccupiedCount returns the number of Occupied cells.
func (g *BattleGrid) OccupiedCount() int {
	n := 0
	for _, s := range g.tiles {
		if s == Occupied {
			n++
		}
	}
	return n
}
