package grid

// Direction is one of the four compass directions a combatant can step in.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

var (
	unitX = Coordinate{X: 1, Y: 0}
	unitY = Coordinate{X: 0, Y: 1}
)

// AllDirections returns the four directions in clockwise order starting at Up.
func AllDirections() [4]Direction {
	return [4]Direction{Up, Right, Down, Left}
}

// Delta returns the unit coordinate for the direction
func (d Direction) Delta() Coordinate {
	switch d {
	case Up:
		return unitY.Mul(-1)
	case Down:
		return unitY
	case Right:
		return unitX
	case Left:
		return unitX.Mul(-1)
	default:
		return Coordinate{}
	}
}

// Reverse returns the opposite direction
func (d Direction) Reverse() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Right:
		return Left
	case Left:
		return Right
	default:
		return d
	}
}

// String returns the lower-case direction name.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}
