package grid

import "fmt"

// Direction is one of the eight compass moves available to the agent.
type Direction int

const (
	North Direction = iota
	South
	West
	East
	NorthEast
	SouthEast
	NorthWest
	SouthWest
)

// NumDirections is the number of compass moves.
const NumDirections = 8

var (
	// displacement per direction, indexed by ordinal. North is +Z, East is +X.
	directionVectors = [NumDirections]Position{
		North:     {X: 0, Z: 1},
		South:     {X: 0, Z: -1},
		West:      {X: -1, Z: 0},
		East:      {X: 1, Z: 0},
		NorthEast: {X: 1, Z: 1},
		SouthEast: {X: 1, Z: -1},
		NorthWest: {X: -1, Z: 1},
		SouthWest: {X: -1, Z: -1},
	}

	// presentation rotation in degrees, indexed by ordinal.
	directionRotations = [NumDirections]float64{
		North:     0,
		South:     180,
		West:      270,
		East:      90,
		NorthEast: 45,
		SouthEast: 135,
		NorthWest: 315,
		SouthWest: 225,
	}

	directionNames = [NumDirections]string{
		North:     "North",
		South:     "South",
		West:      "West",
		East:      "East",
		NorthEast: "NorthEast",
		SouthEast: "SouthEast",
		NorthWest: "NorthWest",
		SouthWest: "SouthWest",
	}
)

// Directions lists every direction in ordinal order.
func Directions() [NumDirections]Direction {
	return [NumDirections]Direction{North, South, West, East, NorthEast, SouthEast, NorthWest, SouthWest}
}

// Vector returns the unit (or diagonal) displacement of the direction.
func (d Direction) Vector() Position {
	if !d.Valid() {
		return Position{}
	}
	return directionVectors[d]
}

// Rotation returns the presentation angle of the direction in degrees.
func (d Direction) Rotation() float64 {
	if !d.Valid() {
		return 0
	}
	return directionRotations[d]
}

// IsDiagonal reports whether the direction moves along both axes.
func (d Direction) IsDiagonal() bool {
	v := d.Vector()
	return v.X != 0 && v.Z != 0
}

// Valid reports whether d is one of the eight compass directions.
func (d Direction) Valid() bool {
	return d >= North && d <= SouthWest
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection returns the direction with the given name.
func ParseDirection(name string) (Direction, error) {
	for i, n := range directionNames {
		if n == name {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", name)
}
