package grid

import "math"

// Cell represents a single square of the board.
type Cell struct {
	X       int  // X is the column of the cell.
	Z       int  // Z is the row of the cell.
	Blocked bool // Blocked indicates an obstacle occupies the cell.
	Visited int  // Visited is the flood-fill label of the last fill, -1 when unreached.
}

// Position is a plain board coordinate.
type Position struct {
	X int
	Z int
}

// Add returns the position displaced by the given direction.
func (p Position) Add(d Direction) Position {
	v := d.Vector()
	return Position{X: p.X + v.X, Z: p.Z + v.Z}
}

// Distance returns the Euclidean distance between two positions.
func (p Position) Distance(o Position) float64 {
	return math.Hypot(float64(p.X-o.X), float64(p.Z-o.Z))
}
