/*
Package grid provides the square board the escape game is played on.

It defines the `Grid` structure, composed of `Cell` values that record whether an obstacle
occupies the cell and the transient flood-fill label used by the pathfinder.

The package includes obstacle placement, bounds checking, the eight-direction flood fill,
path length and path reconstruction between two cells, border endpoint enumeration and an
ASCII rendering of the board.
*/
package grid

import (
	"errors"
	"fmt"
	"strings"
)

const (
	minSize = 3
	maxSize = 25
)

var (
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	ErrInvalidSize = errors.New("invalid board size")
)

// Grid is an N×N board indexed by [x][z].
type Grid struct {
	size         int       // Width and height of the board.
	cells        [][]Cell  // Cells of the board, indexed by [x][z].
	lastObstacle *Position // Most recent obstacle, nil until one is placed.
}

// New creates an empty board of the given size.
func New(size int) (*Grid, error) {
	if size < minSize || size > maxSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	cells := make([][]Cell, size)
	for x := range cells {
		cells[x] = make([]Cell, size)
	}

	g := &Grid{size: size, cells: cells}
	g.Reset()
	return g, nil
}

// Size returns the width (and height) of the board.
func (g *Grid) Size() int {
	return g.size
}

// Reset clears every obstacle and flood-fill label.
func (g *Grid) Reset() {
	for x := range g.cells {
		for z := range g.cells[x] {
			g.cells[x][z] = Cell{X: x, Z: z, Blocked: false, Visited: -1}
		}
	}
	g.lastObstacle = nil
}

// InBound reports whether (x, z) lies on the board.
func (g *Grid) InBound(x, z int) bool {
	return x >= 0 && x < g.size && z >= 0 && z < g.size
}

// Cell returns a copy of the cell at (x, z).
func (g *Grid) Cell(x, z int) (Cell, error) {
	if !g.InBound(x, z) {
		return Cell{}, fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, z)
	}
	return g.cells[x][z], nil
}

// IsBlocked reports whether (x, z) holds an obstacle. Cells off the board read as blocked.
func (g *Grid) IsBlocked(x, z int) bool {
	if !g.InBound(x, z) {
		return true
	}
	return g.cells[x][z].Blocked
}

// AddObstacle blocks the cell at (x, z). Blocking an already blocked cell is a no-op.
func (g *Grid) AddObstacle(x, z int) error {
	if !g.InBound(x, z) {
		return fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, z)
	}
	if g.cells[x][z].Blocked {
		return nil
	}

	g.cells[x][z].Blocked = true
	g.lastObstacle = &Position{X: x, Z: z}
	return nil
}

// LastObstacle returns the most recently placed obstacle.
func (g *Grid) LastObstacle() (Position, bool) {
	if g.lastObstacle == nil {
		return Position{}, false
	}
	return *g.lastObstacle, true
}

// Center returns the middle cell of the board.
func (g *Grid) Center() Position {
	return Position{X: g.size / 2, Z: g.size / 2}
}

// IsBorder reports whether p lies on the outer ring of the board.
func (g *Grid) IsBorder(p Position) bool {
	if !g.InBound(p.X, p.Z) {
		return false
	}
	last := g.size - 1
	return p.X == 0 || p.Z == 0 || p.X == last || p.Z == last
}

// BlockedCells lists every obstacle in [x][z] order.
func (g *Grid) BlockedCells() []Position {
	var blocked []Position
	for x := range g.cells {
		for z := range g.cells[x] {
			if g.cells[x][z].Blocked {
				blocked = append(blocked, Position{X: x, Z: z})
			}
		}
	}
	return blocked
}

// String renders the board with north at the top.
func (g *Grid) String() string {
	return g.Render(nil)
}

// Render draws the board and, when agent is non-nil, marks the agent cell.
func (g *Grid) Render(agent *Position) string {
	var b strings.Builder

	b.WriteString("+" + strings.Repeat("---+", g.size) + "\n")
	for z := g.size - 1; z >= 0; z-- {
		b.WriteString("|")
		for x := 0; x < g.size; x++ {
			switch {
			case agent != nil && agent.X == x && agent.Z == z:
				b.WriteString(" A |")
			case g.cells[x][z].Blocked:
				b.WriteString(" # |")
			default:
				b.WriteString("   |")
			}
		}
		b.WriteString("\n+" + strings.Repeat("---+", g.size) + "\n")
	}

	return b.String()
}
