// Package sensor reads the board relative to the agent: which quadrants are most
// obstructed, which moves are legal, and how much an obstacle weighs.
package sensor

import (
	"errors"
	"fmt"
	"math"

	"github.com/beka-birhanu/vinom-escape/game/grid"
)

var (
	ErrSamePosition = errors.New("position is the agent position")
)

// LegalMask marks, per direction ordinal, whether the move is currently allowed.
type LegalMask [grid.NumDirections]bool

// Any reports whether at least one direction is legal.
func (m LegalMask) Any() bool {
	for _, ok := range m {
		if ok {
			return true
		}
	}
	return false
}

// Directions lists the legal directions in ordinal order.
func (m LegalMask) Directions() []grid.Direction {
	var dirs []grid.Direction
	for _, d := range grid.Directions() {
		if m[d] {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// Buckets returns the inverse-distance weighted obstacle density per quadrant,
// each total rounded up to the nearest integer. Cells on an axis count in two quadrants.
func Buckets(g *grid.Grid, agent grid.Position) [NumQuadrants]float64 {
	var buckets [NumQuadrants]float64

	for _, cell := range g.BlockedCells() {
		if cell == agent {
			continue
		}
		weight := 1 / agent.Distance(cell)

		if cell.X >= agent.X && cell.Z >= agent.Z {
			buckets[NorthEast] += weight
		}
		if cell.X <= agent.X && cell.Z >= agent.Z {
			buckets[NorthWest] += weight
		}
		if cell.X >= agent.X && cell.Z <= agent.Z {
			buckets[SouthEast] += weight
		}
		if cell.X <= agent.X && cell.Z <= agent.Z {
			buckets[SouthWest] += weight
		}
	}

	for q := range buckets {
		buckets[q] = math.Ceil(buckets[q])
	}
	return buckets
}

// DetectBlockedQuadrants returns every quadrant tied for the highest rounded density.
// A board without obstacles yields the empty signature.
func DetectBlockedQuadrants(g *grid.Grid, agent grid.Position) Signature {
	buckets := Buckets(g, agent)

	highest := 0.0
	for _, v := range buckets {
		highest = math.Max(highest, v)
	}
	if highest == 0 {
		return 0
	}

	var sig Signature
	for q, v := range buckets {
		if v == highest {
			sig = sig.With(Quadrant(q))
		}
	}
	return sig
}

// LegalDirections reports which moves the agent can take from pos. A straight move needs
// an open target; a diagonal move also needs one of the two cells it passes to be open.
func LegalDirections(g *grid.Grid, pos grid.Position) LegalMask {
	var mask LegalMask
	for _, dir := range grid.Directions() {
		target := pos.Add(dir)
		if g.IsBlocked(target.X, target.Z) {
			continue
		}
		if dir.IsDiagonal() && g.IsBlocked(pos.X, target.Z) && g.IsBlocked(target.X, pos.Z) {
			continue
		}
		mask[dir] = true
	}
	return mask
}

// BlockWeight returns the inverse distance between the agent and pos.
func BlockWeight(g *grid.Grid, agent, pos grid.Position) (float64, error) {
	if !g.InBound(pos.X, pos.Z) {
		return 0, fmt.Errorf("%w: (%d, %d)", grid.ErrOutOfBounds, pos.X, pos.Z)
	}
	if pos == agent {
		return math.Inf(1), ErrSamePosition
	}
	return 1 / agent.Distance(pos), nil
}
