// Package reward scores a move by how much it shortens the agent's escape.
package reward

import (
	"errors"
	"fmt"
	"math"

	"github.com/beka-birhanu/vinom-escape/game/grid"
)

var (
	ErrNoEndpoints = errors.New("no open border cell left")
)

// ScoreMove scores moving from current to hypothetical, in [-1, 1].
//
// From the centre every direction is equally good, so the score is 0. Landing on an open
// border cell scores 1. Otherwise the score is the average shortening of the path to the
// nearest open border cells, measured only against the endpoints tied for nearest.
// ErrNoEndpoints is returned when the border is fully blocked; the episode is lost.
func ScoreMove(g *grid.Grid, current, hypothetical grid.Position) (float64, error) {
	if !g.InBound(current.X, current.Z) {
		return 0, fmt.Errorf("%w: (%d, %d)", grid.ErrOutOfBounds, current.X, current.Z)
	}
	if !g.InBound(hypothetical.X, hypothetical.Z) {
		return 0, fmt.Errorf("%w: (%d, %d)", grid.ErrOutOfBounds, hypothetical.X, hypothetical.Z)
	}

	if current == g.Center() {
		return 0, nil
	}

	endpoints := g.ValidEndpoints()
	for _, e := range endpoints {
		if e == hypothetical {
			return 1, nil
		}
	}
	if len(endpoints) == 0 {
		return 0, ErrNoEndpoints
	}

	before := grid.Unreachable
	lengths := make([]int, len(endpoints))
	for i, e := range endpoints {
		lengths[i] = g.PathLength(current.X, current.Z, e.X, e.Z)
		before = min(before, lengths[i])
	}

	var total float64
	nearest := 0
	for i, e := range endpoints {
		if lengths[i] != before {
			continue
		}
		after := g.PathLength(hypothetical.X, hypothetical.Z, e.X, e.Z)
		total += float64(before - after)
		nearest++
	}

	return clamp(total/float64(nearest), -1, 1), nil
}

// clamp limits v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
