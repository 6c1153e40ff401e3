// Package placer picks obstacle cells on behalf of the player.
package placer

import (
	"errors"
	"math/rand"

	"github.com/beka-birhanu/vinom-escape/game/grid"
)

var (
	ErrBoardFull = errors.New("no free cell left to block")
)

// Blocker blocks the first step of the agent's shortest escape.
type Blocker struct {
	rng *rand.Rand
}

// NewBlocker creates a blocker drawing fallback cells from rng.
func NewBlocker(rng *rand.Rand) *Blocker {
	return &Blocker{rng: rng}
}

// Next returns the cell to block. It follows the shortest reconstructed path from the agent
// to an open border cell and returns the cell the agent would step onto first. When no
// border cell is reachable it returns a random free cell other than the agent's.
func (b *Blocker) Next(g *grid.Grid, agent grid.Position) (grid.Position, error) {
	var best []grid.Position
	for _, e := range g.ValidEndpoints() {
		path := g.Path(agent.X, agent.Z, e.X, e.Z)
		if len(path) < 2 {
			continue
		}
		if best == nil || len(path) < len(best) {
			best = path
		}
	}

	if best != nil {
		// the path runs end first; the agent sits at the tail.
		return best[len(best)-2], nil
	}
	return b.randomFree(g, agent)
}

// randomFree picks uniformly among open cells that are not the agent's.
func (b *Blocker) randomFree(g *grid.Grid, agent grid.Position) (grid.Position, error) {
	var free []grid.Position
	for x := 0; x < g.Size(); x++ {
		for z := 0; z < g.Size(); z++ {
			p := grid.Position{X: x, Z: z}
			if p != agent && !g.IsBlocked(x, z) {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		return grid.Position{}, ErrBoardFull
	}
	return free[b.rng.Intn(len(free))], nil
}
