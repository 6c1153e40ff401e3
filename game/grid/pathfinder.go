package grid

import "fmt"

// Unreachable is the path length reported when no path connects two cells.
const Unreachable = 1000

// ComputeDistances labels every cell reachable from (srcX, srcZ) with its step distance.
// A diagonal step is only taken when both orthogonal cells it passes between are open.
func (g *Grid) ComputeDistances(srcX, srcZ int) error {
	if !g.InBound(srcX, srcZ) {
		return fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, srcX, srcZ)
	}

	for x := range g.cells {
		for z := range g.cells[x] {
			g.cells[x][z].Visited = -1
		}
	}
	g.cells[srcX][srcZ].Visited = 0

	frontier := []Position{{X: srcX, Z: srcZ}}
	for step := 1; step < g.size*g.size && len(frontier) > 0; step++ {
		var next []Position
		for _, p := range frontier {
			if g.cells[p.X][p.Z].Blocked {
				continue
			}
			next = g.labelNeighbors(p, step, next)
		}
		frontier = next
	}

	return nil
}

// labelNeighbors assigns step to every unlabeled open neighbour of p and appends them to out.
func (g *Grid) labelNeighbors(p Position, step int, out []Position) []Position {
	for _, dir := range Directions() {
		n := p.Add(dir)
		if g.IsBlocked(n.X, n.Z) || g.cells[n.X][n.Z].Visited != -1 {
			continue
		}
		if dir.IsDiagonal() && (g.IsBlocked(p.X, n.Z) || g.IsBlocked(n.X, p.Z)) {
			continue
		}
		g.cells[n.X][n.Z].Visited = step
		out = append(out, n)
	}
	return out
}

// Distance returns the label (x, z) received in the last flood fill, -1 if unreached.
func (g *Grid) Distance(x, z int) int {
	if !g.InBound(x, z) {
		return -1
	}
	return g.cells[x][z].Visited
}

// PathLength returns the number of backtrack steps from (endX, endZ) to (startX, startZ),
// or Unreachable when the end is blocked or cannot be reached.
func (g *Grid) PathLength(startX, startZ, endX, endZ int) int {
	path := g.backtrack(startX, startZ, endX, endZ)
	if path == nil {
		return Unreachable
	}
	return len(path) - 1
}

// Path returns the reconstructed path from the end cell back to the start cell, end first.
// It returns nil when the end cannot be reached.
func (g *Grid) Path(startX, startZ, endX, endZ int) []Position {
	return g.backtrack(startX, startZ, endX, endZ)
}

// backtrack walks from the end cell towards the source, one label at a time. Among the
// neighbours carrying the next lower label it always advances to the one closest to the
// end target, not to the cursor.
func (g *Grid) backtrack(startX, startZ, endX, endZ int) []Position {
	if err := g.ComputeDistances(startX, startZ); err != nil {
		return nil
	}
	if !g.InBound(endX, endZ) {
		return nil
	}
	end := g.cells[endX][endZ]
	if end.Blocked || end.Visited < 0 {
		return nil
	}

	target := Position{X: endX, Z: endZ}
	cursor := target
	path := []Position{cursor}
	for step := end.Visited - 1; step >= 0; step-- {
		var candidates []Position
		for _, dir := range Directions() {
			n := cursor.Add(dir)
			if !g.IsBlocked(n.X, n.Z) && g.cells[n.X][n.Z].Visited == step {
				candidates = append(candidates, n)
			}
		}
		if len(candidates) == 0 {
			break
		}

		cursor = closest(target, candidates)
		path = append(path, cursor)
	}

	return path
}

// closest returns the candidate nearest to target; the first one wins a tie.
func closest(target Position, candidates []Position) Position {
	best := 0
	bestDist := float64(Unreachable)
	for i, c := range candidates {
		if d := target.Distance(c); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return candidates[best]
}

// ValidEndpoints lists every open cell on the outer ring, corners once.
func (g *Grid) ValidEndpoints() []Position {
	var endpoints []Position
	last := g.size - 1

	// horizontal edges, corners included
	for x := 0; x < g.size; x++ {
		if !g.cells[x][last].Blocked {
			endpoints = append(endpoints, Position{X: x, Z: last})
		}
		if !g.cells[x][0].Blocked {
			endpoints = append(endpoints, Position{X: x, Z: 0})
		}
	}
	// vertical edges without the corners
	for z := 1; z < last; z++ {
		if !g.cells[0][z].Blocked {
			endpoints = append(endpoints, Position{X: 0, Z: z})
		}
		if !g.cells[last][z].Blocked {
			endpoints = append(endpoints, Position{X: last, Z: z})
		}
	}

	return endpoints
}

// IsEndpoint reports whether p is an open border cell.
func (g *Grid) IsEndpoint(p Position) bool {
	return g.IsBorder(p) && !g.IsBlocked(p.X, p.Z)
}
