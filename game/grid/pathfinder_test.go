package grid

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// referenceDistances is a plain queue BFS over the same move rules.
func referenceDistances(g *Grid, src Position) [][]int {
	dist := make([][]int, g.Size())
	for x := range dist {
		dist[x] = make([]int, g.Size())
		for z := range dist[x] {
			dist[x][z] = -1
		}
	}
	dist[src.X][src.Z] = 0

	queue := []Position{src}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, dir := range Directions() {
			n := p.Add(dir)
			if g.IsBlocked(n.X, n.Z) || dist[n.X][n.Z] != -1 {
				continue
			}
			if dir.IsDiagonal() && (g.IsBlocked(p.X, n.Z) || g.IsBlocked(n.X, p.Z)) {
				continue
			}
			dist[n.X][n.Z] = dist[p.X][p.Z] + 1
			queue = append(queue, n)
		}
	}
	return dist
}

func randomBoard(t *testing.T, rng *rand.Rand, size int, obstacles int, keep Position) *Grid {
	t.Helper()
	g, err := New(size)
	require.NoError(t, err)
	for i := 0; i < obstacles; i++ {
		x, z := rng.Intn(size), rng.Intn(size)
		if x == keep.X && z == keep.Z {
			continue
		}
		require.NoError(t, g.AddObstacle(x, z))
	}
	return g
}

// sealedRing blocks the ring one cell in from every edge.
func sealedRing(t *testing.T, g *Grid, gap *Position) {
	t.Helper()
	last := g.Size() - 2
	for i := 1; i <= last; i++ {
		for _, p := range []Position{{i, 1}, {i, last}, {1, i}, {last, i}} {
			if gap != nil && *gap == p {
				continue
			}
			require.NoError(t, g.AddObstacle(p.X, p.Z))
		}
	}
}

func TestComputeDistances(t *testing.T) {
	t.Run("Empty board labels the king-move distance", func(t *testing.T) {
		g, err := New(9)
		require.NoError(t, err)
		require.NoError(t, g.ComputeDistances(4, 4))

		assert.Equal(t, 0, g.Distance(4, 4))
		assert.Equal(t, 1, g.Distance(5, 5))
		assert.Equal(t, 4, g.Distance(0, 0))
		assert.Equal(t, 4, g.Distance(8, 2))
	})

	t.Run("Diagonal squeeze between two obstacles is refused", func(t *testing.T) {
		g, err := New(9)
		require.NoError(t, err)
		require.NoError(t, g.AddObstacle(4, 5))
		require.NoError(t, g.AddObstacle(5, 4))
		require.NoError(t, g.ComputeDistances(4, 4))

		assert.NotEqual(t, 1, g.Distance(5, 5))
		assert.Equal(t, 1, g.Distance(3, 3))
	})

	t.Run("Out of bounds source fails", func(t *testing.T) {
		g, err := New(9)
		require.NoError(t, err)
		assert.ErrorIs(t, g.ComputeDistances(9, 0), ErrOutOfBounds)
	})

	t.Run("Matches a plain BFS on random boards", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		for round := 0; round < 50; round++ {
			src := Position{X: rng.Intn(9), Z: rng.Intn(9)}
			g := randomBoard(t, rng, 9, rng.Intn(30), src)
			require.NoError(t, g.ComputeDistances(src.X, src.Z))

			want := referenceDistances(g, src)
			for x := 0; x < 9; x++ {
				for z := 0; z < 9; z++ {
					require.Equal(t, want[x][z], g.Distance(x, z), "round %d cell (%d, %d)", round, x, z)
				}
			}
		}
	})

	t.Run("Labels grow by at most one between neighbours", func(t *testing.T) {
		rng := rand.New(rand.NewSource(11))
		src := Position{X: 4, Z: 4}
		g := randomBoard(t, rng, 9, 20, src)
		require.NoError(t, g.ComputeDistances(src.X, src.Z))

		for x := 0; x < 9; x++ {
			for z := 0; z < 9; z++ {
				d := g.Distance(x, z)
				if d <= 0 {
					continue
				}
				found := false
				for _, dir := range Directions() {
					n := Position{X: x, Z: z}.Add(dir)
					if g.Distance(n.X, n.Z) == d-1 {
						found = true
					}
				}
				assert.True(t, found, "cell (%d, %d) has no predecessor", x, z)
			}
		}
	})
}

func TestPathLength(t *testing.T) {
	t.Run("Empty board", func(t *testing.T) {
		g, err := New(9)
		require.NoError(t, err)

		assert.Equal(t, 4, g.PathLength(4, 4, 0, 0))
		assert.Equal(t, 4, g.PathLength(4, 4, 4, 8))
		assert.Equal(t, 0, g.PathLength(4, 4, 4, 4))
	})

	t.Run("Blocked or off-board end is unreachable", func(t *testing.T) {
		g, err := New(9)
		require.NoError(t, err)
		require.NoError(t, g.AddObstacle(0, 0))

		assert.Equal(t, Unreachable, g.PathLength(4, 4, 0, 0))
		assert.Equal(t, Unreachable, g.PathLength(4, 4, 9, 9))
		assert.Equal(t, Unreachable, g.PathLength(-1, 4, 0, 1))
	})

	t.Run("Sealed inner ring", func(t *testing.T) {
		g, err := New(9)
		require.NoError(t, err)
		sealedRing(t, g, nil)

		endpoints := g.ValidEndpoints()
		assert.Len(t, endpoints, 32)
		for _, e := range endpoints {
			assert.Equal(t, Unreachable, g.PathLength(4, 4, e.X, e.Z), "endpoint %v", e)
		}
	})

	t.Run("Gapped inner ring", func(t *testing.T) {
		g, err := New(9)
		require.NoError(t, err)
		gap := Position{X: 4, Z: 1}
		sealedRing(t, g, &gap)

		assert.Len(t, g.ValidEndpoints(), 32)
		assert.Equal(t, 4, g.PathLength(4, 4, 4, 0))
		assert.Less(t, g.PathLength(4, 4, 0, 0), Unreachable)
	})

	t.Run("Reachability is symmetric", func(t *testing.T) {
		rng := rand.New(rand.NewSource(3))
		for round := 0; round < 40; round++ {
			a := Position{X: rng.Intn(9), Z: rng.Intn(9)}
			b := Position{X: rng.Intn(9), Z: rng.Intn(9)}
			g := randomBoard(t, rng, 9, 25, a)
			if g.IsBlocked(b.X, b.Z) {
				continue
			}

			forward := g.PathLength(a.X, a.Z, b.X, b.Z) < Unreachable
			backward := g.PathLength(b.X, b.Z, a.X, a.Z) < Unreachable
			assert.Equal(t, forward, backward, "round %d %v <-> %v", round, a, b)
		}
	})

	t.Run("Never exceeds the flood-fill distance", func(t *testing.T) {
		rng := rand.New(rand.NewSource(5))
		src := Position{X: 4, Z: 4}
		g := randomBoard(t, rng, 9, 15, src)
		want := referenceDistances(g, src)

		for _, e := range g.ValidEndpoints() {
			length := g.PathLength(src.X, src.Z, e.X, e.Z)
			if want[e.X][e.Z] < 0 {
				assert.Equal(t, Unreachable, length)
				continue
			}
			assert.LessOrEqual(t, length, want[e.X][e.Z])
		}
	})
}

func TestPath(t *testing.T) {
	g, err := New(9)
	require.NoError(t, err)
	require.NoError(t, g.AddObstacle(4, 5))

	path := g.Path(4, 4, 4, 8)
	require.NotEmpty(t, path)
	assert.Equal(t, Position{X: 4, Z: 8}, path[0])
	assert.Equal(t, Position{X: 4, Z: 4}, path[len(path)-1])
	assert.Len(t, path, g.PathLength(4, 4, 4, 8)+1)

	for i := 1; i < len(path); i++ {
		assert.Equal(t, g.Distance(path[i-1].X, path[i-1].Z)-1, g.Distance(path[i].X, path[i].Z))
	}

	require.NoError(t, g.AddObstacle(4, 8))
	assert.Nil(t, g.Path(4, 4, 4, 8))
}

func TestValidEndpoints(t *testing.T) {
	t.Run("Empty board returns the full ring once", func(t *testing.T) {
		g, err := New(9)
		require.NoError(t, err)

		endpoints := g.ValidEndpoints()
		assert.Len(t, endpoints, 32)

		seen := map[Position]bool{}
		for _, e := range endpoints {
			assert.False(t, seen[e], "duplicate %v", e)
			seen[e] = true
			assert.True(t, g.IsBorder(e))
		}
		for _, corner := range []Position{{0, 0}, {0, 8}, {8, 0}, {8, 8}} {
			assert.True(t, seen[corner], "missing corner %v", corner)
		}
	})

	t.Run("Never includes blocked cells", func(t *testing.T) {
		g, err := New(9)
		require.NoError(t, err)
		blocked := []Position{{0, 0}, {3, 8}, {8, 5}, {0, 2}}
		for _, p := range blocked {
			require.NoError(t, g.AddObstacle(p.X, p.Z))
		}

		endpoints := g.ValidEndpoints()
		assert.Len(t, endpoints, 32-len(blocked))
		for _, e := range endpoints {
			assert.False(t, g.IsBlocked(e.X, e.Z))
		}
	})

	t.Run("Fully blocked border leaves none", func(t *testing.T) {
		g, err := New(3)
		require.NoError(t, err)
		for x := 0; x < 3; x++ {
			for z := 0; z < 3; z++ {
				if x != 1 || z != 1 {
					require.NoError(t, g.AddObstacle(x, z))
				}
			}
		}
		assert.Empty(t, g.ValidEndpoints())
	})
}
