package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-escape/game/grid"
	"github.com/beka-birhanu/vinom-escape/game/placer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(42))
	}
	e, err := New(cfg)
	require.NoError(t, err)
	return e
}

func at(x, z int) *grid.Position {
	return &grid.Position{X: x, Z: z}
}

func isNeighbor(a, b grid.Position) bool {
	for _, d := range grid.Directions() {
		if a.Add(d) == b {
			return true
		}
	}
	return false
}

// edge returns 0 or 8 when p lies on the outer ring of a 9x9 board.
func edge(p grid.Position) int {
	switch {
	case p.X == 0 || p.Z == 0:
		return 0
	case p.X == 8 || p.Z == 8:
		return 8
	}
	return -1
}

func TestNew(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		e := newEngine(t, Config{})
		assert.Equal(t, grid.Position{X: 4, Z: 4}, e.Agent())
		assert.Equal(t, PhaseIdle, e.Phase())
		assert.Equal(t, Continue, e.Result())
		assert.Equal(t, 9, e.Snapshot().Size)
	})

	t.Run("Start outside the board", func(t *testing.T) {
		_, err := New(Config{Size: 5, Start: at(5, 0)})
		assert.ErrorIs(t, err, ErrInvalidStart)
	})

	t.Run("Invalid size", func(t *testing.T) {
		_, err := New(Config{Size: 2})
		assert.ErrorIs(t, err, grid.ErrInvalidSize)
	})
}

func TestAddObstacle(t *testing.T) {
	t.Run("Twice on the same cell", func(t *testing.T) {
		e := newEngine(t, Config{})
		require.NoError(t, e.AddObstacle(2, 3))
		require.NoError(t, e.AddObstacle(2, 3))
		assert.Equal(t, []grid.Position{{X: 2, Z: 3}}, e.Snapshot().Obstacles)
	})

	t.Run("Agent cell", func(t *testing.T) {
		e := newEngine(t, Config{})
		assert.ErrorIs(t, e.AddObstacle(4, 4), ErrAgentCell)
	})

	t.Run("Out of bounds", func(t *testing.T) {
		e := newEngine(t, Config{})
		assert.ErrorIs(t, e.AddObstacle(-1, 4), grid.ErrOutOfBounds)
	})

	t.Run("Automatic placement blocks the escape step", func(t *testing.T) {
		e := newEngine(t, Config{Start: at(1, 4)})
		p, err := e.AutoObstacle(placer.NewBlocker(rand.New(rand.NewSource(1))))
		require.NoError(t, err)
		assert.True(t, isNeighbor(grid.Position{X: 1, Z: 4}, p))
		assert.Contains(t, e.Snapshot().Obstacles, p)
	})
}

func TestRunTurn(t *testing.T) {
	t.Run("Centre move scores zero", func(t *testing.T) {
		e := newEngine(t, Config{})
		r, err := e.RunTurn()
		require.NoError(t, err)
		assert.Equal(t, Continue, r)

		records := e.Experience()
		require.Len(t, records, 1)
		assert.Equal(t, 0.0, records[0].Outcome)
		assert.Equal(t, grid.Position{X: 4, Z: 4}, records[0].Position)

		d, ok := e.LastDecision()
		require.True(t, ok)
		assert.True(t, d.Exploratory)
		assert.Equal(t, d.Action.Rotation(), d.Rotation)
		assert.Equal(t, d.To, e.Agent())
	})

	t.Run("Start on the border wins at once", func(t *testing.T) {
		for _, start := range []*grid.Position{at(0, 0), at(8, 4), at(3, 8), at(4, 0)} {
			var ended []TurnResult
			e := newEngine(t, Config{Start: start, OnEnd: func(r TurnResult) { ended = append(ended, r) }})

			r, err := e.RunTurn()
			require.NoError(t, err)
			assert.Equal(t, Win, r)
			assert.Equal(t, PhaseOver, e.Phase())
			assert.Equal(t, []TurnResult{Win}, ended)
			assert.Empty(t, e.Experience())
		}
	})

	t.Run("Empty board is eventually escaped", func(t *testing.T) {
		e := newEngine(t, Config{})
		r := Continue
		turns := 0
		for ; r == Continue && turns < 1000; turns++ {
			var err error
			r, err = e.RunTurn()
			require.NoError(t, err)
		}

		assert.Equal(t, Win, r)
		assert.True(t, e.Snapshot().Turns > 0)
		assert.Len(t, e.Experience(), e.Snapshot().Turns)
		assert.True(t, e.Snapshot().Phase == PhaseOver)
		assert.Contains(t, []int{0, 8}, edge(e.Agent()), "agent ends on the border")
		last := e.Experience()[len(e.Experience())-1]
		assert.Equal(t, 1.0, last.Outcome, "landing on the border scores one")
	})

	t.Run("Enclosed agent loses", func(t *testing.T) {
		e := newEngine(t, Config{})
		for _, d := range grid.Directions() {
			p := grid.Position{X: 4, Z: 4}.Add(d)
			require.NoError(t, e.AddObstacle(p.X, p.Z))
		}

		r, err := e.RunTurn()
		require.NoError(t, err)
		assert.Equal(t, Lose, r)
		assert.ErrorIs(t, e.Reason(), ErrNoLegalMove)
	})

	t.Run("Sealed ring loses, gapped ring continues", func(t *testing.T) {
		ring := func(e *Engine, gap *grid.Position) {
			for x := 2; x <= 6; x++ {
				for z := 2; z <= 6; z++ {
					if x != 2 && x != 6 && z != 2 && z != 6 {
						continue
					}
					if gap != nil && *gap == (grid.Position{X: x, Z: z}) {
						continue
					}
					require.NoError(t, e.AddObstacle(x, z))
				}
			}
		}

		sealed := newEngine(t, Config{})
		ring(sealed, nil)
		r, err := sealed.RunTurn()
		require.NoError(t, err)
		assert.Equal(t, Lose, r)
		assert.ErrorIs(t, sealed.Reason(), ErrNoReachableEndpoint)

		gapped := newEngine(t, Config{})
		ring(gapped, at(4, 2))
		r, err = gapped.RunTurn()
		require.NoError(t, err)
		assert.Equal(t, Continue, r)
	})

	t.Run("Exact record with best outcome is replayed", func(t *testing.T) {
		e := newEngine(t, Config{Start: at(2, 4)})
		r, err := e.RunTurn()
		require.NoError(t, err)
		require.Equal(t, Continue, r)
		first := e.Experience()[0]

		first.Outcome = 1

		for i := 0; i < 10; i++ {
			e.ResetGrid()
			e.ClearExperience()
			e.table.Append(first)
			_, err := e.RunTurn()
			require.NoError(t, err)
			d, ok := e.LastDecision()
			require.True(t, ok)
			assert.Equal(t, first.Action, d.Action)
			assert.False(t, d.Exploratory)
		}
	})

	t.Run("Over episode rejects input until reset", func(t *testing.T) {
		e := newEngine(t, Config{Start: at(0, 3)})
		_, err := e.RunTurn()
		require.NoError(t, err)

		assert.ErrorIs(t, e.AddObstacle(2, 2), ErrEpisodeOver)
		r, err := e.RunTurn()
		assert.ErrorIs(t, err, ErrEpisodeOver)
		assert.Equal(t, Win, r)

		e.ResetGrid()
		assert.Equal(t, PhaseIdle, e.Phase())
		assert.Equal(t, Continue, e.Result())
		assert.NoError(t, e.AddObstacle(2, 2))
	})
}

func TestMoveSuspension(t *testing.T) {
	e := newEngine(t, Config{Start: at(3, 4), MoveDuration: 500 * time.Millisecond})
	start := e.Agent()

	r, err := e.RunTurn()
	require.NoError(t, err)
	assert.Equal(t, Continue, r)
	assert.Equal(t, PhaseMoving, e.Phase())
	assert.Equal(t, start, e.Agent(), "agent stays put until the move completes")

	assert.ErrorIs(t, e.AddObstacle(1, 1), ErrTurnInProgress)
	_, err = e.RunTurn()
	assert.ErrorIs(t, err, ErrTurnInProgress)

	r, err = e.Advance(200 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, Continue, r)
	assert.Equal(t, PhaseMoving, e.Phase())

	_, err = e.Advance(300 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, e.Phase())
	assert.True(t, isNeighbor(start, e.Agent()))
	assert.Len(t, e.Experience(), 1)

	_, err = e.Advance(time.Second)
	assert.ErrorIs(t, err, ErrNotMoving)
}

func TestExternalFeedback(t *testing.T) {
	t.Run("Outcome is clamped and recorded", func(t *testing.T) {
		e := newEngine(t, Config{Start: at(3, 4), Scoring: ScoreExternal})

		r, err := e.RunTurn()
		require.NoError(t, err)
		assert.Equal(t, Continue, r)
		assert.Equal(t, PhaseAwaitingFeedback, e.Phase())
		assert.Empty(t, e.Experience())

		_, err = e.Advance(time.Second)
		assert.ErrorIs(t, err, ErrNotMoving)
		assert.ErrorIs(t, e.AddObstacle(1, 1), ErrTurnInProgress)

		r, err = e.SetExternalFeedback(5)
		require.NoError(t, err)
		assert.Equal(t, Continue, r)
		require.Len(t, e.Experience(), 1)
		assert.Equal(t, 1.0, e.Experience()[0].Outcome)
		assert.Equal(t, PhaseIdle, e.Phase())
	})

	t.Run("Feedback outside of a turn", func(t *testing.T) {
		e := newEngine(t, Config{Scoring: ScoreExternal})
		_, err := e.SetExternalFeedback(0.5)
		assert.ErrorIs(t, err, ErrNotAwaitingFeedback)
	})

	t.Run("Reset cancels the pending turn", func(t *testing.T) {
		e := newEngine(t, Config{Start: at(3, 4), Scoring: ScoreExternal})
		_, err := e.RunTurn()
		require.NoError(t, err)

		e.ResetGrid()
		assert.Equal(t, PhaseIdle, e.Phase())
		assert.Equal(t, grid.Position{X: 3, Z: 4}, e.Agent())
		_, ok := e.LastDecision()
		assert.False(t, ok)

		_, err = e.SetExternalFeedback(1)
		assert.ErrorIs(t, err, ErrNotAwaitingFeedback)
		assert.Empty(t, e.Experience())
	})
}

func TestPassiveLearning(t *testing.T) {
	t.Run("Records the inverted outcome at the last obstacle", func(t *testing.T) {
		e := newEngine(t, Config{Start: at(2, 4), PassiveLearning: true})
		require.NoError(t, e.AddObstacle(7, 7))

		_, err := e.RunTurn()
		require.NoError(t, err)

		active := e.Experience()
		passive := e.PassiveExperience()
		require.Len(t, active, 1)
		require.Len(t, passive, 1)
		assert.Equal(t, grid.Position{X: 7, Z: 7}, passive[0].Position)
		assert.Equal(t, -active[0].Outcome, passive[0].Outcome)
		assert.Equal(t, active[0].Action, passive[0].Action)
	})

	t.Run("Skipped before the first obstacle", func(t *testing.T) {
		e := newEngine(t, Config{Start: at(2, 4), PassiveLearning: true})
		_, err := e.RunTurn()
		require.NoError(t, err)
		assert.Len(t, e.Experience(), 1)
		assert.Empty(t, e.PassiveExperience())
	})

	t.Run("Disabled", func(t *testing.T) {
		e := newEngine(t, Config{Start: at(2, 4)})
		require.NoError(t, e.AddObstacle(7, 7))
		_, err := e.RunTurn()
		require.NoError(t, err)
		assert.Empty(t, e.PassiveExperience())
	})
}

func TestBlockWeight(t *testing.T) {
	e := newEngine(t, Config{})

	w, err := e.BlockWeight(grid.Position{X: 4, Z: 6})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, w, 1e-9)

	_, err = e.BlockWeight(grid.Position{X: 4, Z: 4})
	assert.Error(t, err)
}

func TestClearExperience(t *testing.T) {
	e := newEngine(t, Config{Start: at(2, 4), PassiveLearning: true})
	require.NoError(t, e.AddObstacle(7, 7))
	_, err := e.RunTurn()
	require.NoError(t, err)

	e.ClearExperience()
	assert.Empty(t, e.Experience())
	assert.Empty(t, e.PassiveExperience())
	assert.Equal(t, 0, e.Snapshot().ExperienceSize)
}
