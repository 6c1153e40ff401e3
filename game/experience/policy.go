package experience

import (
	"errors"
	"math"
	"math/rand"

	"github.com/beka-birhanu/vinom-escape/game/grid"
	"github.com/beka-birhanu/vinom-escape/game/sensor"
)

const (
	similarThreshold = 0.5
	similarScale     = 0.6
	positionWeight   = 0.25
)

var (
	ErrNoLegalMove = errors.New("no legal move")
)

// Decision is the action picked by the policy.
type Decision struct {
	Action      grid.Direction
	Exploratory bool // Exploratory is true when the log had no applicable record.
}

// Policy chooses moves from the experience log.
type Policy struct {
	rng       *rand.Rand
	boardSize int

	// CorrectedSimilarity compares a record's position with the current agent position
	// instead of the board origin.
	CorrectedSimilarity bool
}

// NewPolicy creates a policy for a board of the given size.
func NewPolicy(rng *rand.Rand, boardSize int) *Policy {
	return &Policy{rng: rng, boardSize: boardSize}
}

// Weight maps an outcome to the number of votes it is worth.
func Weight(outcome float64) float64 {
	switch {
	case outcome >= 0.5:
		return outcome * 3
	case outcome > -0.5:
		return outcome * 1.5
	default:
		return outcome
	}
}

// Similarity scores how alike two signatures are, plus a position term measuring how close
// the recorded position is to anchor.
func Similarity(a, b sensor.Signature, recorded, anchor grid.Position, boardSize int) float64 {
	score := float64(a.Shared(b)) / sensor.NumQuadrants

	maxDist := float64(boardSize-1) * math.Sqrt2
	if maxDist > 0 {
		score += positionWeight * (1 - math.Min(1, recorded.Distance(anchor)/maxDist))
	}
	return score
}

// DecideAction picks a legal move for the given state. Actions of records with the same
// signature vote ceil(Weight) times, actions of similar records ceil(0.6*Weight) times.
func (p *Policy) DecideAction(table *Table, sig sensor.Signature, pos grid.Position, legal sensor.LegalMask) (Decision, error) {
	if !legal.Any() {
		return Decision{}, ErrNoLegalMove
	}

	anchor := grid.Position{}
	if p.CorrectedSimilarity {
		anchor = pos
	}

	var pool []grid.Direction
	for _, r := range table.records {
		if !r.Action.Valid() || !legal[r.Action] {
			continue
		}

		var votes int
		switch {
		case r.Signature == sig:
			votes = int(math.Ceil(Weight(r.Outcome)))
		case Similarity(r.Signature, sig, r.Position, anchor, p.boardSize) >= similarThreshold:
			votes = int(math.Ceil(Weight(r.Outcome) * similarScale))
		}

		for i := 0; i < votes; i++ {
			pool = append(pool, r.Action)
		}
	}

	if len(pool) > 0 {
		return Decision{Action: pool[p.rng.Intn(len(pool))]}, nil
	}

	dirs := legal.Directions()
	return Decision{Action: dirs[p.rng.Intn(len(dirs))], Exploratory: true}, nil
}
