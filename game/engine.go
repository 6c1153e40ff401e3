package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/beka-birhanu/vinom-escape/game/experience"
	"github.com/beka-birhanu/vinom-escape/game/grid"
	"github.com/beka-birhanu/vinom-escape/game/placer"
	"github.com/beka-birhanu/vinom-escape/game/reward"
	"github.com/beka-birhanu/vinom-escape/game/sensor"
)

// Engine-related errors.
var (
	ErrTurnInProgress      = errors.New("a turn is already in progress")
	ErrEpisodeOver         = errors.New("episode is over")
	ErrAgentCell           = errors.New("cell is occupied by the agent")
	ErrNotMoving           = errors.New("agent is not moving")
	ErrNotAwaitingFeedback = errors.New("turn is not awaiting feedback")
	ErrInvalidStart        = errors.New("start position is out of the board")

	// Loss reasons. They end the episode; they are not returned as failures.
	ErrNoLegalMove         = errors.New("no legal move")
	ErrNoReachableEndpoint = errors.New("no reachable border cell")
)

const (
	defaultBoardSize = 9
)

// Config holds the settings of one engine.
type Config struct {
	Size                int                // Size of the board; 9 when zero.
	Start               *grid.Position     // Start cell of the agent; the centre when nil.
	Scoring             ScoringMode        // Scoring selects automatic or external move scoring.
	MoveDuration        time.Duration      // MoveDuration is how long a move suspends the turn.
	PassiveLearning     bool               // PassiveLearning enables the obstacle-keyed twin table.
	CorrectedSimilarity bool               // CorrectedSimilarity anchors similarity at the agent.
	Rand                *rand.Rand         // Rand drives every random choice.
	Logger              Logger             // Logger receives turn reports; silent when nil.
	OnEnd               func(r TurnResult) // OnEnd is called once when the episode is won or lost.
}

// Decision is the move picked in the last turn.
type Decision struct {
	Action      grid.Direction
	Rotation    float64
	Exploratory bool
	From        grid.Position
	To          grid.Position
}

// turn is the state of the turn in flight.
type turn struct {
	record  experience.Record
	from    grid.Position
	to      grid.Position
	elapsed time.Duration
}

// Engine runs the escape game for a single agent. It is not safe for concurrent use;
// callers serialise access.
type Engine struct {
	grid         *grid.Grid         // The board.
	start        grid.Position      // Where the agent starts each episode.
	agent        grid.Position      // Where the agent is now.
	table        *experience.Table  // Experience the policy draws on.
	passive      *experience.Table  // Twin log keyed by obstacle placement.
	policy       *experience.Policy // Action selection.
	cfg          Config             // Engine settings.
	phase        Phase              // Current state machine phase.
	result       TurnResult         // Final result once the phase is over.
	reason       error              // Loss reason, nil otherwise.
	pending      *turn              // Turn in flight.
	lastDecision *Decision          // Most recent decision.
	turns        int                // Completed turns this episode.
}

// New creates an engine with an empty board and an empty experience table.
func New(cfg Config) (*Engine, error) {
	if cfg.Size == 0 {
		cfg.Size = defaultBoardSize
	}
	g, err := grid.New(cfg.Size)
	if err != nil {
		return nil, err
	}

	start := g.Center()
	if cfg.Start != nil {
		if !g.InBound(cfg.Start.X, cfg.Start.Z) {
			return nil, ErrInvalidStart
		}
		start = *cfg.Start
	}

	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}

	policy := experience.NewPolicy(cfg.Rand, cfg.Size)
	policy.CorrectedSimilarity = cfg.CorrectedSimilarity

	return &Engine{
		grid:    g,
		start:   start,
		agent:   start,
		table:   experience.NewTable(),
		passive: experience.NewTable(),
		policy:  policy,
		cfg:     cfg,
	}, nil
}

// AddObstacle blocks (x, z). Placement is refused while a turn is in flight, on the agent's
// cell, and after the episode ended.
func (e *Engine) AddObstacle(x, z int) error {
	if err := e.placementAllowed(); err != nil {
		return err
	}
	if x == e.agent.X && z == e.agent.Z {
		return ErrAgentCell
	}
	return e.grid.AddObstacle(x, z)
}

// AutoObstacle lets the blocker choose the next obstacle and places it.
func (e *Engine) AutoObstacle(b *placer.Blocker) (grid.Position, error) {
	if err := e.placementAllowed(); err != nil {
		return grid.Position{}, err
	}
	p, err := b.Next(e.grid, e.agent)
	if err != nil {
		return grid.Position{}, err
	}
	return p, e.grid.AddObstacle(p.X, p.Z)
}

func (e *Engine) placementAllowed() error {
	switch e.phase {
	case PhaseOver:
		return ErrEpisodeOver
	case PhaseMoving, PhaseAwaitingFeedback:
		return ErrTurnInProgress
	}
	return nil
}

// RunTurn starts the agent's turn. The returned result is Continue while the turn is
// suspended; the caller resumes it with Advance or SetExternalFeedback.
func (e *Engine) RunTurn() (TurnResult, error) {
	switch e.phase {
	case PhaseOver:
		return e.result, ErrEpisodeOver
	case PhaseMoving, PhaseAwaitingFeedback:
		return Continue, ErrTurnInProgress
	}

	if e.grid.IsBorder(e.agent) {
		return e.end(Win, nil), nil
	}

	legal := sensor.LegalDirections(e.grid, e.agent)
	if !legal.Any() {
		return e.end(Lose, ErrNoLegalMove), nil
	}

	sig := sensor.DetectBlockedQuadrants(e.grid, e.agent)
	if !e.canEscape() {
		return e.end(Lose, ErrNoReachableEndpoint), nil
	}

	decision, err := e.policy.DecideAction(e.table, sig, e.agent, legal)
	if err != nil {
		return e.end(Lose, ErrNoLegalMove), nil
	}

	to := e.agent.Add(decision.Action)
	e.pending = &turn{
		record: experience.Record{
			Signature: sig,
			Position:  e.agent,
			Legal:     legal,
			Action:    decision.Action,
		},
		from: e.agent,
		to:   to,
	}
	e.lastDecision = &Decision{
		Action:      decision.Action,
		Rotation:    decision.Action.Rotation(),
		Exploratory: decision.Exploratory,
		From:        e.agent,
		To:          to,
	}
	e.phase = PhaseMoving
	e.cfg.Logger.Info(fmt.Sprintf("agent at %v sees %s and moves %s (exploratory=%t)", e.agent, sig, decision.Action, decision.Exploratory))

	return e.Advance(0)
}

// Advance adds elapsed animation time to the move in flight and completes the move once
// the move duration has passed.
func (e *Engine) Advance(elapsed time.Duration) (TurnResult, error) {
	if e.phase != PhaseMoving {
		return e.currentResult(), ErrNotMoving
	}

	e.pending.elapsed += elapsed
	if e.pending.elapsed < e.cfg.MoveDuration {
		return Continue, nil
	}

	e.agent = e.pending.to
	if e.cfg.Scoring == ScoreExternal {
		e.phase = PhaseAwaitingFeedback
		return Continue, nil
	}

	outcome, err := reward.ScoreMove(e.grid, e.pending.from, e.pending.to)
	if err != nil {
		if errors.Is(err, reward.ErrNoEndpoints) {
			return e.end(Lose, ErrNoReachableEndpoint), nil
		}
		e.cfg.Logger.Error(fmt.Sprintf("scoring move %v -> %v: %s", e.pending.from, e.pending.to, err))
		return e.end(Lose, err), nil
	}
	return e.finishTurn(outcome), nil
}

// SetExternalFeedback supplies the outcome of the move awaiting feedback, clamped to [-1, 1].
func (e *Engine) SetExternalFeedback(outcome float64) (TurnResult, error) {
	if e.phase != PhaseAwaitingFeedback {
		return e.currentResult(), ErrNotAwaitingFeedback
	}
	return e.finishTurn(math.Max(-1, math.Min(1, outcome))), nil
}

// finishTurn records the scored move and checks whether the agent escaped.
func (e *Engine) finishTurn(outcome float64) TurnResult {
	record := e.pending.record
	record.Outcome = outcome
	e.table.Append(record)

	if e.cfg.PassiveLearning {
		if obstacle, ok := e.grid.LastObstacle(); ok {
			twin := record
			twin.Position = obstacle
			twin.Outcome = -outcome
			e.passive.Append(twin)
		}
	}

	e.pending = nil
	e.phase = PhaseIdle
	e.turns++
	e.cfg.Logger.Info(fmt.Sprintf("move to %v scored %.3f", e.agent, outcome))

	if e.grid.IsBorder(e.agent) {
		return e.end(Win, nil)
	}
	return Continue
}

// canEscape reports whether any open border cell is reachable from the agent.
func (e *Engine) canEscape() bool {
	for _, p := range e.grid.ValidEndpoints() {
		if e.grid.PathLength(e.agent.X, e.agent.Z, p.X, p.Z) < grid.Unreachable {
			return true
		}
	}
	return false
}

// end terminates the episode.
func (e *Engine) end(r TurnResult, reason error) TurnResult {
	e.phase = PhaseOver
	e.result = r
	e.reason = reason
	e.pending = nil

	if reason != nil {
		e.cfg.Logger.Info(fmt.Sprintf("episode lost at %v: %s", e.agent, reason))
	} else {
		e.cfg.Logger.Info(fmt.Sprintf("episode won at %v", e.agent))
	}
	if e.cfg.OnEnd != nil {
		e.cfg.OnEnd(r)
	}
	return r
}

func (e *Engine) currentResult() TurnResult {
	if e.phase == PhaseOver {
		return e.result
	}
	return Continue
}

// BlockWeight returns the inverse distance from the agent to pos.
func (e *Engine) BlockWeight(pos grid.Position) (float64, error) {
	return sensor.BlockWeight(e.grid, e.agent, pos)
}

// ResetGrid starts a new episode on an empty board. A turn in flight is discarded;
// the experience table is kept.
func (e *Engine) ResetGrid() {
	e.grid.Reset()
	e.agent = e.start
	e.phase = PhaseIdle
	e.result = Continue
	e.reason = nil
	e.pending = nil
	e.lastDecision = nil
	e.turns = 0
}

// ClearExperience empties both experience tables.
func (e *Engine) ClearExperience() {
	e.table.Clear()
	e.passive.Clear()
}

// Phase returns the current state machine phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Agent returns the agent position.
func (e *Engine) Agent() grid.Position {
	return e.agent
}

// Result returns Win or Lose once the episode is over, Continue before.
func (e *Engine) Result() TurnResult {
	return e.currentResult()
}

// Reason returns why the episode was lost, nil otherwise.
func (e *Engine) Reason() error {
	return e.reason
}

// LastDecision returns the decision of the most recent turn.
func (e *Engine) LastDecision() (Decision, bool) {
	if e.lastDecision == nil {
		return Decision{}, false
	}
	return *e.lastDecision, true
}

// Experience returns a copy of the experience table.
func (e *Engine) Experience() []experience.Record {
	return e.table.Records()
}

// PassiveExperience returns a copy of the obstacle-keyed twin table.
func (e *Engine) PassiveExperience() []experience.Record {
	return e.passive.Records()
}

// Snapshot describes the engine state for read-only consumers.
type Snapshot struct {
	Size           int
	Agent          grid.Position
	Obstacles      []grid.Position
	Phase          Phase
	Result         TurnResult
	Reason         string
	Turns          int
	ExperienceSize int
	PassiveSize    int
	LastDecision   *Decision
	Board          string
}

// Snapshot returns a copy of the engine state.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Size:           e.grid.Size(),
		Agent:          e.agent,
		Obstacles:      e.grid.BlockedCells(),
		Phase:          e.phase,
		Result:         e.currentResult(),
		Turns:          e.turns,
		ExperienceSize: e.table.Len(),
		PassiveSize:    e.passive.Len(),
		Board:          e.grid.Render(&e.agent),
	}
	if e.reason != nil {
		s.Reason = e.reason.Error()
	}
	if e.lastDecision != nil {
		d := *e.lastDecision
		s.LastDecision = &d
	}
	return s
}
