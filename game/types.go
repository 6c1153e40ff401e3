package game

import "fmt"

// Logger defines the logging methods the engine reports through.
type Logger interface {
	Info(string)
	Warning(string)
	Error(string)
}

// TurnResult is the outcome of a turn as seen by collaborators.
type TurnResult int

const (
	Continue TurnResult = iota // Continue means the episode goes on.
	Win                        // Win means the agent reached an open border cell.
	Lose                       // Lose means the agent is trapped.
)

func (r TurnResult) String() string {
	switch r {
	case Continue:
		return "continue"
	case Win:
		return "win"
	case Lose:
		return "lose"
	default:
		return fmt.Sprintf("TurnResult(%d)", int(r))
	}
}

// Phase is the state of the turn state machine.
type Phase int

const (
	PhaseIdle             Phase = iota // PhaseIdle waits for the next turn.
	PhaseMoving                        // PhaseMoving waits for the move animation to elapse.
	PhaseAwaitingFeedback              // PhaseAwaitingFeedback waits for an externally supplied outcome.
	PhaseOver                          // PhaseOver follows a win or a loss.
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseMoving:
		return "moving"
	case PhaseAwaitingFeedback:
		return "awaiting_feedback"
	case PhaseOver:
		return "over"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// ScoringMode selects who scores the agent's moves.
type ScoringMode int

const (
	ScoreAuto     ScoringMode = iota // ScoreAuto scores moves with the reward function.
	ScoreExternal                    // ScoreExternal waits for SetExternalFeedback.
)

// ParseScoringMode maps "auto" and "external" to a scoring mode.
func ParseScoringMode(s string) (ScoringMode, error) {
	switch s {
	case "", "auto":
		return ScoreAuto, nil
	case "external":
		return ScoreExternal, nil
	default:
		return ScoreAuto, fmt.Errorf("unknown scoring mode %q", s)
	}
}

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}
