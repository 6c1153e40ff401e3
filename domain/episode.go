package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Play modes of a session.
const (
	ModeClassic = "classic" // Moves are scored by the reward function.
	ModeUser    = "user"    // The player scores every move.
	ModeAlgo    = "algo"    // The server places the obstacles.
)

// Episode results.
const (
	ResultEscaped = "escaped"
	ResultTrapped = "trapped"
)

var (
	ErrUnknownMode = errors.New("unknown play mode")
)

// ValidateMode reports whether mode names a play mode.
func ValidateMode(mode string) error {
	switch mode {
	case ModeClassic, ModeUser, ModeAlgo:
		return nil
	}
	return ErrUnknownMode
}

// Episode is the history entry of one finished game.
type Episode struct {
	ID             uuid.UUID `bson:"_id" json:"id"`
	PlayerID       uuid.UUID `bson:"playerId" json:"playerId"`
	SessionID      uuid.UUID `bson:"sessionId" json:"sessionId"`
	Mode           string    `bson:"mode" json:"mode"`
	Result         string    `bson:"result" json:"result"`
	Reason         string    `bson:"reason,omitempty" json:"reason,omitempty"`
	Turns          int       `bson:"turns" json:"turns"`
	Obstacles      int       `bson:"obstacles" json:"obstacles"`
	ExperienceSize int       `bson:"experienceSize" json:"experienceSize"`
	StartedAt      time.Time `bson:"startedAt" json:"startedAt"`
	EndedAt        time.Time `bson:"endedAt" json:"endedAt"`
}

// Duration returns how long the episode lasted.
func (e *Episode) Duration() time.Duration {
	return e.EndedAt.Sub(e.StartedAt)
}

// Trapped reports whether the player won the episode.
func (e *Episode) Trapped() bool {
	return e.Result == ResultTrapped
}

// Standing is a player's place on the scoreboard.
type Standing struct {
	Username string  `json:"username"`
	Score    float64 `json:"score"`
}
