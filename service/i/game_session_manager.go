package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-escape/domain"
	"github.com/beka-birhanu/vinom-escape/game"
	"github.com/google/uuid"
)

// GameSessionManager hosts one escape game per session and drives its turns.
type GameSessionManager interface {
	NewSession(playerID uuid.UUID, username, mode string) (uuid.UUID, error)
	State(sessionID, playerID uuid.UUID) (game.Snapshot, error)
	PlaceObstacle(sessionID, playerID uuid.UUID, x, z int) (game.Snapshot, error)
	AutoObstacle(sessionID, playerID uuid.UUID) (game.Snapshot, error)
	Feedback(sessionID, playerID uuid.UUID, outcome float64) (game.Snapshot, error)
	BlockWeight(sessionID, playerID uuid.UUID, x, z int) (float64, error)
	Reset(sessionID, playerID uuid.UUID) (game.Snapshot, error)
	ClearExperience(sessionID, playerID uuid.UUID) error
	Close(sessionID, playerID uuid.UUID) error
	Episodes(ctx context.Context, playerID uuid.UUID, limit int64) ([]*dmn.Episode, error)
}
