package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-escape/domain"
)

// Scoreboard ranks players by the results of their episodes.
type Scoreboard interface {
	// Record adds one episode with the given result to the player's score.
	Record(ctx context.Context, username, result string) error

	// Top returns up to limit players with the highest count of the given result.
	Top(ctx context.Context, result string, limit int64) ([]dmn.Standing, error)
}

// Locker provides mutual exclusion across service instances.
type Locker interface {
	// Lock acquires the named lock. The returned function releases it.
	Lock(ctx context.Context, name string) (func(), error)
}
