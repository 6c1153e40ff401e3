package repo

import (
	"context"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-escape/domain"
	"github.com/beka-birhanu/vinom-escape/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultEpisodeLimit = 20
	maxEpisodeLimit     = 200
)

var _ i.EpisodeRepo = &EpisodeRepo{}

// EpisodeRepo stores finished episodes.
type EpisodeRepo struct {
	collection *mongo.Collection
}

// NewEpisodeRepo creates an EpisodeRepo on the given database collection.
func NewEpisodeRepo(client *mongo.Client, dbName, collectionName string) *EpisodeRepo {
	return &EpisodeRepo{
		collection: client.Database(dbName).Collection(collectionName),
	}
}

// EnsureIndexes indexes episodes by player and end time.
func (r *EpisodeRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "playerId", Value: 1}, {Key: "endedAt", Value: -1}},
	})
	return err
}

// Save inserts the episode. Saving the same episode twice overwrites it.
func (r *EpisodeRepo) Save(ctx context.Context, e *dmn.Episode) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": e.ID}, e, opts); err != nil {
		return fmt.Errorf("saving episode %s: %w", e.ID, err)
	}
	return nil
}

// ByPlayer returns the player's most recent episodes, newest first.
func (r *EpisodeRepo) ByPlayer(ctx context.Context, playerID uuid.UUID, limit int64) ([]*dmn.Episode, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"playerId": playerID}, recentFirst(limit))
	if err != nil {
		return nil, fmt.Errorf("finding episodes: %w", err)
	}
	defer cursor.Close(ctx)

	episodes := make([]*dmn.Episode, 0)
	if err := cursor.All(ctx, &episodes); err != nil {
		return nil, fmt.Errorf("decoding episodes: %w", err)
	}
	return episodes, nil
}

func recentFirst(limit int64) *options.FindOptions {
	switch {
	case limit <= 0:
		limit = defaultEpisodeLimit
	case limit > maxEpisodeLimit:
		limit = maxEpisodeLimit
	}
	return options.Find().SetSort(bson.D{{Key: "endedAt", Value: -1}}).SetLimit(limit)
}
