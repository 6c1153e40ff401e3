// Package scoreboard keeps player standings in redis sorted sets.
package scoreboard

import (
	"context"
	"errors"
	"fmt"

	dmn "github.com/beka-birhanu/vinom-escape/domain"
	"github.com/beka-birhanu/vinom-escape/service/i"
	"github.com/redis/go-redis/v9"
)

const (
	boardKeyFmt  = "%s:scoreboard:%s"
	maxTopLimit  = 100
	defaultLimit = 10
)

var (
	ErrUnknownResult = errors.New("unknown episode result")
)

var _ i.Scoreboard = &RedisScoreboard{}

// RedisScoreboard keeps one sorted set per episode result, scored by episode count.
type RedisScoreboard struct {
	client *redis.Client
	prefix string
}

// NewRedisScoreboard creates a scoreboard storing its sets under prefix.
func NewRedisScoreboard(client *redis.Client, prefix string) *RedisScoreboard {
	return &RedisScoreboard{
		client: client,
		prefix: prefix,
	}
}

// Record adds one episode to the player's score for the result.
func (s *RedisScoreboard) Record(ctx context.Context, username, result string) error {
	key, err := s.key(result)
	if err != nil {
		return err
	}
	return s.client.ZIncrBy(ctx, key, 1, username).Err()
}

// Top returns the best players for the result, highest score first.
func (s *RedisScoreboard) Top(ctx context.Context, result string, limit int64) ([]dmn.Standing, error) {
	key, err := s.key(result)
	if err != nil {
		return nil, err
	}

	zs, err := s.client.ZRevRangeWithScores(ctx, key, 0, clampLimit(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	standings := make([]dmn.Standing, 0, len(zs))
	for _, z := range zs {
		name, ok := z.Member.(string)
		if !ok {
			continue
		}
		standings = append(standings, dmn.Standing{Username: name, Score: z.Score})
	}
	return standings, nil
}

func (s *RedisScoreboard) key(result string) (string, error) {
	switch result {
	case dmn.ResultEscaped, dmn.ResultTrapped:
		return fmt.Sprintf(boardKeyFmt, s.prefix, result), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownResult, result)
}

func clampLimit(limit int64) int64 {
	switch {
	case limit <= 0:
		return defaultLimit
	case limit > maxTopLimit:
		return maxTopLimit
	}
	return limit
}
