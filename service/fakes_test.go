package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/vinom-escape/domain"
	"github.com/google/uuid"
)

var errNotFound = errors.New("not found")

type memUserRepo struct {
	users map[uuid.UUID]dmn.User
	sync.Mutex
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]dmn.User)}
}

func (r *memUserRepo) Save(_ context.Context, u *dmn.User) error {
	r.Lock()
	defer r.Unlock()
	r.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) ByID(_ context.Context, id uuid.UUID) (*dmn.User, error) {
	r.Lock()
	defer r.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, errNotFound
	}
	return &u, nil
}

func (r *memUserRepo) ByUsername(_ context.Context, username string) (*dmn.User, error) {
	r.Lock()
	defer r.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, errNotFound
}

type memEpisodeRepo struct {
	episodes []*dmn.Episode
	sync.Mutex
}

func (r *memEpisodeRepo) Save(_ context.Context, e *dmn.Episode) error {
	r.Lock()
	defer r.Unlock()
	r.episodes = append(r.episodes, e)
	return nil
}

func (r *memEpisodeRepo) ByPlayer(_ context.Context, playerID uuid.UUID, limit int64) ([]*dmn.Episode, error) {
	r.Lock()
	defer r.Unlock()
	var out []*dmn.Episode
	for i := len(r.episodes) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if r.episodes[i].PlayerID == playerID {
			out = append(out, r.episodes[i])
		}
	}
	return out, nil
}

type memScoreboard struct {
	scores map[string]map[string]float64
	sync.Mutex
}

func newMemScoreboard() *memScoreboard {
	return &memScoreboard{scores: make(map[string]map[string]float64)}
}

func (s *memScoreboard) Record(_ context.Context, username, result string) error {
	s.Lock()
	defer s.Unlock()
	if s.scores[result] == nil {
		s.scores[result] = make(map[string]float64)
	}
	s.scores[result][username]++
	return nil
}

func (s *memScoreboard) Top(_ context.Context, result string, limit int64) ([]dmn.Standing, error) {
	s.Lock()
	defer s.Unlock()
	var out []dmn.Standing
	for name, score := range s.scores[result] {
		out = append(out, dmn.Standing{Username: name, Score: score})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type countingLocker struct {
	locks int
	mu    sync.Mutex
}

func (l *countingLocker) Lock(_ context.Context, _ string) (func(), error) {
	l.mu.Lock()
	l.locks++
	l.mu.Unlock()
	return func() {}, nil
}

type stubTokenizer struct {
	claims map[string]interface{}
}

func (s *stubTokenizer) Generate(claims map[string]interface{}, _ time.Duration) (string, error) {
	s.claims = claims
	return "token", nil
}

func (s *stubTokenizer) Decode(string) (map[string]interface{}, error) {
	return s.claims, nil
}

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}
