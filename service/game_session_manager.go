package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/vinom-escape/domain"
	"github.com/beka-birhanu/vinom-escape/game"
	"github.com/beka-birhanu/vinom-escape/game/grid"
	"github.com/beka-birhanu/vinom-escape/game/placer"
	"github.com/beka-birhanu/vinom-escape/service/i"
	"github.com/google/uuid"
)

const (
	defaultBoardSize   = 9
	defaultIdleTimeout = 30 * time.Minute
	defaultMaxSessions = 3
	persistTimeout     = 5 * time.Second
)

// Session errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrWrongMode       = errors.New("operation not available in this play mode")
	ErrStopped         = errors.New("session manager stopped")
)

var _ i.GameSessionManager = &GameSessionManager{}

// session is one hosted game. Its mutex serialises every access to the engine.
type session struct {
	id         uuid.UUID
	playerID   uuid.UUID
	username   string
	mode       string
	engine     *game.Engine
	blocker    *placer.Blocker
	startedAt  time.Time
	obstacles  int
	lastActive time.Time
	closed     bool
	generation uint64      // Bumped to invalidate pending move timers.
	timer      *time.Timer // Pending move completion, nil when none.
	idle       *time.Timer // Fires when the session may have been abandoned.
	sync.Mutex
}

// GameSessionManager hosts escape games and drives their turns. Move animation is
// simulated with timers; finished episodes are persisted in the background.
type GameSessionManager struct {
	sessions            map[uuid.UUID]*session
	boardSize           int
	moveDuration        time.Duration
	idleTimeout         time.Duration
	maxSessions         int
	passiveLearning     bool
	correctedSimilarity bool
	episodes            i.EpisodeRepo
	users               i.UserRepo
	scoreboard          i.Scoreboard
	locker              i.Locker
	logger              i.Logger
	seed                func() int64
	wg                  sync.WaitGroup
	stopped             bool
	sync.RWMutex
}

// Config configures a GameSessionManager.
type Config struct {
	BoardSize           int
	MoveDuration        time.Duration
	IdleTimeout         time.Duration // Sessions untouched this long are evicted. Defaults to 30 minutes.
	MaxSessions         int           // Live sessions per player; opening one more evicts the least recently used.
	PassiveLearning     bool
	CorrectedSimilarity bool
	EpisodeRepo         i.EpisodeRepo
	UserRepo            i.UserRepo
	Scoreboard          i.Scoreboard
	Locker              i.Locker // Optional; guards the read-modify-write of player tallies.
	Logger              i.Logger
	Seed                func() int64 // Optional; seeds each session's random source.
}

// NewGameSessionManager creates a session manager.
func NewGameSessionManager(c *Config) (*GameSessionManager, error) {
	if c.EpisodeRepo == nil || c.UserRepo == nil || c.Scoreboard == nil || c.Logger == nil {
		return nil, errors.New("episode repo, user repo, scoreboard and logger are required")
	}

	size := c.BoardSize
	if size == 0 {
		size = defaultBoardSize
	}
	idleTimeout := c.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleTimeout
	}
	maxSessions := c.MaxSessions
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	seed := c.Seed
	if seed == nil {
		seed = func() int64 { return time.Now().UnixNano() }
	}

	return &GameSessionManager{
		sessions:            make(map[uuid.UUID]*session),
		boardSize:           size,
		moveDuration:        c.MoveDuration,
		idleTimeout:         idleTimeout,
		maxSessions:         maxSessions,
		passiveLearning:     c.PassiveLearning,
		correctedSimilarity: c.CorrectedSimilarity,
		episodes:            c.EpisodeRepo,
		users:               c.UserRepo,
		scoreboard:          c.Scoreboard,
		locker:              c.Locker,
		logger:              c.Logger,
		seed:                seed,
	}, nil
}

// NewSession starts a game for the player in the given mode.
func (g *GameSessionManager) NewSession(playerID uuid.UUID, username, mode string) (uuid.UUID, error) {
	if err := dmn.ValidateMode(mode); err != nil {
		return uuid.Nil, err
	}

	scoring := game.ScoreAuto
	if mode == dmn.ModeUser {
		scoring = game.ScoreExternal
	}

	rng := rand.New(rand.NewSource(g.seed()))
	s := &session{
		playerID:   playerID,
		username:   username,
		mode:       mode,
		blocker:    placer.NewBlocker(rng),
		startedAt:  time.Now(),
		lastActive: time.Now(),
	}

	engine, err := game.New(game.Config{
		Size:                g.boardSize,
		Scoring:             scoring,
		MoveDuration:        g.moveDuration,
		PassiveLearning:     g.passiveLearning,
		CorrectedSimilarity: g.correctedSimilarity,
		Rand:                rng,
		Logger:              g.logger,
		OnEnd:               func(r game.TurnResult) { g.onEnd(s, r) },
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating engine: %w", err)
	}
	s.engine = engine

	g.Lock()
	if g.stopped {
		g.Unlock()
		return uuid.Nil, ErrStopped
	}
	g.evictOverflow(playerID)
	s.id = uuid.New()
	for {
		if _, ok := g.sessions[s.id]; !ok {
			break
		}
		s.id = uuid.New()
	}
	g.sessions[s.id] = s
	id := s.id
	s.idle = time.AfterFunc(g.idleTimeout, func() { g.reap(id) })
	g.Unlock()

	g.logger.Info(fmt.Sprintf("started %s session %s for player %s", mode, id, playerID))
	return id, nil
}

// State returns the current state of the session.
func (g *GameSessionManager) State(sessionID, playerID uuid.UUID) (game.Snapshot, error) {
	s, err := g.acquire(sessionID, playerID)
	if err != nil {
		return game.Snapshot{}, err
	}
	defer s.Unlock()
	return s.engine.Snapshot(), nil
}

// PlaceObstacle blocks (x, z) and starts the agent's turn.
func (g *GameSessionManager) PlaceObstacle(sessionID, playerID uuid.UUID, x, z int) (game.Snapshot, error) {
	s, err := g.acquire(sessionID, playerID)
	if err != nil {
		return game.Snapshot{}, err
	}
	defer s.Unlock()

	if s.mode == dmn.ModeAlgo {
		return game.Snapshot{}, ErrWrongMode
	}
	if err := s.engine.AddObstacle(x, z); err != nil {
		return game.Snapshot{}, err
	}
	s.obstacles++

	if err := g.startTurn(s); err != nil {
		return game.Snapshot{}, err
	}
	return s.engine.Snapshot(), nil
}

// AutoObstacle lets the server place the obstacle and starts the agent's turn.
func (g *GameSessionManager) AutoObstacle(sessionID, playerID uuid.UUID) (game.Snapshot, error) {
	s, err := g.acquire(sessionID, playerID)
	if err != nil {
		return game.Snapshot{}, err
	}
	defer s.Unlock()

	if s.mode != dmn.ModeAlgo {
		return game.Snapshot{}, ErrWrongMode
	}
	if _, err := s.engine.AutoObstacle(s.blocker); err != nil {
		return game.Snapshot{}, err
	}
	s.obstacles++

	if err := g.startTurn(s); err != nil {
		return game.Snapshot{}, err
	}
	return s.engine.Snapshot(), nil
}

// Feedback scores the agent's last move in user mode.
func (g *GameSessionManager) Feedback(sessionID, playerID uuid.UUID, outcome float64) (game.Snapshot, error) {
	s, err := g.acquire(sessionID, playerID)
	if err != nil {
		return game.Snapshot{}, err
	}
	defer s.Unlock()

	if s.mode != dmn.ModeUser {
		return game.Snapshot{}, ErrWrongMode
	}
	if _, err := s.engine.SetExternalFeedback(outcome); err != nil {
		return game.Snapshot{}, err
	}
	return s.engine.Snapshot(), nil
}

// BlockWeight returns how strongly an obstacle at (x, z) would weigh on the agent.
func (g *GameSessionManager) BlockWeight(sessionID, playerID uuid.UUID, x, z int) (float64, error) {
	s, err := g.acquire(sessionID, playerID)
	if err != nil {
		return 0, err
	}
	defer s.Unlock()
	return s.engine.BlockWeight(grid.Position{X: x, Z: z})
}

// Reset clears the board and starts a new episode, keeping what the agent learned.
func (g *GameSessionManager) Reset(sessionID, playerID uuid.UUID) (game.Snapshot, error) {
	s, err := g.acquire(sessionID, playerID)
	if err != nil {
		return game.Snapshot{}, err
	}
	defer s.Unlock()

	s.cancelTimer()
	s.engine.ResetGrid()
	s.startedAt = time.Now()
	s.obstacles = 0
	return s.engine.Snapshot(), nil
}

// ClearExperience makes the agent forget everything it learned in the session.
func (g *GameSessionManager) ClearExperience(sessionID, playerID uuid.UUID) error {
	s, err := g.acquire(sessionID, playerID)
	if err != nil {
		return err
	}
	defer s.Unlock()
	s.engine.ClearExperience()
	return nil
}

// Close ends the session and drops its pending timers.
func (g *GameSessionManager) Close(sessionID, playerID uuid.UUID) error {
	g.Lock()
	defer g.Unlock()
	s, ok := g.sessions[sessionID]
	if !ok || s.playerID != playerID {
		return ErrSessionNotFound
	}
	g.drop(s)

	g.logger.Info(fmt.Sprintf("closed session %s", sessionID))
	return nil
}

// Episodes returns the player's most recent finished episodes.
func (g *GameSessionManager) Episodes(ctx context.Context, playerID uuid.UUID, limit int64) ([]*dmn.Episode, error) {
	return g.episodes.ByPlayer(ctx, playerID, limit)
}

// StopAll closes every session and waits for background persistence to finish.
// The manager rejects all calls afterwards.
func (g *GameSessionManager) StopAll() {
	g.Lock()
	g.stopped = true
	for _, s := range g.sessions {
		g.drop(s)
	}
	g.Unlock()
	g.wg.Wait()
}

// Wait blocks until every finished episode has been persisted.
func (g *GameSessionManager) Wait() {
	g.wg.Wait()
}

// acquire returns the player's session locked and marks it active.
func (g *GameSessionManager) acquire(sessionID, playerID uuid.UUID) (*session, error) {
	g.RLock()
	s, ok := g.sessions[sessionID]
	g.RUnlock()
	if !ok || s.playerID != playerID {
		return nil, ErrSessionNotFound
	}

	s.Lock()
	if s.closed {
		s.Unlock()
		return nil, ErrSessionNotFound
	}
	s.lastActive = time.Now()
	return s, nil
}

// drop removes s and stops its timers. Callers hold g.
func (g *GameSessionManager) drop(s *session) {
	delete(g.sessions, s.id)
	s.Lock()
	s.closed = true
	s.cancelTimer()
	if s.idle != nil {
		s.idle.Stop()
	}
	s.Unlock()
}

// reap evicts the session if it has not been touched for the idle timeout,
// otherwise it re-arms the idle timer for the remaining time.
func (g *GameSessionManager) reap(sessionID uuid.UUID) {
	g.Lock()
	defer g.Unlock()
	s, ok := g.sessions[sessionID]
	if !ok {
		return
	}

	s.Lock()
	idleFor := time.Since(s.lastActive)
	if idleFor < g.idleTimeout {
		s.idle.Reset(g.idleTimeout - idleFor)
		s.Unlock()
		return
	}
	s.Unlock()

	g.drop(s)
	g.logger.Info(fmt.Sprintf("evicted session %s after %s idle", sessionID, idleFor.Round(time.Second)))
}

// evictOverflow drops the player's least recently used sessions until one more fits. Callers hold g.
func (g *GameSessionManager) evictOverflow(playerID uuid.UUID) {
	for {
		var (
			owned  int
			oldest *session
			at     time.Time
		)
		for _, s := range g.sessions {
			if s.playerID != playerID {
				continue
			}
			owned++
			s.Lock()
			last := s.lastActive
			s.Unlock()
			if oldest == nil || last.Before(at) {
				oldest, at = s, last
			}
		}
		if owned < g.maxSessions {
			return
		}
		g.drop(oldest)
		g.logger.Info(fmt.Sprintf("evicted session %s of player %s to open a new one", oldest.id, playerID))
	}
}

// startTurn runs the agent's turn and schedules the move completion. Callers hold s.
func (g *GameSessionManager) startTurn(s *session) error {
	if _, err := s.engine.RunTurn(); err != nil {
		return err
	}
	if s.engine.Phase() != game.PhaseMoving {
		return nil
	}

	gen := s.generation
	s.timer = time.AfterFunc(g.moveDuration, func() { g.completeMove(s, gen) })
	return nil
}

// completeMove resumes the turn suspended by the move animation.
func (g *GameSessionManager) completeMove(s *session, gen uint64) {
	s.Lock()
	defer s.Unlock()
	if gen != s.generation {
		return
	}
	s.timer = nil

	if _, err := s.engine.Advance(g.moveDuration); err != nil {
		g.logger.Error(fmt.Sprintf("completing move in session %s: %s", s.id, err))
	}
}

func (s *session) cancelTimer() {
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// onEnd is called by the engine, with s held, when an episode is won or lost.
func (g *GameSessionManager) onEnd(s *session, r game.TurnResult) {
	snapshot := s.engine.Snapshot()
	episode := &dmn.Episode{
		ID:             uuid.New(),
		PlayerID:       s.playerID,
		SessionID:      s.id,
		Mode:           s.mode,
		Result:         dmn.ResultEscaped,
		Reason:         snapshot.Reason,
		Turns:          snapshot.Turns,
		Obstacles:      s.obstacles,
		ExperienceSize: snapshot.ExperienceSize,
		StartedAt:      s.startedAt,
		EndedAt:        time.Now(),
	}
	if r == game.Lose {
		episode.Result = dmn.ResultTrapped
	}

	g.wg.Add(1)
	go g.persist(s.username, episode)
}

// persist stores a finished episode in the history, the scoreboard and the player's tally.
func (g *GameSessionManager) persist(username string, e *dmn.Episode) {
	defer g.wg.Done()
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := g.episodes.Save(ctx, e); err != nil {
		g.logger.Error(fmt.Sprintf("saving episode %s: %s", e.ID, err))
	}
	if err := g.scoreboard.Record(ctx, username, e.Result); err != nil {
		g.logger.Error(fmt.Sprintf("recording %s on the scoreboard: %s", username, err))
	}
	if err := g.updateTally(ctx, e); err != nil {
		g.logger.Error(fmt.Sprintf("updating tally of player %s: %s", e.PlayerID, err))
	}

	g.logger.Info(fmt.Sprintf("player %s: episode %s ended %s after %d turns", e.PlayerID, e.ID, e.Result, e.Turns))
}

func (g *GameSessionManager) updateTally(ctx context.Context, e *dmn.Episode) error {
	if g.locker != nil {
		unlock, err := g.locker.Lock(ctx, "tally:"+e.PlayerID.String())
		if err != nil {
			return err
		}
		defer unlock()
	}

	user, err := g.users.ByID(ctx, e.PlayerID)
	if err != nil {
		return err
	}
	user.RecordEpisode(e)
	return g.users.Save(ctx, user)
}
