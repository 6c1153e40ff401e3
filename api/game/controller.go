package gameapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/beka-birhanu/vinom-escape/api/identity"
	dmn "github.com/beka-birhanu/vinom-escape/domain"
	"github.com/beka-birhanu/vinom-escape/game"
	"github.com/beka-birhanu/vinom-escape/game/grid"
	"github.com/beka-birhanu/vinom-escape/game/placer"
	"github.com/beka-birhanu/vinom-escape/game/sensor"
	"github.com/beka-birhanu/vinom-escape/service"
	"github.com/beka-birhanu/vinom-escape/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 10
)

// GameController serves game sessions, episode history and the scoreboard.
type GameController struct {
	sessions   i.GameSessionManager
	scoreboard i.Scoreboard
}

// NewGameController creates a GameController.
func NewGameController(gsm i.GameSessionManager, sb i.Scoreboard) (*GameController, error) {
	if gsm == nil || sb == nil {
		return nil, errors.New("session manager and scoreboard are required")
	}
	return &GameController{
		sessions:   gsm,
		scoreboard: sb,
	}, nil
}

// RegisterPublic registers public routes.
func (gc *GameController) RegisterPublic(route *gin.RouterGroup) {
	route.GET("/scoreboard", gc.top)
}

// RegisterProtected registers protected routes.
func (gc *GameController) RegisterProtected(route *gin.RouterGroup) {
	sessions := route.Group("/sessions")
	{
		sessions.POST("", gc.newSession)
		sessions.GET("/:ID", gc.state)
		sessions.DELETE("/:ID", gc.close)
		sessions.POST("/:ID/obstacles", gc.placeObstacle)
		sessions.POST("/:ID/auto-obstacle", gc.autoObstacle)
		sessions.POST("/:ID/feedback", gc.feedback)
		sessions.GET("/:ID/weight", gc.weight)
		sessions.POST("/:ID/reset", gc.reset)
		sessions.DELETE("/:ID/experience", gc.clearExperience)
	}
	route.GET("/episodes", gc.episodes)
}

func (gc *GameController) newSession(ctx *gin.Context) {
	playerID, ok := identity.UserID(ctx)
	if !ok {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var request NewSessionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := gc.sessions.NewSession(playerID, identity.Username(ctx), request.Mode)
	if err != nil {
		writeError(ctx, err)
		return
	}
	s, err := gc.sessions.State(id, playerID)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, &NewSessionResponse{ID: id.String(), State: newStateResponse(s)})
}

func (gc *GameController) state(ctx *gin.Context) {
	sessionID, playerID, ok := ids(ctx)
	if !ok {
		return
	}
	s, err := gc.sessions.State(sessionID, playerID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newStateResponse(s))
}

func (gc *GameController) close(ctx *gin.Context) {
	sessionID, playerID, ok := ids(ctx)
	if !ok {
		return
	}
	if err := gc.sessions.Close(sessionID, playerID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (gc *GameController) placeObstacle(ctx *gin.Context) {
	sessionID, playerID, ok := ids(ctx)
	if !ok {
		return
	}

	var request ObstacleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := gc.sessions.PlaceObstacle(sessionID, playerID, *request.X, *request.Z)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newStateResponse(s))
}

func (gc *GameController) autoObstacle(ctx *gin.Context) {
	sessionID, playerID, ok := ids(ctx)
	if !ok {
		return
	}
	s, err := gc.sessions.AutoObstacle(sessionID, playerID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newStateResponse(s))
}

func (gc *GameController) feedback(ctx *gin.Context) {
	sessionID, playerID, ok := ids(ctx)
	if !ok {
		return
	}

	var request FeedbackRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := gc.sessions.Feedback(sessionID, playerID, *request.Outcome)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newStateResponse(s))
}

func (gc *GameController) weight(ctx *gin.Context) {
	sessionID, playerID, ok := ids(ctx)
	if !ok {
		return
	}

	x, errX := strconv.Atoi(ctx.Query("x"))
	z, errZ := strconv.Atoi(ctx.Query("z"))
	if errX != nil || errZ != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "x and z must be integers"})
		return
	}

	w, err := gc.sessions.BlockWeight(sessionID, playerID, x, z)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, &WeightResponse{X: x, Z: z, Weight: w})
}

func (gc *GameController) reset(ctx *gin.Context) {
	sessionID, playerID, ok := ids(ctx)
	if !ok {
		return
	}
	s, err := gc.sessions.Reset(sessionID, playerID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newStateResponse(s))
}

func (gc *GameController) clearExperience(ctx *gin.Context) {
	sessionID, playerID, ok := ids(ctx)
	if !ok {
		return
	}
	if err := gc.sessions.ClearExperience(sessionID, playerID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (gc *GameController) episodes(ctx *gin.Context) {
	playerID, ok := identity.UserID(ctx)
	if !ok {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	limit, err := queryLimit(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	episodes, err := gc.sessions.Episodes(ctx.Request.Context(), playerID, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not load episodes"})
		return
	}
	ctx.JSON(http.StatusOK, episodes)
}

func (gc *GameController) top(ctx *gin.Context) {
	limit, err := queryLimit(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := ctx.DefaultQuery("result", dmn.ResultTrapped)
	standings, err := gc.scoreboard.Top(ctx.Request.Context(), result, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not load scoreboard"})
		return
	}
	ctx.JSON(http.StatusOK, standings)
}

// ids returns the session in the path and the authenticated player, writing the
// error response itself when either is missing.
func ids(ctx *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	playerID, ok := identity.UserID(ctx)
	if !ok {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}

	sessionID, err := uuid.Parse(ctx.Param("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return uuid.Nil, uuid.Nil, false
	}
	return sessionID, playerID, true
}

func queryLimit(ctx *gin.Context) (int64, error) {
	raw := ctx.Query("limit")
	if raw == "" {
		return defaultListLimit, nil
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	return limit, nil
}

func writeError(ctx *gin.Context, err error) {
	ctx.JSON(statusOf(err), gin.H{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrWrongMode),
		errors.Is(err, game.ErrTurnInProgress),
		errors.Is(err, game.ErrEpisodeOver),
		errors.Is(err, game.ErrNotAwaitingFeedback),
		errors.Is(err, game.ErrNotMoving),
		errors.Is(err, placer.ErrBoardFull):
		return http.StatusConflict
	case errors.Is(err, game.ErrAgentCell),
		errors.Is(err, grid.ErrOutOfBounds),
		errors.Is(err, sensor.ErrSamePosition),
		errors.Is(err, dmn.ErrUnknownMode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
