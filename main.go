package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-escape/api"
	gameapi "github.com/beka-birhanu/vinom-escape/api/game"
	api_i "github.com/beka-birhanu/vinom-escape/api/i"
	"github.com/beka-birhanu/vinom-escape/api/identity"
	"github.com/beka-birhanu/vinom-escape/config"
	"github.com/beka-birhanu/vinom-escape/infrastruture/lock"
	logger "github.com/beka-birhanu/vinom-escape/infrastruture/log"
	"github.com/beka-birhanu/vinom-escape/infrastruture/repo"
	"github.com/beka-birhanu/vinom-escape/infrastruture/scoreboard"
	"github.com/beka-birhanu/vinom-escape/infrastruture/token"
	"github.com/beka-birhanu/vinom-escape/service"
	"github.com/beka-birhanu/vinom-escape/service/i"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	lockExpiry = 10 * time.Second
)

// Global variables for dependencies
var (
	mongoClient        *mongo.Client
	redisClient        *redis.Client
	userRepo           *repo.UserRepo
	episodeRepo        *repo.EpisodeRepo
	board              i.Scoreboard
	locker             i.Locker
	gameSessionManager *service.GameSessionManager
	gameController     api_i.Controller
	jwtTokenizer       i.Tokenizer
	authService        i.Authenticator
	authController     api_i.Controller
	router             *api.Router
	appLogger          i.Logger
)

func mustLogger(prefix, color string) i.Logger {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating %s logger: %v\n", prefix, err)
		os.Exit(1)
	}
	return l
}

func initMongo(ctx context.Context) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", config.Envs.DBUser, config.Envs.DBPassword, config.Envs.DBHost, config.Envs.DBPort)

	var err error
	mongoClient, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")
}

func initRedis(ctx context.Context) {
	redisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Envs.RedisHost, config.Envs.RedisPort),
		Password: config.Envs.RedisPassword,
		DB:       config.Envs.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Redis")
}

func initRepos(ctx context.Context) {
	userRepo = repo.NewUserRepo(mongoClient, config.Envs.DBName, "users")
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		appLogger.Warning(fmt.Sprintf("Creating user indexes: %v", err))
	}
	episodeRepo = repo.NewEpisodeRepo(mongoClient, config.Envs.DBName, "episodes")
	if err := episodeRepo.EnsureIndexes(ctx); err != nil {
		appLogger.Warning(fmt.Sprintf("Creating episode indexes: %v", err))
	}
	appLogger.Info("Repositories initialized")
}

func initScoreboard() {
	board = scoreboard.NewRedisScoreboard(redisClient, config.Envs.ScoreboardPrefix)
	locker = lock.NewRedsyncLocker(redisClient, config.Envs.ScoreboardPrefix, lockExpiry)
	appLogger.Info("Scoreboard initialized")
}

func initSessionManager() {
	var err error
	gameSessionManager, err = service.NewGameSessionManager(&service.Config{
		BoardSize:           config.Envs.BoardSize,
		MoveDuration:        config.Envs.MoveDuration,
		IdleTimeout:         config.Envs.SessionIdleTimeout,
		MaxSessions:         config.Envs.MaxSessions,
		PassiveLearning:     config.Envs.PassiveLearning,
		CorrectedSimilarity: config.Envs.CorrectedSimilarity,
		EpisodeRepo:         episodeRepo,
		UserRepo:            userRepo,
		Scoreboard:          board,
		Locker:              locker,
		Logger:              mustLogger("SESSION-MANAGER", config.ColorCyan),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session manager initialized")
}

func initGameController() {
	var err error
	gameController, err = gameapi.NewGameController(gameSessionManager, board)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating game controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Game controller initialized")
}

func initJWTTokenizer() {
	var err error
	jwtTokenizer, err = token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating JWT tokenizer: %v", err))
		os.Exit(1)
	}
	appLogger.Info("JWT Tokenizer initialized")
}

func initAuthService() {
	authService = service.NewAuth(userRepo, jwtTokenizer, mustLogger("AUTH", config.ColorMagenta))
	appLogger.Info("Auth service initialized")
}

func initAuthController() {
	authController = identity.NewIdentityServer(authService)
	appLogger.Info("Auth controller initialized")
}

func initRouter(t i.Tokenizer) {
	gin.SetMode(config.Envs.GinMode)
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{authController, gameController},
		AuthorizationMiddleware: identity.Authoriz(t),
	})
	appLogger.Info("Router initialized")
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	appLogger = mustLogger("APP", config.ColorGreen)

	initMongo(ctx)
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()
	initRedis(ctx)
	defer redisClient.Close()

	initRepos(ctx)
	initScoreboard()
	initSessionManager()
	// Runs after the router has drained, so no request can still end an episode.
	defer gameSessionManager.StopAll()
	initGameController()
	initJWTTokenizer()
	initAuthService()
	initAuthController()
	initRouter(jwtTokenizer)

	serveCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := router.Run(serveCtx); err != nil {
		appLogger.Error(fmt.Sprintf("Serving: %v", err))
		return
	}
	appLogger.Info("Server stopped")
}
