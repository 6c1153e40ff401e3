package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP              string        // Host IP for the server
	RESTPort            int           // Port for the REST API
	DBHost              string        // Hostname or IP address for the database
	DBPort              int           // Port number for the database
	DBUser              string        // Username for the database
	DBPassword          string        // Password for the database
	DBName              string        // Name of the database
	RedisHost           string        // Hostname or IP address for redis
	RedisPort           int           // Port number for redis
	RedisPassword       string        // Password for redis, empty when none
	RedisDB             int           // Redis logical database
	GinMode             string        // Mode for the Gin framework (e.g., release, debug, test)
	JWTSecret           string        // Secret key for JWT signing
	JWTIssuer           string        // Issuer claim for JWTs
	BoardSize           int           // Side length of the game board
	MoveDuration        time.Duration // How long the agent's move takes
	SessionIdleTimeout  time.Duration // Idle time after which a game session is evicted
	MaxSessions         int           // Live game sessions per player
	PassiveLearning     bool          // Record the obstacle-keyed twin experience table
	CorrectedSimilarity bool          // Anchor record similarity at the agent instead of the origin
	ScoreboardPrefix    string        // Key prefix of the redis scoreboard
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	return Config{
		DBHost:              mustGetEnv("DB_HOST"),
		DBPort:              mustGetEnvAsInt("DB_PORT"),
		DBUser:              mustGetEnv("DB_USER"),
		DBPassword:          mustGetEnv("DB_PASS"),
		DBName:              mustGetEnv("DB_NAME"),
		RedisHost:           mustGetEnv("REDIS_HOST"),
		RedisPort:           mustGetEnvAsInt("REDIS_PORT"),
		RedisPassword:       getEnvWithDefault("REDIS_PASSWORD", ""),
		RedisDB:             getEnvAsIntWithDefault("REDIS_DB", 0),
		GinMode:             getEnvWithDefault("GIN_MODE", "release"),
		JWTSecret:           mustGetEnv("JWT_SECRET"),
		JWTIssuer:           mustGetEnv("JWT_ISSUER"),
		HostIP:              mustGetEnv("HOST_IP"),
		RESTPort:            mustGetEnvAsInt("REST_PORT"),
		BoardSize:           getEnvAsIntWithDefault("BOARD_SIZE", 9),
		MoveDuration:        time.Duration(getEnvAsIntWithDefault("MOVE_DURATION_MS", 500)) * time.Millisecond,
		SessionIdleTimeout:  time.Duration(getEnvAsIntWithDefault("SESSION_IDLE_TIMEOUT_S", 1800)) * time.Second,
		MaxSessions:         getEnvAsIntWithDefault("MAX_SESSIONS_PER_PLAYER", 3),
		PassiveLearning:     getEnvAsBoolWithDefault("PASSIVE_LEARNING", false),
		CorrectedSimilarity: getEnvAsBoolWithDefault("CORRECTED_SIMILARITY", false),
		ScoreboardPrefix:    getEnvWithDefault("SCOREBOARD_PREFIX", "escape"),
	}
}

// mustGetEnv retrieves the value of an environment variable or logs a fatal error if not set.
func mustGetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("[APP] [FATAL] Environment variable %s is not set", key)
	}
	return value
}

// mustGetEnvAsInt retrieves the value of an environment variable as an integer or logs a fatal error if not set or cannot be parsed.
func mustGetEnvAsInt(key string) int {
	valueStr := mustGetEnv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

func getEnvAsBoolWithDefault(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be a boolean: %v", key, err)
	}
	return value
}
