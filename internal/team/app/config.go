package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseFile string // Optional: path to SQLite database file (default: ./team.db)

	DirectoryMode  string // Optional: user directory mode (local, remote) (default: local)
	DirectoryURL   string // Required in remote mode: base URL of the directory service
	DirectoryToken string // Optional: service token for the remote directory
	TokenSecret    string // Required in local mode: HS256 secret for bearer tokens
	TokenIssuer    string // Optional: issuer claim for locally minted tokens (default: lodgeline-team)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	InviteRetention      time.Duration // How long consumed invitations are kept (default: 90 days)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile: getEnvOrDefault("TEAM_DATABASE_FILE", "team.db"),

		DirectoryMode:  getEnvOrDefault("DIRECTORY_MODE", "local"),
		DirectoryURL:   os.Getenv("DIRECTORY_URL"),
		DirectoryToken: os.Getenv("DIRECTORY_SERVICE_TOKEN"),
		TokenSecret:    os.Getenv("TOKEN_SECRET"),
		TokenIssuer:    getEnvOrDefault("TOKEN_ISSUER", "lodgeline-team"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		InviteRetention:      getEnvDurationOrDefault("INVITE_RETENTION", 90*24*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Accept Go duration strings ("1h", "30m", "90s").
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
