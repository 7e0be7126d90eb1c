package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. Secrets and cookie behavior are
// carried here and passed to the components that need them, never read from
// the environment at call sites.
type Config struct {
	ServerPort    int
	DatabasePath  string
	AllowedOrigin string

	JWTSecret     string
	TokenLifetime time.Duration
	CookieSecure  bool

	PresenceAPIURL       string
	PresenceAPIKey       string
	PresenceSyncSchedule string
}

// Load loads configuration from environment variables or sets defaults. A
// .env file in the working directory is read first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, err
	}

	// Session tokens live for 7 days unless overridden.
	lifetime, err := time.ParseDuration(getEnv("TOKEN_LIFETIME", "168h"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:    port,
		DatabasePath:  getEnv("DATABASE_PATH", "./fluentlink.db"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),

		JWTSecret:     os.Getenv("JWT_SECRET_KEY"),
		TokenLifetime: lifetime,
		CookieSecure:  getEnv("APP_ENV", "development") == "production",

		PresenceAPIURL:       os.Getenv("PRESENCE_API_URL"),
		PresenceAPIKey:       os.Getenv("PRESENCE_API_KEY"),
		PresenceSyncSchedule: getEnv("PRESENCE_SYNC_SCHEDULE", "@every 5m"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
