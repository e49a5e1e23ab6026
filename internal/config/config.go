// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration. It is loaded once at startup and
// passed down explicitly; nothing reads the environment after Load returns.
type Config struct {
	Port int

	// SQLite database file path. ":memory:" is accepted for tests.
	DBPath string

	// MongoDB connection for the note store.
	MongoURL    string
	MongoDBName string

	// HMAC secret for signing access tokens. Required, minimum 16 characters.
	JWTSecret string

	// Lifetime of issued access tokens.
	TokenTTL time.Duration

	// Origins allowed by the CORS middleware.
	CORSOrigins []string

	LogLevel string
}

// Load reads configuration from the environment, applying defaults where a
// variable is unset. It fails when JWT_SECRET is missing or too short — the
// server must never start with a guessable signing key.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        8080,
		DBPath:      getEnv("DB_PATH", "data/app.db"),
		MongoURL:    getEnv("MONGODB_URL", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGODB_DB_NAME", "app_db"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenTTL:    30 * time.Minute,
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if minutesStr := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); minutesStr != "" {
		minutes, err := strconv.Atoi(minutesStr)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("config: invalid ACCESS_TOKEN_EXPIRE_MINUTES %q", minutesStr)
		}
		cfg.TokenTTL = time.Duration(minutes) * time.Minute
	}

	if len(cfg.JWTSecret) < 16 {
		return nil, fmt.Errorf("config: JWT_SECRET must be set to at least 16 characters")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
