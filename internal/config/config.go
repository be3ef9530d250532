// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
	StaticDir string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first if present; real environment variables
// win over .env entries. JWT_SECRET is the only required setting — signing
// tokens with a default secret would make every deployment forgeable.
func Load() (Config, error) {
	// Ignore the error: a missing .env just means env-only config.
	_ = godotenv.Load()

	cfg := Config{
		Port:      getEnvInt("PORT", 8080),
		DBPath:    getEnv("DB_PATH", "data/jobtrack.db"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		StaticDir: getEnv("STATIC_DIR", "web/dist"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
