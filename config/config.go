package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr    string
	RedisAddr   string
	PostgresURL string
	LogLevel    logrus.Level
}

// Load reads the service configuration from the environment. Variables from a .env file in the
// working directory are applied first; a variable already set in the environment wins.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env file: %w", err)
	}

	return FromEnv()
}

func FromEnv() (Config, error) {
	level, err := logrus.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("parsing LOG_LEVEL: %w", err)
	}

	cfg := Config{
		HTTPAddr:    getEnvOrDefault("HTTP_ADDR", ":8080"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		PostgresURL: os.Getenv("POSTGRES_URL"),
		LogLevel:    level,
	}

	if cfg.RedisAddr == "" {
		return Config{}, errors.New("REDIS_ADDR is required")
	}
	if cfg.PostgresURL == "" {
		return Config{}, errors.New("POSTGRES_URL is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
