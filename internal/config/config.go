// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings.
type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration
	JWTSecret       string
	Log             LogConfig
	Postgres        PostgresConfig
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string
}

// PostgresConfig holds database settings.
type PostgresConfig struct {
	Conn          string
	MaxOpenConns  int
	RunMigrations bool
}

const (
	defaultServerAddress   = "0.0.0.0:8080"
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxOpenConns    = 10
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
)

// Load reads envFile when it exists and then builds Config from the environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", defaultServerAddress),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", defaultLogLevel),
			Format: getEnv("LOG_FORMAT", defaultLogFormat),
		},
		Postgres: PostgresConfig{
			Conn: os.Getenv("POSTGRES_CONN"),
		},
	}

	if cfg.Postgres.Conn == "" {
		return nil, errors.New("POSTGRES_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	var err error
	if cfg.Postgres.MaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", defaultMaxOpenConns); err != nil {
		return nil, err
	}
	if cfg.Postgres.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", cfg.Postgres.MaxOpenConns)
	}
	if cfg.Postgres.RunMigrations, err = getEnvBool("RUN_MIGRATIONS", true); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, v, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, v, err)
	}
	return d, nil
}
