package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/encounter"
)

// Config carries the service configuration, read from environment
// variables with sensible defaults.
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// Storage selects the persistence backend: "redis" or "sqlite".
	Storage    string
	RedisURL   string
	SQLitePath string
	DataDir    string

	// Encounter holds the engine's numeric knobs.
	Encounter encounter.Config

	// ClockRate is game minutes per wall second at speed 1.
	ClockRate float64
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		Storage:     strings.ToLower(getEnv("STORAGE_BACKEND", "redis")),
		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),
		SQLitePath:  getEnv("SQLITE_PATH", "./data/sessions.sqlite"),
		DataDir:     getEnv("DATA_DIR", "./data"),
	}

	var err error
	enc := encounter.DefaultConfig()
	if enc.CooldownMinutes, err = getFloat("COOLDOWN_MINUTES", enc.CooldownMinutes); err != nil {
		return nil, err
	}
	if enc.TravelChance, err = getFloat("TRAVEL_ENCOUNTER_CHANCE", enc.TravelChance); err != nil {
		return nil, err
	}
	if enc.ArrivalChance, err = getFloat("LOCATION_ARRIVAL_CHANCE", enc.ArrivalChance); err != nil {
		return nil, err
	}
	if enc.EventChance, err = getFloat("RANDOM_EVENT_CHANCE", enc.EventChance); err != nil {
		return nil, err
	}
	if enc.MaxActive, err = getInt("MAX_ACTIVE_ENCOUNTERS", enc.MaxActive); err != nil {
		return nil, err
	}
	cfg.Encounter = enc

	if cfg.ClockRate, err = getFloat("CLOCK_RATE", 1.0); err != nil {
		return nil, err
	}

	if cfg.Storage != "redis" && cfg.Storage != "sqlite" {
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q: must be redis or sqlite", cfg.Storage)
	}
	if cfg.Encounter.MaxActive < 1 {
		return nil, fmt.Errorf("MAX_ACTIVE_ENCOUNTERS must be at least 1")
	}

	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
