package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Quantum-Botworks/tik-dock-bot/internal/domain"
)

type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string // empty selects the in-memory store
	RedisURL    string // empty disables vote rate limiting
	LogLevel    string
	LogFormat   string

	Points domain.PointValues

	// Vote rate limiter (token bucket), only used when RedisURL is set.
	VoteRateCapacity  int
	VoteRatePerMinute int
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.Points.Share, err = getEnvInt("SHARE_POINTS", domain.DefaultSharePoints); err != nil {
		return nil, err
	}
	if cfg.Points.Vote, err = getEnvInt("VOTE_POINTS", domain.DefaultVotePoints); err != nil {
		return nil, err
	}
	if cfg.Points.FiveStarBonus, err = getEnvInt("FIVE_STAR_BONUS_POINTS", domain.DefaultFiveStarBonusPoints); err != nil {
		return nil, err
	}
	if cfg.VoteRateCapacity, err = getEnvInt("VOTE_RATE_CAPACITY", 5); err != nil {
		return nil, err
	}
	if cfg.VoteRatePerMinute, err = getEnvInt("VOTE_RATE_PER_MINUTE", 30); err != nil {
		return nil, err
	}

	if cfg.Points.Share < 0 || cfg.Points.Vote < 0 || cfg.Points.FiveStarBonus < 0 {
		return nil, fmt.Errorf("point values must be non-negative")
	}
	if cfg.VoteRateCapacity < 1 {
		return nil, fmt.Errorf("VOTE_RATE_CAPACITY must be at least 1")
	}
	if cfg.VoteRatePerMinute < 1 {
		return nil, fmt.Errorf("VOTE_RATE_PER_MINUTE must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
