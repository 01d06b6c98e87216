package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/bingo.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	RedisURL string     `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// NotifyChannel is the Redis channel notifications are published on.
	NotifyChannel string `env:"NOTIFY_CHANNEL" envDefault:"bingo:notifications"`
	// SubmitKeyHash is a bcrypt hash; empty leaves submissions open.
	SubmitKeyHash string `env:"SUBMIT_KEY_HASH"`
	// BoardFile is a JSON board imported at startup when set.
	BoardFile string `env:"BOARD_FILE"`

	StandingsInterval time.Duration `env:"STANDINGS_INTERVAL" envDefault:"1m"`
	StandingsPrefix   string        `env:"STANDINGS_PREFIX" envDefault:"bingo:leaderboard:"`

	NameOnlyTriggerTypes []string `env:"NAME_ONLY_TRIGGER_TYPES" envDefault:"CHAT" envSeparator:","`
	TaskPoints           int      `env:"TASK_POINTS" envDefault:"3"`
	BingoPoints          int      `env:"BINGO_POINTS" envDefault:"15"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.StandingsInterval <= 0 {
		return nil, fmt.Errorf("STANDINGS_INTERVAL must be positive, got %s", cfg.StandingsInterval)
	}
	if cfg.TaskPoints < 0 || cfg.BingoPoints < 0 {
		return nil, fmt.Errorf("TASK_POINTS and BINGO_POINTS must not be negative")
	}
	return &cfg, nil
}
