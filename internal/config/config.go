package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" env:"PORT"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
		TTL      string `yaml:"ttl" env:"REDIS_TTL"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"POSTGRES_URL"`
	} `yaml:"postgres"`
	Trivia struct {
		BaseURL    string `yaml:"base_url" env:"TRIVIA_BASE_URL"`
		Amount     int    `yaml:"amount" env:"TRIVIA_AMOUNT"`
		Type       string `yaml:"type" env:"TRIVIA_TYPE"`
		Category   int    `yaml:"category" env:"TRIVIA_CATEGORY"`
		Difficulty string `yaml:"difficulty" env:"TRIVIA_DIFFICULTY"`
		Timeout    string `yaml:"timeout" env:"TRIVIA_TIMEOUT"`
	} `yaml:"trivia"`
	Quiz struct {
		QuestionSeconds int    `yaml:"question_seconds" env:"QUIZ_QUESTION_SECONDS"`
		WarningSeconds  int    `yaml:"warning_seconds" env:"QUIZ_WARNING_SECONDS"`
		TickInterval    string `yaml:"tick_interval" env:"QUIZ_TICK_INTERVAL"`
		IdleTTL         string `yaml:"idle_ttl" env:"QUIZ_IDLE_TTL"`
	} `yaml:"quiz"`
	HighScore struct {
		Key string `yaml:"key" env:"HIGHSCORE_KEY"`
	} `yaml:"highscore"`
	Log struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"log"`
	Play struct {
		DBPath string `yaml:"db_path" env:"PLAY_DB_PATH"`
	} `yaml:"play"`
}

// Load reads YAML config from path and applies environment overrides.
// A missing file is not an error: defaults and the environment still apply.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// NewLogger builds the process logger from the log section.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
