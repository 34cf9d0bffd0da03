package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config application configuration
type Config struct {
	// Telegram
	TelegramToken       string `env:"TELEGRAM_BOT_TOKEN,required"`
	TelegramBotUsername string `env:"TELEGRAM_BOT_USERNAME,required"` // used for t.me deep links after auth

	// Threads API
	ThreadsAppID       string `env:"THREADS_APP_ID,required"`
	ThreadsAppSecret   string `env:"THREADS_APP_SECRET,required"`
	ThreadsRedirectURI string `env:"THREADS_REDIRECT_URI,required"`

	// Auth callback server
	BaseURL  string `env:"BASE_URL,required"` // public base URL, e.g. https://bot.example.com
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// Database
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/threadsync.db"`

	// Polling
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"60s"`
	PollWorkers  int           `env:"POLL_WORKERS" envDefault:"4"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be positive, got %s", cfg.PollInterval)
	}
	if cfg.PollWorkers < 1 {
		return nil, fmt.Errorf("POLL_WORKERS must be at least 1, got %d", cfg.PollWorkers)
	}

	return cfg, nil
}
