package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the calculator bot
type Config struct {
	// Worker configuration
	WorkerID string `env:"WORKER_ID" envDefault:"calculator-1"`

	// Telegram configuration (front end disabled when the token is empty)
	TelegramToken       string `env:"TELEGRAM_TOKEN"`
	TelegramTimeout     int    `env:"TELEGRAM_TIMEOUT" envDefault:"60"`
	TelegramConcurrency int    `env:"TELEGRAM_CONCURRENCY" envDefault:"8"`
	TelegramDebug       bool   `env:"TELEGRAM_DEBUG" envDefault:"false"`

	// Redis configuration
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASS" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Stream configuration
	StreamEnabled bool          `env:"STREAM_ENABLED" envDefault:"false"`
	StreamKey     string        `env:"STREAM_KEY" envDefault:"calculator.requests"`
	ConsumerGroup string        `env:"CONSUMER_GROUP" envDefault:"calculator-workers"`
	ResultStream  string        `env:"RESULT_STREAM" envDefault:"calculator.replies"`
	BlockTime     time.Duration `env:"BLOCK_TIME" envDefault:"1s"`
	MaxRetries    int           `env:"MAX_RETRIES" envDefault:"3"`
	ResultTTL     time.Duration `env:"RESULT_TTL" envDefault:"24h"`

	// Evaluator configuration
	MaxMessageLength int `env:"MAX_MESSAGE_LENGTH" envDefault:"1000"`
	MaxNestingDepth  int `env:"MAX_NESTING_DEPTH" envDefault:"100"`

	// Health check configuration
	HealthPort int `env:"HEALTH_PORT" envDefault:"8082"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// TelegramEnabled reports whether the Telegram front end should run
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.WorkerID == "" {
		return fmt.Errorf("WORKER_ID is required")
	}

	if !c.TelegramEnabled() && !c.StreamEnabled {
		return fmt.Errorf("no front end enabled: set TELEGRAM_TOKEN or STREAM_ENABLED=true")
	}

	if c.TelegramTimeout <= 0 {
		return fmt.Errorf("TELEGRAM_TIMEOUT must be positive")
	}

	if c.TelegramConcurrency <= 0 {
		return fmt.Errorf("TELEGRAM_CONCURRENCY must be positive")
	}

	if c.StreamEnabled {
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required")
		}

		if c.StreamKey == "" {
			return fmt.Errorf("STREAM_KEY is required")
		}

		if c.ConsumerGroup == "" {
			return fmt.Errorf("CONSUMER_GROUP is required")
		}

		if c.ResultStream == "" {
			return fmt.Errorf("RESULT_STREAM is required")
		}

		if c.BlockTime <= 0 {
			return fmt.Errorf("BLOCK_TIME must be positive")
		}

		if c.MaxRetries < 0 {
			return fmt.Errorf("MAX_RETRIES must be non-negative")
		}

		if c.ResultTTL < 0 {
			return fmt.Errorf("RESULT_TTL must be non-negative")
		}
	}

	if c.MaxMessageLength < 0 {
		return fmt.Errorf("MAX_MESSAGE_LENGTH must be non-negative")
	}

	if c.MaxNestingDepth <= 0 {
		return fmt.Errorf("MAX_NESTING_DEPTH must be positive")
	}

	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("HEALTH_PORT must be between 1 and 65535")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	return nil
}

// isValidLogLevel checks if the log level is valid
func isValidLogLevel(level string) bool {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	return validLevels[level]
}

// String returns a string representation of the config (without sensitive data)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{WorkerID=%s, Telegram=%v, Stream=%v, RedisAddr=%s, RedisDB=%d, StreamKey=%s, "+
			"ConsumerGroup=%s, ResultStream=%s, MaxMessageLength=%d, MaxNestingDepth=%d, "+
			"HealthPort=%d, LogLevel=%s}",
		c.WorkerID,
		c.TelegramEnabled(),
		c.StreamEnabled,
		c.RedisAddr,
		c.RedisDB,
		c.StreamKey,
		c.ConsumerGroup,
		c.ResultStream,
		c.MaxMessageLength,
		c.MaxNestingDepth,
		c.HealthPort,
		c.LogLevel,
	)
}
