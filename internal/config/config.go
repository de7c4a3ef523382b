package config

import (
	"fmt"
	"os"
	"strconv"

	"ddtft/internal/logger"
)

const (
	defaultBatchWorkers = 12
	maxBatchWorkers     = 64
	defaultMaxFileBytes = 50 << 20
)

type Config struct {
	// Reference data; empty means the embedded dataset
	LookupFile string

	// Batch processing
	BatchWorkers int
	MaxFileBytes int64

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	workers, err := getEnvInt("BATCH_WORKERS", defaultBatchWorkers)
	if err != nil {
		return nil, err
	}
	maxBytes, err := getEnvInt("DDTFT_MAX_FILE_BYTES", defaultMaxFileBytes)
	if err != nil {
		return nil, err
	}

	config := &Config{
		LookupFile:    getEnv("DDTFT_LOOKUP_FILE", ""),
		BatchWorkers:  workers,
		MaxFileBytes:  int64(maxBytes),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.BatchWorkers < 1 || c.BatchWorkers > maxBatchWorkers {
		return fmt.Errorf("BATCH_WORKERS must be between 1 and %d, got %d", maxBatchWorkers, c.BatchWorkers)
	}
	if c.MaxFileBytes <= 0 {
		return fmt.Errorf("DDTFT_MAX_FILE_BYTES must be positive, got %d", c.MaxFileBytes)
	}
	if c.LookupFile != "" {
		if _, err := os.Stat(c.LookupFile); err != nil {
			return fmt.Errorf("DDTFT_LOOKUP_FILE: %w", err)
		}
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
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
