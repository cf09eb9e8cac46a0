// Package config loads runtime settings from the environment.
//
// Settings are read from ROSTER_* variables, optionally seeded from a .env
// file. Values already present in the environment take precedence over the
// file.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ironsheep/roster-ocr/internal/errors"
)

// DefaultEnvFile is loaded when Load is called without explicit files.
const DefaultEnvFile = ".env"

// Config holds the extraction settings.
type Config struct {
	// Image preparation
	MinDimension int

	// Recognition
	RecognitionTimeout time.Duration
	ImageTimeout       time.Duration
	TrialParallelism   int
	Languages          []string
	TessdataPrefix     string

	// Batch
	WorkerConcurrency int

	// Fusion
	CompleteThreshold float64

	LogLevel string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		MinDimension:       1200,
		RecognitionTimeout: 20 * time.Second,
		ImageTimeout:       2 * time.Minute,
		TrialParallelism:   1,
		Languages:          []string{"eng"},
		WorkerConcurrency:  4,
		CompleteThreshold:  70,
		LogLevel:           "info",
	}
}

// Load reads the given .env files (DefaultEnvFile when none are given;
// missing files are ignored) and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewInvalidConfigError(f, fmt.Errorf("failed to load env file: %w", err))
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from ROSTER_* environment variables layered over
// Default.
func FromEnv() (*Config, error) {
	d := Default()
	cfg := &Config{}
	var err error

	if cfg.MinDimension, err = getEnvAsIntOrDefault("ROSTER_MIN_DIMENSION", d.MinDimension); err != nil {
		return nil, err
	}
	if cfg.RecognitionTimeout, err = getEnvAsDurationOrDefault("ROSTER_RECOGNITION_TIMEOUT", d.RecognitionTimeout); err != nil {
		return nil, err
	}
	if cfg.ImageTimeout, err = getEnvAsDurationOrDefault("ROSTER_IMAGE_TIMEOUT", d.ImageTimeout); err != nil {
		return nil, err
	}
	if cfg.TrialParallelism, err = getEnvAsIntOrDefault("ROSTER_TRIAL_PARALLELISM", d.TrialParallelism); err != nil {
		return nil, err
	}
	if cfg.WorkerConcurrency, err = getEnvAsIntOrDefault("ROSTER_WORKER_CONCURRENCY", d.WorkerConcurrency); err != nil {
		return nil, err
	}
	if cfg.CompleteThreshold, err = getEnvAsFloatOrDefault("ROSTER_COMPLETE_THRESHOLD", d.CompleteThreshold); err != nil {
		return nil, err
	}
	cfg.Languages = splitList(getEnvOrDefault("ROSTER_LANGUAGES", strings.Join(d.Languages, "+")))
	cfg.TessdataPrefix = getEnvOrDefault("ROSTER_TESSDATA_PREFIX", os.Getenv("TESSDATA_PREFIX"))
	cfg.LogLevel = strings.ToLower(getEnvOrDefault("ROSTER_LOG_LEVEL", d.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.MinDimension < 100 || c.MinDimension > 8000 {
		return invalid("ROSTER_MIN_DIMENSION", "must be between 100 and 8000, got %d", c.MinDimension)
	}
	if c.RecognitionTimeout <= 0 {
		return invalid("ROSTER_RECOGNITION_TIMEOUT", "must be positive, got %v", c.RecognitionTimeout)
	}
	if c.ImageTimeout < c.RecognitionTimeout {
		return invalid("ROSTER_IMAGE_TIMEOUT", "must be at least the recognition timeout (%v), got %v", c.RecognitionTimeout, c.ImageTimeout)
	}
	if c.TrialParallelism < 1 || c.TrialParallelism > 64 {
		return invalid("ROSTER_TRIAL_PARALLELISM", "must be between 1 and 64, got %d", c.TrialParallelism)
	}
	if c.WorkerConcurrency < 1 || c.WorkerConcurrency > 100 {
		return invalid("ROSTER_WORKER_CONCURRENCY", "must be between 1 and 100, got %d", c.WorkerConcurrency)
	}
	if c.CompleteThreshold <= 0 || c.CompleteThreshold > 100 {
		return invalid("ROSTER_COMPLETE_THRESHOLD", "must be in (0, 100], got %v", c.CompleteThreshold)
	}
	if len(c.Languages) == 0 {
		return invalid("ROSTER_LANGUAGES", "at least one language is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return invalid("ROSTER_LOG_LEVEL", "must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}

func invalid(key, format string, args ...interface{}) error {
	return errors.NewInvalidConfigError(key, fmt.Errorf(format, args...))
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.NewInvalidConfigError(key, err)
	}
	return n, nil
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, errors.NewInvalidConfigError(key, err)
	}
	return f, nil
}

// getEnvAsDurationOrDefault accepts Go durations ("20s") or bare seconds.
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.NewInvalidConfigError(key, err)
	}
	return d, nil
}

// splitList splits "eng+fra" or "eng,fra" into its parts.
func splitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '+' || r == ',' || r == ' '
	})
	return parts
}
