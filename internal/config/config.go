package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vytor/wordflash/internal/duplicates"
	"github.com/vytor/wordflash/internal/logger"
)

type Config struct {
	Addr                  string
	DBPath                string
	LogLevel              string
	ScanWorkerCount       int
	ScanQueueSize         int
	DuplicatePreset       string
	MultipleChoiceOptions int
	SessionMaxItems       int
	SessionTTLMinutes     int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                  envOr("ADDR", ":8080"),
		DBPath:                envOr("DB_PATH", "file:wordflash.db"),
		LogLevel:              envOr("LOG_LEVEL", "INFO"),
		ScanWorkerCount:       envIntOr("SCAN_WORKER_COUNT", 1),
		ScanQueueSize:         envIntOr("SCAN_QUEUE_SIZE", 8),
		DuplicatePreset:       envOr("DUPLICATE_PRESET", duplicates.PresetStandard),
		MultipleChoiceOptions: envIntOr("MULTIPLE_CHOICE_OPTIONS", 4),
		SessionMaxItems:       envIntOr("SESSION_MAX_ITEMS", 0),
		SessionTTLMinutes:     envIntOr("SESSION_TTL_MINUTES", 120),
	}
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if _, ok := logger.LookupLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	if c.ScanWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("SCAN_WORKER_COUNT must be at least 1, got %d", c.ScanWorkerCount))
	}
	if c.ScanQueueSize < 1 {
		errs = append(errs, fmt.Errorf("SCAN_QUEUE_SIZE must be at least 1, got %d", c.ScanQueueSize))
	}
	if _, err := duplicates.PresetByName(c.DuplicatePreset); err != nil {
		errs = append(errs, fmt.Errorf("DUPLICATE_PRESET: %w", err))
	}
	if c.MultipleChoiceOptions < 2 || c.MultipleChoiceOptions > 10 {
		errs = append(errs, fmt.Errorf("MULTIPLE_CHOICE_OPTIONS must be between 2 and 10, got %d", c.MultipleChoiceOptions))
	}
	if c.SessionMaxItems < 0 {
		errs = append(errs, fmt.Errorf("SESSION_MAX_ITEMS cannot be negative, got %d", c.SessionMaxItems))
	}
	if c.SessionTTLMinutes < 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL_MINUTES cannot be negative, got %d", c.SessionTTLMinutes))
	}
	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
