// Package config loads application configuration from environment
// variables, optionally preloaded from a .env file.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/database"
)

// Config is the full application configuration: database connection,
// search backend, the PDF staging directories, and robot-runtime tuning.
type Config struct {
	Database database.Config

	ESURL   string
	ESIndex string

	// RedisURL enables the venues-aggregation cache when non-empty.
	RedisURL string

	PDFSource     string
	PDFProcessing string

	RobotPollInterval time.Duration
	RobotPollJitter   time.Duration
	RobotWorkerCount  int

	IndexCleanupInterval time.Duration
	IndexCleanupKeep     int
}

// LoadEnv preloads .env (if present) into the process environment, logging
// but not failing when the file is absent.
func LoadEnv(path string) {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		log.Printf("config: no .env file loaded from %s: %v", path, err)
	}
}

// Load reads Config from the environment. Database configuration delegates
// entirely to database.LoadConfigFromEnv so PG_DSN / DB_* behave
// identically to the persistence layer's own env-loading path.
func Load() (Config, error) {
	dbCfg, err := database.LoadConfigFromEnv()
	if err != nil {
		return Config{}, fmt.Errorf("config: database: %w", err)
	}

	pollInterval, err := parseDuration("ROBOT_POLL_INTERVAL", "5s")
	if err != nil {
		return Config{}, err
	}
	pollJitter, err := parseDuration("ROBOT_POLL_JITTER", "1s")
	if err != nil {
		return Config{}, err
	}
	workerCount, err := parseInt("ROBOT_WORKER_COUNT", "1")
	if err != nil {
		return Config{}, err
	}
	cleanupInterval, err := parseDuration("INDEX_CLEANUP_INTERVAL", "1h")
	if err != nil {
		return Config{}, err
	}
	cleanupKeep, err := parseInt("INDEX_CLEANUP_KEEP", "2")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Database:             dbCfg,
		ESURL:                getEnvOrDefault("ES_URL", "http://localhost:9200"),
		ESIndex:              getEnvOrDefault("ES_INDEX", "documents"),
		RedisURL:             os.Getenv("REDIS_URL"),
		PDFSource:            getEnvOrDefault("PDF_SOURCE", "./incoming"),
		PDFProcessing:        getEnvOrDefault("PDF_PROCESSING", "./processing"),
		RobotPollInterval:    pollInterval,
		RobotPollJitter:      pollJitter,
		RobotWorkerCount:     workerCount,
		IndexCleanupInterval: cleanupInterval,
		IndexCleanupKeep:     cleanupKeep,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks invariants Load cannot express through defaults alone.
func (c Config) Validate() error {
	if c.RobotWorkerCount < 1 {
		return fmt.Errorf("ROBOT_WORKER_COUNT must be at least 1")
	}
	if c.RobotPollInterval <= 0 {
		return fmt.Errorf("ROBOT_POLL_INTERVAL must be positive")
	}
	if strings.TrimSpace(c.ESIndex) == "" {
		return fmt.Errorf("ES_INDEX is required")
	}
	if c.IndexCleanupKeep < 1 {
		return fmt.Errorf("INDEX_CLEANUP_KEEP must be at least 1")
	}
	if c.IndexCleanupInterval <= 0 {
		return fmt.Errorf("INDEX_CLEANUP_INTERVAL must be positive")
	}
	return nil
}

// ESAddresses splits ESURL on commas, for a multi-node cluster configured
// via a single comma-separated env var.
func (c Config) ESAddresses() []string {
	parts := strings.Split(c.ESURL, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseInt(key, def string) (int, error) {
	n, err := strconv.Atoi(getEnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
