package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDataDir       = "."
	defaultImportTimeout = 2 * time.Minute
	defaultLogLevel      = "info"
)

// Config holds runtime configuration for the importer.
type Config struct {
	DatabaseURL   string
	DataDir       string
	ImportTimeout time.Duration
	LogLevel      string
	DryRun        bool
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	cfg.DataDir = strings.TrimSpace(os.Getenv("DATA_DIR"))
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}

	cfg.ImportTimeout = defaultImportTimeout
	if v := strings.TrimSpace(os.Getenv("IMPORT_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid IMPORT_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return cfg, fmt.Errorf("invalid IMPORT_TIMEOUT: %s", v)
		}
		cfg.ImportTimeout = d
	}

	cfg.LogLevel = strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	dryRun := strings.TrimSpace(os.Getenv("DRY_RUN"))
	cfg.DryRun = dryRun == "1" || strings.EqualFold(dryRun, "true")

	return cfg, nil
}
