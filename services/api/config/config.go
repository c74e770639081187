package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vigilancia-chile/neumonia-monitor/services/api/dataset"
)

// Config holds environment-driven settings for the dashboard API.
type Config struct {
	DataDir       string
	DatabaseURL   string
	Port          int
	BearerToken   string
	CacheTTL      time.Duration
	RecentRows    int
	ForecastTotal dataset.ForecastTotal
	LogLevel      string
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		DataDir:       ".",
		Port:          8080,
		RecentRows:    100,
		ForecastTotal: dataset.ForecastTotalLiteral,
		LogLevel:      "info",
	}

	if dir := strings.TrimSpace(os.Getenv("DATA_DIR")); dir != "" {
		cfg.DataDir = dir
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if ttlStr := strings.TrimSpace(os.Getenv("CACHE_TTL")); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil || ttl < 0 {
			return cfg, fmt.Errorf("invalid CACHE_TTL: %s", ttlStr)
		}
		cfg.CacheTTL = ttl
	}

	if rowsStr := os.Getenv("RECENT_ROWS"); rowsStr != "" {
		if rows, err := strconv.Atoi(rowsStr); err == nil && rows > 0 {
			cfg.RecentRows = rows
		} else {
			return cfg, fmt.Errorf("invalid RECENT_ROWS: %s", rowsStr)
		}
	}

	policy, err := dataset.ParseForecastTotal(os.Getenv("FORECAST_TOTAL_POLICY"))
	if err != nil {
		return cfg, fmt.Errorf("invalid FORECAST_TOTAL_POLICY: %w", err)
	}
	cfg.ForecastTotal = policy

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// UseDatabase reports whether datasets are read from Postgres instead of CSV.
func (c Config) UseDatabase() bool {
	return c.DatabaseURL != ""
}
