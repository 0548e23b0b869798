package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	CoinGeckoURL          string
	DatabaseURL           string
	CacheFreshness        time.Duration
	CacheSweepInterval    time.Duration
	QuoteRefreshInterval  time.Duration
	QuoteStaleThreshold   time.Duration
	QuoteSnapshotLimit    int
	HTTPPort              string
	AdminAPIKey           string
	ExportXLSXPath        string
	SpreadsheetID         string
	GoogleCredentialsJSON string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		CoinGeckoURL:          envOrDefault("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		DatabaseURL:           envOrDefaultWarn("DATABASE_URL", ""),
		CacheFreshness:        envOrDefaultDuration("CACHE_FRESHNESS", 60*time.Second),
		CacheSweepInterval:    envOrDefaultDuration("CACHE_SWEEP_INTERVAL", 5*time.Minute),
		QuoteRefreshInterval:  envOrDefaultDuration("QUOTE_REFRESH_INTERVAL", 10*time.Minute),
		QuoteStaleThreshold:   envOrDefaultDuration("QUOTE_STALE_THRESHOLD", 2*time.Hour),
		QuoteSnapshotLimit:    envOrDefaultInt("QUOTE_SNAPSHOT_LIMIT", 250),
		HTTPPort:              envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:           envOrDefault("ADMIN_API_KEY", ""),
		ExportXLSXPath:        envOrDefault("EXPORT_XLSX_PATH", "statement.xlsx"),
		SpreadsheetID:         envOrDefault("SPREADSHEET_ID", ""),
		GoogleCredentialsJSON: envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
