// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds everything the server needs to start.
type Config struct {
	ListenAddr   string
	DatabasePath string
	LogPath      string

	TMDBAPIKey   string
	TMDBLanguage string
	PinTMDBHost  bool
	CacheDir     string
	CacheTTL     time.Duration

	GoogleCredentialsPath string
	GoogleTokenPath       string

	Timezone string

	RateLimitPerMinute int
	CachePruneInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults for
// everything except the TMDB API key.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:            envOr("LISTEN_ADDR", ":8765"),
		DatabasePath:          envOr("DATABASE_PATH", "cinetrack.db"),
		LogPath:               envOr("LOG_PATH", "logs/cinetrack.log"),
		TMDBAPIKey:            os.Getenv("TMDB_API_KEY"),
		TMDBLanguage:          envOr("TMDB_LANGUAGE", "en-US"),
		CacheDir:              envOr("CACHE_DIR", "cache"),
		GoogleCredentialsPath: envOr("GOOGLE_CREDENTIALS_PATH", "credentials.json"),
		GoogleTokenPath:       envOr("GOOGLE_TOKEN_PATH", "token.json"),
		Timezone:              envOr("TIMEZONE", "Asia/Kolkata"),
	}

	if cfg.TMDBAPIKey == "" {
		return nil, fmt.Errorf("TMDB_API_KEY is required")
	}

	var err error
	if cfg.PinTMDBHost, err = envBool("TMDB_PIN_HOST", true); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = envDuration("CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CachePruneInterval, err = envDuration("CACHE_PRUNE_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = envInt("RATE_LIMIT_PER_MINUTE", 60); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
