package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	DBPath          string `envconfig:"DB_PATH" default:"~/.cache/alloy_store_apps.db"`
	AppStreamPath   string `envconfig:"NIXOS_APPSTREAM_DATA"`
	FlatpakRoot     string `envconfig:"FLATPAK_APPSTREAM_ROOT" default:"~/.local/share/flatpak/appstream"`
	FlatpakRemote   string `envconfig:"FLATPAK_REMOTE" default:"flathub"`
	FlatpakArch     string `envconfig:"FLATPAK_ARCH" default:"x86_64"`
	PlaceholderPath string `envconfig:"PLACEHOLDER_ICON" default:"images/placeholder.png"`

	NixBinary             string        `envconfig:"NIX_BINARY" default:"nix"`
	NixRegistry           string        `envconfig:"NIX_REGISTRY" default:"nixpkgs"`
	ExternalSearchTimeout time.Duration `envconfig:"EXTERNAL_SEARCH_TIMEOUT" default:"30s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	APIPort           string `envconfig:"API_PORT" default:"9000"`
	CacheInvalidation string `envconfig:"CATEGORY_CACHE_INVALIDATION" default:"current"`
	RefreshSchedule   string `envconfig:"REFRESH_SCHEDULE"`
	WatchFeeds        bool   `envconfig:"WATCH_FEEDS" default:"false"`
	IngestBatchSize   int    `envconfig:"INGEST_BATCH_SIZE" default:"500"`

	ScreenshotConcurrency int `envconfig:"SCREENSHOT_CONCURRENCY" default:"4"`

	// FlatpakFeed is derived from FlatpakRoot, FlatpakRemote and FlatpakArch.
	FlatpakFeed string `ignored:"true"`
}

// Load reads configuration from environment variables and returns a Config struct.
// If a .env file exists in the current directory or a parent, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	home, _ := os.UserHomeDir()
	cfg.DBPath = expandPath(cfg.DBPath, home)
	cfg.AppStreamPath = expandPath(cfg.AppStreamPath, home)
	cfg.FlatpakRoot = expandPath(cfg.FlatpakRoot, home)
	cfg.PlaceholderPath = expandPath(cfg.PlaceholderPath, home)

	if cfg.FlatpakRoot != "" {
		cfg.FlatpakFeed = filepath.Join(cfg.FlatpakRoot, cfg.FlatpakRemote, cfg.FlatpakArch, "active", "appstream.xml.gz")
	}

	if cfg.DBPath == "" {
		return nil, fmt.Errorf("DB_PATH must not be empty")
	}
	if cfg.IngestBatchSize <= 0 {
		return nil, fmt.Errorf("INGEST_BATCH_SIZE must be greater than 0")
	}
	if cfg.ExternalSearchTimeout <= 0 {
		return nil, fmt.Errorf("EXTERNAL_SEARCH_TIMEOUT must be greater than 0")
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return nil, err
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	return &cfg, nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	return level, nil
}

// loadDotEnv loads the first .env found walking up from the working directory.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// expandPath replaces a leading ~ with home.
func expandPath(path, home string) string {
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
