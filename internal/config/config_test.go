package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envVars = []string{
	"DB_PATH", "NIXOS_APPSTREAM_DATA", "FLATPAK_APPSTREAM_ROOT", "FLATPAK_REMOTE",
	"FLATPAK_ARCH", "PLACEHOLDER_ICON", "NIX_BINARY", "NIX_REGISTRY",
	"EXTERNAL_SEARCH_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT", "API_PORT",
	"CATEGORY_CACHE_INVALIDATION", "REFRESH_SCHEDULE", "WATCH_FEEDS",
	"INGEST_BATCH_SIZE", "SCREENSHOT_CONCURRENCY", "HOME",
}

// isolate clears config variables and moves to a directory without a .env file.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	return home
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func(t *testing.T)
		wantErr     bool
		checkConfig func(t *testing.T, home string, cfg *Config)
	}{
		{
			name:     "defaults",
			setupEnv: func(t *testing.T) {},
			checkConfig: func(t *testing.T, home string, cfg *Config) {
				if cfg.DBPath != filepath.Join(home, ".cache", "alloy_store_apps.db") {
					t.Errorf("DBPath = %v", cfg.DBPath)
				}
				wantFeed := filepath.Join(home, ".local/share/flatpak/appstream/flathub/x86_64/active/appstream.xml.gz")
				if cfg.FlatpakFeed != wantFeed {
					t.Errorf("FlatpakFeed = %v, want %v", cfg.FlatpakFeed, wantFeed)
				}
				if cfg.AppStreamPath != "" {
					t.Errorf("AppStreamPath = %v, want empty", cfg.AppStreamPath)
				}
				if cfg.NixBinary != "nix" || cfg.NixRegistry != "nixpkgs" {
					t.Errorf("nix = %v %v", cfg.NixBinary, cfg.NixRegistry)
				}
				if cfg.ExternalSearchTimeout != 30*time.Second {
					t.Errorf("ExternalSearchTimeout = %v", cfg.ExternalSearchTimeout)
				}
				if cfg.CacheInvalidation != "current" || cfg.IngestBatchSize != 500 || cfg.APIPort != "9000" {
					t.Errorf("unexpected defaults: %+v", cfg)
				}
				if cfg.WatchFeeds || cfg.RefreshSchedule != "" {
					t.Errorf("refresh triggers enabled by default")
				}
			},
		},
		{
			name: "custom values",
			setupEnv: func(t *testing.T) {
				t.Setenv("DB_PATH", "/var/tmp/apps.db")
				t.Setenv("NIXOS_APPSTREAM_DATA", "~/feeds/nixos/xmls/data.yml.gz")
				t.Setenv("FLATPAK_REMOTE", "fedora")
				t.Setenv("FLATPAK_ARCH", "aarch64")
				t.Setenv("EXTERNAL_SEARCH_TIMEOUT", "5s")
				t.Setenv("LOG_FORMAT", "json")
				t.Setenv("LOG_LEVEL", "debug")
				t.Setenv("WATCH_FEEDS", "true")
				t.Setenv("REFRESH_SCHEDULE", "@daily")
			},
			checkConfig: func(t *testing.T, home string, cfg *Config) {
				if cfg.DBPath != "/var/tmp/apps.db" {
					t.Errorf("DBPath = %v", cfg.DBPath)
				}
				if cfg.AppStreamPath != filepath.Join(home, "feeds/nixos/xmls/data.yml.gz") {
					t.Errorf("AppStreamPath = %v", cfg.AppStreamPath)
				}
				if filepath.Base(filepath.Dir(filepath.Dir(filepath.Dir(cfg.FlatpakFeed)))) != "fedora" {
					t.Errorf("FlatpakFeed = %v", cfg.FlatpakFeed)
				}
				if cfg.ExternalSearchTimeout != 5*time.Second {
					t.Errorf("ExternalSearchTimeout = %v", cfg.ExternalSearchTimeout)
				}
				level, _ := cfg.SlogLevel()
				if level != slog.LevelDebug {
					t.Errorf("SlogLevel() = %v", level)
				}
				if !cfg.WatchFeeds || cfg.RefreshSchedule != "@daily" {
					t.Errorf("refresh triggers = %v %q", cfg.WatchFeeds, cfg.RefreshSchedule)
				}
			},
		},
		{
			name:     "invalid batch size",
			setupEnv: func(t *testing.T) { t.Setenv("INGEST_BATCH_SIZE", "0") },
			wantErr:  true,
		},
		{
			name:     "non-numeric batch size",
			setupEnv: func(t *testing.T) { t.Setenv("INGEST_BATCH_SIZE", "many") },
			wantErr:  true,
		},
		{
			name:     "invalid log format",
			setupEnv: func(t *testing.T) { t.Setenv("LOG_FORMAT", "xml") },
			wantErr:  true,
		},
		{
			name:     "invalid log level",
			setupEnv: func(t *testing.T) { t.Setenv("LOG_LEVEL", "loud") },
			wantErr:  true,
		},
		{
			name:     "invalid timeout",
			setupEnv: func(t *testing.T) { t.Setenv("EXTERNAL_SEARCH_TIMEOUT", "-1s") },
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := isolate(t)
			tt.setupEnv(t)

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if tt.checkConfig != nil {
				tt.checkConfig(t, home, cfg)
			}
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	dir, _ := os.Getwd()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("NIX_REGISTRY=flake:custom\nAPI_PORT=9100\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("API_PORT", "9200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.NixRegistry != "flake:custom" {
		t.Errorf("NixRegistry = %v, want flake:custom", cfg.NixRegistry)
	}
	// Existing environment wins over .env.
	if cfg.APIPort != "9200" {
		t.Errorf("APIPort = %v, want 9200", cfg.APIPort)
	}
	_ = os.Unsetenv("NIX_REGISTRY")
}

func TestExpandPath(t *testing.T) {
	tests := []struct {
		path string
		home string
		want string
	}{
		{path: "~/a/b", home: "/home/u", want: "/home/u/a/b"},
		{path: "~", home: "/home/u", want: "/home/u"},
		{path: "/abs", home: "/home/u", want: "/abs"},
		{path: "rel/~x", home: "/home/u", want: "rel/~x"},
		{path: "~/a", home: "", want: "~/a"},
		{path: "", home: "/home/u", want: ""},
	}
	for _, tt := range tests {
		if got := expandPath(tt.path, tt.home); got != tt.want {
			t.Errorf("expandPath(%q, %q) = %q, want %q", tt.path, tt.home, got, tt.want)
		}
	}
}
