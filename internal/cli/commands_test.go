package cli

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appcatalog/internal/catalog"
	"appcatalog/internal/config"
	"appcatalog/internal/indexer"
)

const feedTemplate = `---
File: DEP-11
Version: '0.12'
Origin: nixos
MediaBaseUrl: {{MEDIA}}
---
Type: desktop-application
ID: org.Example.App.desktop
Name: {C: Example}
Summary: {C: "An example"}
---
Type: desktop-application
ID: org.gnome.Chess.desktop
Name: Chess
Summary: Play the classic two-player board game
Categories: [Game, BoardGame]
Description:
  C: <p>Play chess.</p><ul><li>Against the computer</li></ul>
Screenshots:
  - source-image:
      url: chess/1.png
  - source-image:
      url: chess/missing.png
---
Type: runtime
ID: org.freedesktop.Platform
`

// testConfig writes a gzip feed under a temp dir and returns a config using it.
func testConfig(t *testing.T, mediaBase string) *config.Config {
	t.Helper()
	root := t.TempDir()
	feed := filepath.Join(root, "xmls", "nixos.yml.gz")
	require.NoError(t, os.MkdirAll(filepath.Dir(feed), 0o755))

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(strings.ReplaceAll(feedTemplate, "{{MEDIA}}", mediaBase)))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(feed, buf.Bytes(), 0o644))

	return &config.Config{
		DBPath:                filepath.Join(root, "cache", "apps.db"),
		AppStreamPath:         feed,
		FlatpakFeed:           filepath.Join(root, "flatpak", "missing", "appstream.xml.gz"),
		FlatpakRemote:         "flathub",
		NixBinary:             filepath.Join(root, "no-such-nix"),
		NixRegistry:           "nixpkgs",
		ExternalSearchTimeout: 2 * time.Second,
		LogLevel:              "error",
		LogFormat:             "text",
		CacheInvalidation:     "current",
		IngestBatchSize:       100,
		ScreenshotConcurrency: 2,
	}
}

func run(t *testing.T, cfg *config.Config, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(&RootOptions{LoadConfig: func() (*config.Config, error) { return cfg, nil }})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestIngest(t *testing.T) {
	cfg := testConfig(t, "https://media.example.org")

	out, err := run(t, cfg, "", "ingest", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   indexer.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Ran)

	local, ok := resp.Data.Source(catalog.SourceLocalAppStream)
	require.True(t, ok)
	assert.Equal(t, 2, local.Ingested)
	assert.Equal(t, 2, local.Skipped) // header and runtime
	flatpak, ok := resp.Data.Source(catalog.SourceFlatpak)
	require.True(t, ok)
	assert.True(t, flatpak.Unavailable)

	out, err = run(t, cfg, "", "ingest")
	require.NoError(t, err)
	assert.Contains(t, out, "already populated")

	out, err = run(t, cfg, "", "ingest", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 2")
}

func TestShow(t *testing.T) {
	cfg := testConfig(t, "https://media.example.org")

	out, err := run(t, cfg, "", "show", "org.Example.App.desktop", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			App catalog.App `json:"app"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	app := resp.Data.App
	assert.Equal(t, "Example", app.Name)
	assert.Equal(t, "org-example-app", app.InstallRef)
	assert.Equal(t, catalog.SourceLocalAppStream, app.SourceType)
	assert.Equal(t, []string{catalog.Uncategorized}, app.Categories)
	assert.Equal(t, []string{}, app.Screenshots)

	out, err = run(t, cfg, "", "show", "org.gnome.Chess.desktop")
	require.NoError(t, err)
	assert.Contains(t, out, "Chess (Nixpkgs)")
	assert.Contains(t, out, "• Against the computer")

	_, err = run(t, cfg, "", "show", "missing.desktop")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestBrowse(t *testing.T) {
	cfg := testConfig(t, "https://media.example.org")

	out, err := run(t, cfg, "", "browse", "Games")
	require.NoError(t, err)
	assert.Contains(t, out, "Chess")
	assert.NotContains(t, out, "Example")

	out, err = run(t, cfg, "", "browse", "Games", "--source", "flatpak")
	require.NoError(t, err)
	assert.Contains(t, out, "No applications found.")

	_, err = run(t, cfg, "", "browse", "--source", "snap")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSearch(t *testing.T) {
	cfg := testConfig(t, "https://media.example.org")

	out, err := run(t, cfg, "", "search", "board", "game", "--source", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "Chess")
	assert.NotContains(t, out, "nix search unavailable")

	// The configured nix binary does not exist, so the external leg fails.
	out, err = run(t, cfg, "", "search", "chess", "--source", "nixpkgs")
	require.NoError(t, err)
	assert.Contains(t, out, "Chess")
	assert.Contains(t, out, "nix search unavailable")

	_, err = run(t, cfg, "", "search", "chess", "--external")
	require.Error(t, err)
}

func TestSearch_Interactive(t *testing.T) {
	cfg := testConfig(t, "https://media.example.org")

	out, err := run(t, cfg, "chess\n", "search", "-i", "--source", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "== chess")
	assert.Contains(t, out, "Chess")
}

func TestIcon(t *testing.T) {
	cfg := testConfig(t, "https://media.example.org")
	placeholder := filepath.Join(t.TempDir(), "placeholder.png")
	require.NoError(t, os.WriteFile(placeholder, []byte("png"), 0o644))
	cfg.PlaceholderPath = placeholder

	out, err := run(t, cfg, "", "icon", "utilities-terminal")
	require.NoError(t, err)
	assert.Equal(t, "placeholder "+placeholder+"\n", out)

	_, err = run(t, cfg, "", "icon", "x", "--source-type", "snap")
	assert.Error(t, err)
}

func TestScreenshots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chess/1.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	outDir := t.TempDir()

	out, err := run(t, cfg, "", "screenshots", "org.gnome.Chess.desktop", "--out", outDir, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data []ScreenshotFile `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)

	assert.Empty(t, resp.Data[0].Error)
	data, err := os.ReadFile(resp.Data[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, ".png", filepath.Ext(resp.Data[0].Path))

	assert.NotEmpty(t, resp.Data[1].Error)
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, testConfig(t, "https://media.example.org"), "", "browse", "--format", "yaml")
	assert.Error(t, err)
}
