package indexer

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"go.uber.org/mock/gomock"

	"appcatalog/internal/catalog"
	"appcatalog/internal/storage"
	storage_mocks "appcatalog/internal/storage/mocks"
)

const localFeed = `---
File: DEP-11
Version: '0.12'
Origin: nixos
---
Type: desktop-application
ID: org.Example.App.desktop
Name: {C: Example}
Summary: {C: "An example"}
---
Type: runtime
ID: org.freedesktop.Platform
---
Type: desktop-application
ID: broken.desktop
Categories:
  nested: map
---
Type: desktop-application
ID: org.gnome.Chess.desktop
Name: Chess
Summary: Play chess
Categories: [Game, BoardGame]
`

const flatpakFeed = `<?xml version="1.0" encoding="UTF-8"?>
<components version="0.8" origin="flathub">
  <component type="desktop-application">
    <id>org.gnome.Maps</id>
    <name>Maps</name>
    <summary>Find places</summary>
    <categories><category>Utility</category></categories>
  </component>
  <component type="runtime"><id>org.gnome.Platform</id></component>
</components>
`

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func setupStore(t *testing.T) (*storage.AppRepo, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "apps.db")
	db, err := storage.New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return storage.NewAppRepo(db), dbPath
}

func writeFeeds(t *testing.T) Sources {
	t.Helper()
	dir := t.TempDir()
	src := Sources{
		LocalFeed:     filepath.Join(dir, "nixos", "swcatalog", "yaml", "nixos_x86_64-linux.yml.gz"),
		FlatpakFeed:   filepath.Join(dir, "flatpak", "appstream", "flathub", "x86_64", "active", "appstream.xml.gz"),
		FlatpakOrigin: "flathub",
	}
	writeGzip(t, src.LocalFeed, localFeed)
	writeGzip(t, src.FlatpakFeed, flatpakFeed)
	return src
}

func TestNewPipeline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := storage_mocks.NewMockAppStore(ctrl)

	tests := []struct {
		name      string
		batchSize int
		want      int
	}{
		{name: "explicit batch size", batchSize: 50, want: 50},
		{name: "zero selects default", batchSize: 0, want: DefaultBatchSize},
		{name: "negative selects default", batchSize: -1, want: DefaultBatchSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline(store, Sources{}, tt.batchSize, "test.db")
			if p == nil {
				t.Fatal("NewPipeline() returned nil")
			}
			if p.batchSize != tt.want {
				t.Errorf("NewPipeline() batchSize = %v, want %v", p.batchSize, tt.want)
			}
		})
	}
}

func TestPipeline_EnsureCatalog_EndToEnd(t *testing.T) {
	repo, dbPath := setupStore(t)
	p := NewPipeline(repo, writeFeeds(t), 0, dbPath)
	ctx := context.Background()

	stats, err := p.EnsureCatalog(ctx)
	if err != nil {
		t.Fatalf("EnsureCatalog() error = %v", err)
	}
	if !stats.Ran {
		t.Fatal("EnsureCatalog() Ran = false on empty store")
	}

	local, ok := stats.Source(catalog.SourceLocalAppStream)
	if !ok {
		t.Fatal("EnsureCatalog() missing local stats")
	}
	if local.Ingested != 2 || local.Skipped != 2 || local.Malformed != 1 || local.DocsSeen != 5 {
		t.Errorf("local stats = %+v, want ingested=2 skipped=2 malformed=1 docs=5", local)
	}
	flatpak, _ := stats.Source(catalog.SourceFlatpak)
	if flatpak.Ingested != 1 || flatpak.Skipped != 1 {
		t.Errorf("flatpak stats = %+v, want ingested=1 skipped=1", flatpak)
	}

	app, err := repo.GetByID(ctx, "org.Example.App.desktop")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if app.Name != "Example" {
		t.Errorf("Name = %v, want Example", app.Name)
	}
	if app.InstallRef != "org-example-app" {
		t.Errorf("InstallRef = %v, want org-example-app", app.InstallRef)
	}
	if !reflect.DeepEqual(app.Categories, []string{catalog.Uncategorized}) {
		t.Errorf("Categories = %v, want [Uncategorized]", app.Categories)
	}
	if app.Screenshots == nil || len(app.Screenshots) != 0 {
		t.Errorf("Screenshots = %#v, want empty slice", app.Screenshots)
	}
	if app.SourceType != catalog.SourceLocalAppStream {
		t.Errorf("SourceType = %v, want local_appstream", app.SourceType)
	}

	maps, err := repo.GetBySource(ctx, catalog.SourceFlatpak, "org.gnome.Maps")
	if err != nil {
		t.Fatalf("GetBySource() error = %v", err)
	}
	if maps.Origin != "flathub" || maps.InstallRef != "org.gnome.Maps" {
		t.Errorf("flatpak row = %+v, want origin flathub and install ref org.gnome.Maps", maps)
	}

	// A populated store is left alone.
	stats, err = p.EnsureCatalog(ctx)
	if err != nil {
		t.Fatalf("EnsureCatalog() second call error = %v", err)
	}
	if stats.Ran {
		t.Error("EnsureCatalog() Ran = true on populated store")
	}
}

func TestPipeline_EnsureCatalog_MissingFeeds(t *testing.T) {
	repo, dbPath := setupStore(t)
	dir := t.TempDir()
	p := NewPipeline(repo, Sources{
		LocalFeed:   filepath.Join(dir, "missing.yml.gz"),
		FlatpakFeed: "",
	}, 0, dbPath)

	stats, err := p.EnsureCatalog(context.Background())
	if err != nil {
		t.Fatalf("EnsureCatalog() error = %v", err)
	}
	for _, src := range stats.Sources {
		if !src.Unavailable {
			t.Errorf("source %v Unavailable = false, want true", src.Source)
		}
		if src.Error != "" {
			t.Errorf("source %v Error = %v, want empty", src.Source, src.Error)
		}
	}

	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Count() = %v, want 0", n)
	}
}

func TestPipeline_EnsureCatalog_CountError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := storage_mocks.NewMockAppStore(ctrl)
	store.EXPECT().Count(gomock.Any()).Return(0, errors.New("disk I/O error"))

	p := NewPipeline(store, Sources{}, 0, "test.db")
	if _, err := p.EnsureCatalog(context.Background()); err == nil {
		t.Error("EnsureCatalog() expected error, got nil")
	}
}

func TestPipeline_Batching(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var sizes []int
	store := storage_mocks.NewMockAppStore(ctrl)
	store.EXPECT().Count(gomock.Any()).Return(0, nil)
	store.EXPECT().UpsertBatch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, apps []catalog.App) error {
			sizes = append(sizes, len(apps))
			return nil
		}).Times(2)

	src := writeFeeds(t)
	src.FlatpakFeed = ""
	p := NewPipeline(store, src, 1, "test.db")

	stats, err := p.EnsureCatalog(context.Background())
	if err != nil {
		t.Fatalf("EnsureCatalog() error = %v", err)
	}
	if !reflect.DeepEqual(sizes, []int{1, 1}) {
		t.Errorf("UpsertBatch sizes = %v, want [1 1]", sizes)
	}
	if stats.Ingested() != 2 {
		t.Errorf("Ingested() = %v, want 2", stats.Ingested())
	}
}

func TestPipeline_StoreErrorStopsSourceOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := storage_mocks.NewMockAppStore(ctrl)
	gomock.InOrder(
		store.EXPECT().UpsertBatch(gomock.Any(), gomock.Any()).Return(nil),
		store.EXPECT().UpsertBatch(gomock.Any(), gomock.Any()).Return(errors.New("database is locked")),
		store.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(errors.New("database is locked")),
		// The flatpak source still runs after the local source failed.
		store.EXPECT().UpsertBatch(gomock.Any(), gomock.Any()).Return(nil),
	)

	p := NewPipeline(store, writeFeeds(t), 1, "test.db")
	stats, err := p.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	local, _ := stats.Source(catalog.SourceLocalAppStream)
	if local.Error == "" {
		t.Error("local Error is empty, want store error")
	}
	if local.Ingested != 1 {
		t.Errorf("local Ingested = %v, want 1", local.Ingested)
	}
	flatpak, _ := stats.Source(catalog.SourceFlatpak)
	if flatpak.Error != "" || flatpak.Ingested != 1 {
		t.Errorf("flatpak stats = %+v, want ingested=1 without error", flatpak)
	}
	if !stats.Failed() {
		t.Error("Failed() = false, want true")
	}
}

func TestPipeline_RejectedRecordKeepsBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var stored []string
	store := storage_mocks.NewMockAppStore(ctrl)
	gomock.InOrder(
		store.EXPECT().UpsertBatch(gomock.Any(), gomock.Len(2)).
			Return(fmt.Errorf("%w: flatpak/org.gnome.Chess.desktop: UNIQUE constraint failed", storage.ErrRejected)),
		store.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, app catalog.App) error {
				stored = append(stored, app.ID)
				return nil
			}),
		store.EXPECT().Upsert(gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("%w: UNIQUE constraint failed", storage.ErrRejected)),
	)

	src := writeFeeds(t)
	src.FlatpakFeed = ""
	p := NewPipeline(store, src, 10, "test.db")
	stats, err := p.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	local, _ := stats.Source(catalog.SourceLocalAppStream)
	if local.Error != "" {
		t.Errorf("local Error = %v, want empty", local.Error)
	}
	if local.Ingested != 1 {
		t.Errorf("local Ingested = %v, want 1", local.Ingested)
	}
	// One undecodable document plus the rejected record.
	if local.Malformed != 2 {
		t.Errorf("local Malformed = %v, want 2", local.Malformed)
	}
	if !reflect.DeepEqual(stored, []string{"org.Example.App.desktop"}) {
		t.Errorf("stored = %v, want [org.Example.App.desktop]", stored)
	}
}

func TestPipeline_Refresh_ReplacesRows(t *testing.T) {
	repo, dbPath := setupStore(t)
	ctx := context.Background()

	stale := catalog.App{
		ID:         "org.gnome.Chess.desktop",
		Name:       "Old Chess",
		SourceType: catalog.SourceLocalAppStream,
	}
	if err := repo.Upsert(ctx, stale); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	p := NewPipeline(repo, writeFeeds(t), 0, dbPath)
	if _, err := p.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	got, err := repo.GetBySource(ctx, catalog.SourceLocalAppStream, "org.gnome.Chess.desktop")
	if err != nil {
		t.Fatalf("GetBySource() error = %v", err)
	}
	if got.Name != "Chess" {
		t.Errorf("Name = %v, want Chess", got.Name)
	}

	// Refresh is idempotent.
	if _, err := p.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %v, want 3", n)
	}
}

func TestPipeline_Refresh_CanceledContext(t *testing.T) {
	repo, dbPath := setupStore(t)
	p := NewPipeline(repo, writeFeeds(t), 0, dbPath)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Refresh(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Refresh() error = %v, want context.Canceled", err)
	}
}

func TestPipeline_EnsureCatalog_Concurrent(t *testing.T) {
	repo, dbPath := setupStore(t)
	p := NewPipeline(repo, writeFeeds(t), 0, dbPath)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.EnsureCatalog(ctx); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("EnsureCatalog() error = %v", err)
	}
	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %v, want 3", n)
	}
}

func TestPipelineStats(t *testing.T) {
	stats := Stats{
		Ran: true,
		Sources: []SourceStats{
			{Source: catalog.SourceLocalAppStream, Ingested: 3},
			{Source: catalog.SourceFlatpak, Ingested: 2},
		},
	}
	if got := stats.Ingested(); got != 5 {
		t.Errorf("Ingested() = %v, want 5", got)
	}
	if stats.Failed() {
		t.Error("Failed() = true, want false")
	}
	if _, ok := stats.Source(catalog.SourceNixpkgsSearch); ok {
		t.Error("Source(nixpkgs_search) ok = true, want false")
	}
}
