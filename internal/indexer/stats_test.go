package indexer

import (
	"testing"

	"appcatalog/internal/catalog"
)

func TestStats(t *testing.T) {
	tests := []struct {
		name         string
		stats        Stats
		wantIngested int
		wantFailed   bool
	}{
		{
			name:  "nothing ran",
			stats: Stats{},
		},
		{
			name: "both sources",
			stats: Stats{Ran: true, Sources: []SourceStats{
				{Source: catalog.SourceLocalAppStream, Ingested: 120, Skipped: 4},
				{Source: catalog.SourceFlatpak, Ingested: 30},
			}},
			wantIngested: 150,
		},
		{
			name: "flatpak unavailable",
			stats: Stats{Ran: true, Sources: []SourceStats{
				{Source: catalog.SourceLocalAppStream, Ingested: 12},
				{Source: catalog.SourceFlatpak, Unavailable: true},
			}},
			wantIngested: 12,
		},
		{
			name: "local stopped early",
			stats: Stats{Ran: true, Sources: []SourceStats{
				{Source: catalog.SourceLocalAppStream, Ingested: 500, Error: "yaml feed document 501: bad indentation"},
				{Source: catalog.SourceFlatpak, Ingested: 3},
			}},
			wantIngested: 503,
			wantFailed:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.Ingested(); got != tt.wantIngested {
				t.Errorf("Ingested() = %d, want %d", got, tt.wantIngested)
			}
			if got := tt.stats.Failed(); got != tt.wantFailed {
				t.Errorf("Failed() = %v, want %v", got, tt.wantFailed)
			}
		})
	}
}

func TestStats_Source(t *testing.T) {
	stats := Stats{Ran: true, Sources: []SourceStats{
		{Source: catalog.SourceLocalAppStream, Ingested: 2},
	}}

	got, ok := stats.Source(catalog.SourceLocalAppStream)
	if !ok || got.Ingested != 2 {
		t.Errorf("Source(local) = %+v, %v", got, ok)
	}
	if _, ok := stats.Source(catalog.SourceFlatpak); ok {
		t.Error("Source(flatpak) should be absent")
	}
}
