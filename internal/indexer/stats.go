package indexer

import (
	"time"

	"appcatalog/internal/catalog"
)

// SourceStats contains statistics about ingesting one bulk feed.
type SourceStats struct {
	// Source is the source type the feed produces.
	Source catalog.SourceType `json:"source"`
	// Path is the feed file that was read.
	Path string `json:"path"`
	// Unavailable is set when the feed was not configured or the file was missing.
	Unavailable bool `json:"unavailable"`
	// DocsSeen is the number of documents read from the feed.
	DocsSeen int `json:"docs_seen"`
	// Ingested is the number of records written to the store.
	Ingested int `json:"ingested"`
	// Skipped is the number of documents that were not desktop applications.
	Skipped int `json:"skipped"`
	// Malformed is the number of documents that could not be decoded or that
	// the store rejected.
	Malformed int `json:"malformed"`
	// Error is set when ingestion of the source stopped early.
	Error string `json:"error,omitempty"`
	// Duration is the wall time spent on the source.
	Duration time.Duration `json:"duration"`
}

// Stats summarizes one ingestion run.
type Stats struct {
	// Ran is false when EnsureCatalog found a populated store and did nothing.
	Ran bool `json:"ran"`
	// Sources has one entry per feed, in ingestion order.
	Sources []SourceStats `json:"sources"`
}

// Ingested returns the total number of records written across sources.
func (s Stats) Ingested() int {
	total := 0
	for _, src := range s.Sources {
		total += src.Ingested
	}
	return total
}

// Failed reports whether any source stopped early.
func (s Stats) Failed() bool {
	for _, src := range s.Sources {
		if src.Error != "" {
			return true
		}
	}
	return false
}

// Source returns the stats for source, if it was part of the run.
func (s Stats) Source(source catalog.SourceType) (SourceStats, bool) {
	for _, src := range s.Sources {
		if src.Source == source {
			return src, true
		}
	}
	return SourceStats{}, false
}
