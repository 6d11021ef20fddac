package catalog

import (
	"fmt"
	"strings"
)

// SourceFilter is the logical source selector used by queries.
type SourceFilter string

const (
	// FilterNixpkgs matches local_appstream and nixpkgs_search rows.
	FilterNixpkgs SourceFilter = "nixpkgs"
	// FilterFlatpak matches flatpak rows only.
	FilterFlatpak SourceFilter = "flatpak"
	// FilterAll is unrestricted.
	FilterAll SourceFilter = "all"
)

// ParseSourceFilter parses a user supplied selector. An empty string is
// unrestricted.
func ParseSourceFilter(s string) (SourceFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FilterAll):
		return FilterAll, nil
	case string(FilterNixpkgs):
		return FilterNixpkgs, nil
	case string(FilterFlatpak):
		return FilterFlatpak, nil
	default:
		return "", fmt.Errorf("unknown source %q: must be one of nixpkgs, flatpak, all", s)
	}
}

// SourceTypes returns the row source types eligible under f.
// A nil result means no restriction.
func (f SourceFilter) SourceTypes() []SourceType {
	switch f {
	case FilterNixpkgs:
		return []SourceType{SourceLocalAppStream, SourceNixpkgsSearch}
	case FilterFlatpak:
		return []SourceType{SourceFlatpak}
	default:
		return nil
	}
}

// Allows reports whether a row of type t is eligible under f.
func (f SourceFilter) Allows(t SourceType) bool {
	types := f.SourceTypes()
	if types == nil {
		return true
	}
	for _, st := range types {
		if st == t {
			return true
		}
	}
	return false
}

// categoryLabels maps sidebar labels to the AppStream category vocabulary.
var categoryLabels = map[string]string{
	"Games":       "Game",
	"Socialize":   "Network",
	"Work":        "Office",
	"Development": "Development",
}

// CanonicalCategory maps a UI-facing label to the stored tag. Unknown labels
// pass through unchanged.
func CanonicalCategory(label string) string {
	if tag, ok := categoryLabels[label]; ok {
		return tag
	}
	return label
}

// SidebarCategories lists the browse labels in display order.
func SidebarCategories() []string {
	return []string{Featured, "Games", "Socialize", "Work", "Development"}
}
