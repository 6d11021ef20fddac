package catalog

import "strings"

// SourceType identifies the system a catalog row came from.
type SourceType string

const (
	SourceLocalAppStream SourceType = "local_appstream"
	SourceFlatpak        SourceType = "flatpak"
	SourceNixpkgsSearch  SourceType = "nixpkgs_search"
)

// ParseSourceType maps a stored value to a SourceType.
// Empty or unknown values are legacy rows and decode as local_appstream.
func ParseSourceType(s string) SourceType {
	switch SourceType(s) {
	case SourceFlatpak:
		return SourceFlatpak
	case SourceNixpkgsSearch:
		return SourceNixpkgsSearch
	default:
		return SourceLocalAppStream
	}
}

// UsesAttributePath reports whether InstallRef is a package attribute path
// (as opposed to a remote application ref).
func (s SourceType) UsesAttributePath() bool {
	return s != SourceFlatpak
}

const (
	// NotAvailable marks an absent optional descriptive field.
	NotAvailable = "N/A"
	// Uncategorized is the single tag given to rows without categories.
	Uncategorized = "Uncategorized"
	// DefaultIcon is the generic icon name used when a document has none.
	DefaultIcon = "application-x-executable"
	// Featured bypasses category filtering.
	Featured = "Featured"
)

// GenericIconNames are system icon names that never map to a cached file.
var GenericIconNames = []string{
	DefaultIcon,
	"image-missing",
	"utilities-terminal",
	"text-x-generic",
}

// IsGenericIcon reports whether name is one of GenericIconNames.
func IsGenericIcon(name string) bool {
	for _, g := range GenericIconNames {
		if g == name {
			return true
		}
	}
	return false
}

// App is the canonical catalog record shared by every source.
type App struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Developer   string     `json:"developer"`
	License     string     `json:"license"`
	Homepage    string     `json:"homepage"`
	Screenshots []string   `json:"screenshots"`
	Categories  []string   `json:"category"`
	SourceType  SourceType `json:"source_type"`
	InstallRef  string     `json:"install_ref"`
	Origin      string     `json:"origin,omitempty"`
}

// Normalize applies the absent-value contract in place: N/A for optional
// descriptive fields, empty screenshots instead of nil, Uncategorized for an
// empty category set and local_appstream for an empty source type.
func (a *App) Normalize() {
	if a.Developer == "" {
		a.Developer = NotAvailable
	}
	if a.License == "" {
		a.License = NotAvailable
	}
	if a.Homepage == "" {
		a.Homepage = NotAvailable
	}
	if a.Icon == "" {
		a.Icon = DefaultIcon
	}
	if a.Screenshots == nil {
		a.Screenshots = []string{}
	}
	cats := a.Categories[:0:0]
	for _, c := range a.Categories {
		if c = strings.TrimSpace(c); c != "" {
			cats = append(cats, c)
		}
	}
	if len(cats) == 0 {
		cats = []string{Uncategorized}
	}
	a.Categories = cats
	if a.SourceType == "" {
		a.SourceType = SourceLocalAppStream
	}
}

// DisplayName appends the origin label shown in mixed result lists.
func (a App) DisplayName() string {
	switch a.SourceType {
	case SourceNixpkgsSearch:
		return a.Name + " (Nixpkgs)"
	case SourceFlatpak:
		return a.Name + " (Flatpak)"
	default:
		return a.Name
	}
}
