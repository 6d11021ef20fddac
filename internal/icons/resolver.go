package icons

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"appcatalog/internal/catalog"
)

// Kind classifies a resolution outcome.
type Kind int

const (
	// KindNone means neither a specific icon nor the placeholder exists.
	KindNone Kind = iota
	// KindSpecific is a cached icon file for the application.
	KindSpecific
	// KindPlaceholder is the bundled placeholder image.
	KindPlaceholder
)

func (k Kind) String() string {
	switch k {
	case KindSpecific:
		return "specific"
	case KindPlaceholder:
		return "placeholder"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "specific":
		*k = KindSpecific
	case "placeholder":
		*k = KindPlaceholder
	case "none":
		*k = KindNone
	default:
		return fmt.Errorf("unknown icon kind %q", text)
	}
	return nil
}

// Resolution is the file chosen for an icon id.
type Resolution struct {
	Path string `json:"path,omitempty"`
	Kind Kind   `json:"kind"`
}

// Resolver maps icon ids to files on disk.
type Resolver struct {
	placeholder string
	flatpakDirs []string
	localDir    string
}

// NewResolver creates a Resolver. Icon directories are derived from the feed
// locations: the flatpak remote keeps icons/<size>/ next to its catalog, and
// the local feed keeps icons/nixos/64x64/ two levels above the feed file.
// Empty arguments disable the corresponding lookup.
func NewResolver(placeholder, flatpakFeed, localFeed string) *Resolver {
	r := &Resolver{placeholder: placeholder}
	if flatpakFeed != "" {
		remote := filepath.Dir(flatpakFeed)
		r.flatpakDirs = []string{
			filepath.Join(remote, "icons", "64x64"),
			filepath.Join(remote, "icons", "128x128"),
		}
	}
	if localFeed != "" {
		r.localDir = filepath.Join(filepath.Dir(filepath.Dir(localFeed)), "icons", "nixos", "64x64")
	}
	return r
}

// Resolve picks the file for iconID. Generic icon names go straight to the
// placeholder; flatpak rows look in the remote's icon cache; every row falls
// back to the local feed's icon directory and then to the placeholder.
// Resolution never fails; absence is KindNone.
func (r *Resolver) Resolve(iconID string, source catalog.SourceType) Resolution {
	iconID = strings.TrimSpace(iconID)
	if iconID == "" || catalog.IsGenericIcon(iconID) {
		return r.fallback()
	}

	// Icon ids are file basenames; anything else cannot be a cached icon.
	if strings.ContainsAny(iconID, `/\`) || iconID == ".." {
		return r.fallback()
	}

	name := withPNG(iconID)
	if source == catalog.SourceFlatpak {
		for _, dir := range r.flatpakDirs {
			if p := filepath.Join(dir, name); isFile(p) {
				return Resolution{Path: p, Kind: KindSpecific}
			}
		}
	}
	if r.localDir != "" {
		if p := filepath.Join(r.localDir, name); isFile(p) {
			return Resolution{Path: p, Kind: KindSpecific}
		}
	}
	return r.fallback()
}

func (r *Resolver) fallback() Resolution {
	if r.placeholder != "" && isFile(r.placeholder) {
		return Resolution{Path: r.placeholder, Kind: KindPlaceholder}
	}
	return Resolution{Kind: KindNone}
}

// withPNG appends ".png" unless name already ends with it.
func withPNG(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".png") {
		return name
	}
	return name + ".png"
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
