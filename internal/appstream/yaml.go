package appstream

import (
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"

	"appcatalog/internal/catalog"
)

// DesktopApplication is the DEP-11 Type admitted into the catalog.
const DesktopApplication = "desktop-application"

// YAMLComponent is one DEP-11 document of the local AppStream feed.
type YAMLComponent struct {
	Type          string            `yaml:"Type"`
	ID            string            `yaml:"ID"`
	Name          LocalizedText     `yaml:"Name"`
	Summary       LocalizedText     `yaml:"Summary"`
	Description   LocalizedText     `yaml:"Description"`
	Icon          YAMLIcon          `yaml:"Icon"`
	Developer     YAMLDeveloper     `yaml:"Developer"`
	DeveloperName LocalizedText     `yaml:"DeveloperName"`
	License       string            `yaml:"ProjectLicense"`
	URL           map[string]string `yaml:"Url"`
	Screenshots   []YAMLScreenshot  `yaml:"Screenshots"`
	Categories    []string          `yaml:"Categories"`

	// Header fields, only set on the leading DEP-11 document.
	File         string `yaml:"File"`
	MediaBaseURL string `yaml:"MediaBaseUrl"`
}

// IsHeader reports whether the document is the DEP-11 file header.
func (c YAMLComponent) IsHeader() bool {
	return c.File != "" && c.Type == ""
}

// YAMLDeveloper is the DEP-11 Developer block.
type YAMLDeveloper struct {
	Name LocalizedText `yaml:"name"`
}

// YAMLIcon is either a bare icon name or a mapping with cached entries.
type YAMLIcon struct {
	Bare   string
	Cached []YAMLCachedIcon
}

// YAMLCachedIcon is one Icon.cached entry.
type YAMLCachedIcon struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (i *YAMLIcon) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		i.Bare = node.Value
		return nil
	case yaml.MappingNode:
		var m struct {
			Cached []YAMLCachedIcon `yaml:"cached"`
		}
		if err := node.Decode(&m); err != nil {
			return fmt.Errorf("icon: %w", err)
		}
		i.Cached = m.Cached
		return nil
	default:
		return fmt.Errorf("icon: unexpected YAML node kind %d at line %d", node.Kind, node.Line)
	}
}

// name picks the first cached entry, then the bare string, then the
// generic default.
func (i YAMLIcon) name() string {
	if len(i.Cached) > 0 {
		return orDefault(i.Cached[0].Name, catalog.DefaultIcon)
	}
	return orDefault(i.Bare, catalog.DefaultIcon)
}

// YAMLScreenshot is one DEP-11 Screenshots entry.
type YAMLScreenshot struct {
	Default     bool `yaml:"default"`
	SourceImage struct {
		URL string `yaml:"url"`
	} `yaml:"source-image"`
}

// NixAttribute derives a package attribute path from a reverse-DNS
// application id: lower-case, without a trailing ".desktop", with "." and
// "_" replaced by "-".
func NixAttribute(id string) string {
	attr := strings.ToLower(strings.TrimSpace(id))
	attr = strings.TrimSuffix(attr, ".desktop")
	return strings.NewReplacer(".", "-", "_", "-").Replace(attr)
}

// FromYAML normalizes a DEP-11 document. The second return value is false
// when the document is not a desktop application entry.
func FromYAML(doc YAMLComponent, mediaBaseURL string) (catalog.App, bool) {
	if doc.Type != DesktopApplication {
		return catalog.App{}, false
	}
	id := strings.TrimSpace(doc.ID)
	if id == "" {
		return catalog.App{}, false
	}

	developer := doc.Developer.Name.Value("")
	if developer == "" {
		developer = doc.DeveloperName.Value(catalog.NotAvailable)
	}

	screenshots := make([]string, 0, len(doc.Screenshots))
	for _, s := range doc.Screenshots {
		if u := clean(s.SourceImage.URL); u != "" {
			screenshots = append(screenshots, resolveMediaURL(mediaBaseURL, u))
		}
	}

	app := catalog.App{
		ID:          id,
		Name:        doc.Name.Value("Unknown"),
		Summary:     doc.Summary.Value("No summary"),
		Description: doc.Description.Value("No description"),
		Icon:        doc.Icon.name(),
		Developer:   developer,
		License:     orDefault(doc.License, catalog.NotAvailable),
		Homepage:    orDefault(doc.URL["homepage"], catalog.NotAvailable),
		Screenshots: screenshots,
		Categories:  doc.Categories,
		SourceType:  catalog.SourceLocalAppStream,
		InstallRef:  NixAttribute(id),
	}
	app.Normalize()
	return app, true
}

// resolveMediaURL joins a relative DEP-11 media path onto the feed's
// MediaBaseUrl. Absolute URLs are returned unchanged.
func resolveMediaURL(base, ref string) string {
	if base == "" {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() {
		return ref
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(ref, "/")
}
