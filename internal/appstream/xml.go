package appstream

import (
	"encoding/xml"
	"io"
	"strings"

	"appcatalog/internal/catalog"
)

// XMLComponent is one <component> element of an AppStream XML catalog.
type XMLComponent struct {
	Type           string          `xml:"type,attr"`
	ID             string          `xml:"id"`
	Names          []xmlText       `xml:"name"`
	Summaries      []xmlText       `xml:"summary"`
	Descriptions   []xmlMarkup     `xml:"description"`
	Icons          []xmlTypedText  `xml:"icon"`
	DeveloperNames []xmlText       `xml:"developer_name"`
	License        string          `xml:"project_license"`
	URLs           []xmlTypedText  `xml:"url"`
	Screenshots    []xmlScreenshot `xml:"screenshots>screenshot"`
	Categories     []string        `xml:"categories>category"`
}

type xmlText struct {
	Lang  string `xml:"lang,attr"`
	Value string `xml:",chardata"`
}

type xmlMarkup struct {
	Lang  string `xml:"lang,attr"`
	Inner string `xml:",innerxml"`
}

type xmlTypedText struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type xmlScreenshot struct {
	Type   string         `xml:"type,attr"`
	Images []xmlTypedText `xml:"image"`
}

// untranslated picks the element without xml:lang, falling back to the
// first one present.
func untranslated(items []xmlText) (string, bool) {
	for _, it := range items {
		if it.Lang == "" {
			return it.Value, true
		}
	}
	if len(items) > 0 {
		return items[0].Value, true
	}
	return "", false
}

func textOr(items []xmlText, def string) string {
	v, ok := untranslated(items)
	if !ok {
		return def
	}
	return orDefault(v, def)
}

func typed(items []xmlTypedText, kind string) (string, bool) {
	for _, it := range items {
		if it.Type == kind {
			return it.Value, true
		}
	}
	return "", false
}

// FromXML normalizes an AppStream XML component from the given remote. The
// second return value is false when the component is not a desktop
// application.
func FromXML(c XMLComponent, origin string) (catalog.App, bool) {
	if c.Type != "desktop" && c.Type != DesktopApplication {
		return catalog.App{}, false
	}
	id := clean(c.ID)
	if id == "" {
		return catalog.App{}, false
	}

	description := "No description"
	if d, ok := pickDescription(c.Descriptions); ok {
		description = flattenText(d)
	}

	icon := catalog.DefaultIcon
	if v, ok := typed(c.Icons, "cached"); ok {
		icon = orDefault(v, catalog.DefaultIcon)
	}

	homepage := catalog.NotAvailable
	if v, ok := typed(c.URLs, "homepage"); ok {
		homepage = orDefault(v, catalog.NotAvailable)
	}

	var screenshots []string
	for _, s := range c.Screenshots {
		for _, img := range s.Images {
			if u := clean(img.Value); u != "" {
				screenshots = append(screenshots, u)
			}
		}
	}

	categories := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		if cat = clean(cat); cat != "" {
			categories = append(categories, cat)
		}
	}

	app := catalog.App{
		ID:          id,
		Name:        textOr(c.Names, "Unknown"),
		Summary:     textOr(c.Summaries, "No summary"),
		Description: description,
		Icon:        icon,
		Developer:   textOr(c.DeveloperNames, catalog.NotAvailable),
		License:     orDefault(c.License, catalog.NotAvailable),
		Homepage:    homepage,
		Screenshots: screenshots,
		Categories:  categories,
		SourceType:  catalog.SourceFlatpak,
		InstallRef:  id,
		Origin:      origin,
	}
	app.Normalize()
	return app, true
}

func pickDescription(items []xmlMarkup) (string, bool) {
	for _, d := range items {
		if d.Lang == "" {
			return d.Inner, true
		}
	}
	if len(items) > 0 {
		return items[0].Inner, true
	}
	return "", false
}

// flattenText concatenates every text node of an XML fragment, dropping
// tags. Unparseable fragments are returned with tags left in place.
func flattenText(fragment string) string {
	dec := xml.NewDecoder(strings.NewReader("<d>" + fragment + "</d>"))
	dec.Strict = false
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return clean(fragment)
		}
		if cd, ok := tok.(xml.CharData); ok {
			b.Write(cd)
		}
	}
	return clean(b.String())
}
