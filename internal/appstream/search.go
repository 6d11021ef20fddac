package appstream

import (
	"fmt"
	"strings"

	"appcatalog/internal/catalog"
)

// SearchPackage is one value of the package manager's JSON search output.
type SearchPackage struct {
	PName       string `json:"pname"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

// FromSearchResult normalizes one external search hit keyed by its
// attribute path (e.g. "legacyPackages.x86_64-linux.hello").
func FromSearchResult(attrPath string, pkg SearchPackage) catalog.App {
	short := attrPath
	if i := strings.LastIndex(attrPath, "."); i >= 0 {
		short = attrPath[i+1:]
	}

	app := catalog.App{
		ID:          attrPath,
		Name:        fmt.Sprintf("%s (%s)", short, clean(pkg.Version)),
		Summary:     orDefault(pkg.Description, "No description available."),
		Description: orDefault(pkg.Description, "No description available."),
		Icon:        catalog.DefaultIcon,
		SourceType:  catalog.SourceNixpkgsSearch,
		InstallRef:  short,
	}
	app.Normalize()
	return app
}
