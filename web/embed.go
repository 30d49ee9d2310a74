// Package web embeds the page templates and stylesheets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html css/*.css
var FS embed.FS

const layout = "templates/default_layout.html"

// PageNames lists the pages rendered inside the default layout
var PageNames = []string{"index", "results", "contents", "error"}

// Pages parses every page together with the layout. Executing a page renders the full document.
func Pages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(PageNames))
	for _, name := range PageNames {
		t, err := template.ParseFS(FS, layout, "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		pages[name] = t
	}

	return pages, nil
}

// Stylesheets is the css directory of FS
func Stylesheets() fs.FS {
	sub, err := fs.Sub(FS, "css")
	if err != nil {
		panic(err)
	}

	return sub
}
