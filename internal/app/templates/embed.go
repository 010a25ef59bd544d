// Package templates provides embedded HTML templates, CSS, and JS for the web UI.
package templates

import (
	"embed"
	"html/template"
	"io"
	"sync"
)

// FS contains embedded HTML templates, CSS, and JS files.
//
//go:embed *.html *.css *.js
var FS embed.FS

var (
	tmpl     *template.Template
	tmplOnce sync.Once
	tmplErr  error
)

// Templates returns the parsed HTML templates.
func Templates() (*template.Template, error) {
	tmplOnce.Do(func() {
		tmpl, tmplErr = template.ParseFS(FS, "*.html")
	})
	return tmpl, tmplErr
}

// Execute renders a template by name to the writer.
func Execute(w io.Writer, name string, data any) error {
	t, err := Templates()
	if err != nil {
		return err
	}
	return t.ExecuteTemplate(w, name, data)
}
