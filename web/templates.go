// Package web renders the HTML pages of the platform from embedded
// templates.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer executes named page templates over the shared layout.
type Renderer struct {
	templates map[string]*template.Template
}

// pages are the named views. Each is parsed together with the layout.
var pages = []string{"index", "sobre", "analise", "resultados", "progresso"}

// NewRenderer parses every page template at startup so template errors
// surface at boot, not on first request.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		t, err := template.ParseFS(templateFS,
			"templates/layout.html",
			fmt.Sprintf("templates/%s.html", page))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		r.templates[page] = t
	}
	return r, nil
}

// Render writes the named page with data.
func (r *Renderer) Render(w io.Writer, page string, data interface{}) error {
	t, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown template: %s", page)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
