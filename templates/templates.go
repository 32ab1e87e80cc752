// Package templates holds the embedded HTML pages and a gin renderer that
// builds one template set per page on top of a shared layout.
package templates

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/gin-gonic/gin/render"
)

//go:embed *.html partials/*.html
var files embed.FS

// Pages lists every renderable page.
var Pages = []string{
	"index.html",
	"group_list.html",
	"profile.html",
	"post_detail.html",
	"create_post.html",
	"follow.html",
	"login.html",
	"signup.html",
	"404.html",
	"403csrf.html",
	"500.html",
}

// Renderer implements render.HTMLRender over the embedded pages.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses the layout, the partials and each page with funcs available.
func New(funcs template.FuncMap) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(Pages))}
	for _, name := range Pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(files, "layout.html", "partials/*.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Instance returns the renderer for page name executed through the layout.
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		panic("templates: unknown page " + name)
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}
