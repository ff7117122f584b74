// Package templates holds the embedded HTML page templates and the gin
// renderer that serves them.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/gin-gonic/gin/render"

	"github.com/composable-commerce/storefront/internal/views"
)

//go:embed files/*.html
var files embed.FS

// Page template names
const (
	Home        = "home"
	Collections = "collections"
	Collection  = "collection"
	Products    = "products"
	Product     = "product"
	About       = "about"
	StaticPage  = "page"
	Cart        = "cart"
	Login       = "login"
	Orders      = "orders"
	Profile     = "profile"
	Error       = "error"
)

// shared files are parsed into every page set
var shared = []string{"layout.html", "partials.html"}

// Renderer renders pages inside the site layout. It implements gin's
// render.HTMLRender.
type Renderer struct {
	sets map[string]*template.Template
}

// New parses the embedded templates
func New() (*Renderer, error) {
	entries, err := fs.ReadDir(files, "files")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded templates: %w", err)
	}

	base := template.New("base").Funcs(Funcs())
	for _, name := range shared {
		if _, err := base.ParseFS(files, path.Join("files", name)); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	}

	r := &Renderer{sets: make(map[string]*template.Template)}
	for _, e := range entries {
		if e.IsDir() || isShared(e.Name()) {
			continue
		}
		set, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := set.ParseFS(files, path.Join("files", e.Name())); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", e.Name(), err)
		}
		r.sets[strings.TrimSuffix(e.Name(), ".html")] = set
	}

	if _, ok := r.sets[Error]; !ok {
		return nil, fmt.Errorf("missing %s template", Error)
	}
	return r, nil
}

func isShared(name string) bool {
	for _, s := range shared {
		if s == name {
			return true
		}
	}
	return false
}

// Instance implements render.HTMLRender. Unknown names render the error page.
func (r *Renderer) Instance(name string, data any) render.Render {
	set, ok := r.sets[name]
	if !ok {
		set = r.sets[Error]
	}
	return render.HTML{Template: set, Name: "layout", Data: data}
}

// Render writes a page to w
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	set, ok := r.sets[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return set.ExecuteTemplate(w, "layout", data)
}

// Names lists the page templates
func (r *Renderer) Names() []string {
	names := make([]string, 0, len(r.sets))
	for name := range r.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Funcs are the helpers available to every template
func Funcs() template.FuncMap {
	return template.FuncMap{
		"money":     views.FormatMoney,
		"localized": Localized,
	}
}

// Localized prefixes an absolute path with the locale prefix. External
// URLs and already prefixed paths are returned unchanged.
func Localized(prefix, p string) string {
	if prefix == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return p
	}
	if p == prefix || strings.HasPrefix(p, prefix+"/") || strings.HasPrefix(p, prefix+"?") {
		return p
	}
	if p == "/" {
		return prefix
	}
	return prefix + p
}
