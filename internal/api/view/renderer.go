// Package view renders the console's HTML pages.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/slooze/inventory-console/internal/core/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

const layoutFile = "templates/layout.html"

// Pages rendered by the console. Each is parsed together with the layout.
const (
	PageLogin         = "login"
	PageDashboard     = "dashboard"
	PageProducts      = "products"
	PageProductForm   = "product_form"
	PageProductDelete = "product_delete"
	PageError         = "error"
)

var pages = []string{PageLogin, PageDashboard, PageProducts, PageProductForm, PageProductDelete, PageError}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	templates map[string]*template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

// NewRenderer parses every page. It fails if any template is invalid.
func NewRenderer() (*Renderer, error) {
	base, err := template.New("base").Funcs(funcs).ParseFS(templatesFS, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.Must(base.Clone()).ParseFS(templatesFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

var funcs = template.FuncMap{
	"money": func(v float64) string {
		return fmt.Sprintf("$%.2f", v)
	},
	"date": func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	},
	// stockClass highlights products at or below the low-stock threshold.
	"stockClass": func(stock int) string {
		switch {
		case stock == 0:
			return "out"
		case stock <= domain.LowStockThreshold:
			return "low"
		default:
			return ""
		}
	},
}
