package httpserver

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/coffee_shop/internal/domain"
	"github.com/Skotchmaster/coffee_shop/internal/models"
	authmw "github.com/Skotchmaster/coffee_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/coffee_shop/pkg/middleware/csrf"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"index.html", "menu.html", "login.html", "register.html", "cart.html", "checkout.html", "admin.html"}

type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"money":     func(d decimal.Decimal) string { return domain.Money(d) },
		"itemTotal": func(it models.CartItem) string { return domain.Money(domain.ItemTotal(it)) },
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, p := range pages {
		t, err := template.New(p).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+p)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", p, err)
		}
		r.pages[p] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	return t.ExecuteTemplate(w, "base", data)
}

type page struct {
	Title     string
	User      *authmw.Principal
	Flashes   []Flash
	CSRFToken string
	Data      any
}

func render(c echo.Context, name, title string, data any) error {
	p := page{
		Title:     title,
		Flashes:   popFlashes(c),
		CSRFToken: csrf.Token(c),
		Data:      data,
	}
	if u, ok := authmw.PrincipalFrom(c); ok {
		p.User = &u
	}
	return c.Render(http.StatusOK, name, p)
}
