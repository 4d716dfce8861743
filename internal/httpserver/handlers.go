package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/coffee_shop/internal/service"
	authmw "github.com/Skotchmaster/coffee_shop/pkg/middleware/auth"
)

type Handlers struct {
	Auth         *service.AuthService
	Cart         *service.CartService
	Checkout     *service.CheckoutService
	Catalog      *service.CatalogService
	SecureCookie bool
}

func userID(c echo.Context) (uint, bool) {
	p, ok := authmw.PrincipalFrom(c)
	if !ok {
		return 0, false
	}
	return p.UserID, true
}

func parseID(c echo.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// reason drops the wrapped sentinel from a service error for display.
func reason(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i > 0 {
		return msg[:i]
	}
	return msg
}

func redirect(c echo.Context, to string) error {
	return c.Redirect(http.StatusSeeOther, to)
}

// safeNext accepts only same-site relative paths.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
