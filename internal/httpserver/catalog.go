package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/coffee_shop/internal/models"
	"github.com/Skotchmaster/coffee_shop/internal/service"
	"github.com/Skotchmaster/coffee_shop/internal/transport"
	"github.com/Skotchmaster/coffee_shop/internal/util"
	"github.com/Skotchmaster/coffee_shop/pkg/logging"
)

type menuSection struct {
	Title    string
	Products []models.Product
}

func (h *Handlers) Index(c echo.Context) error {
	return render(c, "index.html", "Home", nil)
}

func (h *Handlers) Menu(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.menu")

	menu, err := h.Catalog.Menu(ctx)
	if err != nil {
		l.Error("menu_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load menu")
	}

	return render(c, "menu.html", "Menu", map[string]any{
		"Sections": []menuSection{
			{Title: "Drinks", Products: menu.Drinks},
			{Title: "Food", Products: menu.Foods},
		},
	})
}

func (h *Handlers) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Catalog.Search(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("search_error", "status", 400, "reason", reason(err))
			return c.JSON(http.StatusBadRequest, transport.ErrorResponse{Error: reason(err)})
		}
		l.Error("search_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, res)
}
