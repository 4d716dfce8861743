package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/coffee_shop/internal/service"
	"github.com/Skotchmaster/coffee_shop/internal/transport"
	"github.com/Skotchmaster/coffee_shop/internal/util"
	"github.com/Skotchmaster/coffee_shop/pkg/logging"
)

type adminPage struct {
	*service.AdminOverview
	PrevPage int
	NextPage int
}

func (h *Handlers) Admin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.overview")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	ov, err := h.Catalog.AdminOverview(ctx, page, size)
	if err != nil {
		l.Error("admin_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load overview")
	}

	return render(c, "admin.html", "Admin", adminPage{
		AdminOverview: ov,
		PrevPage:      ov.Meta.Page - 1,
		NextPage:      ov.Meta.Page + 1,
	})
}

func (h *Handlers) AddProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.add_product")

	fail := func(status int, msg string, err error) error {
		l.Warn("add_product_error", "status", status, "reason", msg, "error", err)
		addFlash(c, "danger", "Error adding product: "+msg)
		return redirect(c, "/admin")
	}

	var req transport.ProductForm
	if err := c.Bind(&req); err != nil {
		return fail(http.StatusBadRequest, "invalid form", err)
	}
	if err := c.Validate(&req); err != nil {
		return fail(http.StatusBadRequest, validationMessage(err), err)
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return fail(http.StatusBadRequest, "image is required", err)
	}
	f, err := fh.Open()
	if err != nil {
		return fail(http.StatusBadRequest, "cannot read image", err)
	}
	defer f.Close()

	prod, err := h.Catalog.CreateProduct(ctx, service.ProductInput{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
	}, &service.Image{Filename: fh.Filename, Content: f})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedMediaType):
			return fail(http.StatusUnsupportedMediaType, "image must be png, jpg, jpeg or gif", err)
		case errors.Is(err, service.ErrValidation):
			return fail(http.StatusBadRequest, reason(err), err)
		}
		l.Error("add_product_error", "status", 500, "error", err)
		addFlash(c, "danger", "Error adding product: internal error")
		return redirect(c, "/admin")
	}

	l.Info("add_product_success", "product_id", prod.ID)
	addFlash(c, "success", fmt.Sprintf("Product %q added successfully!", prod.Name))
	return redirect(c, "/admin")
}

func (h *Handlers) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_product")

	id, ok := parseID(c, "id")
	if !ok {
		l.Warn("delete_product_error", "status", 400, "reason", "invalid id")
		addFlash(c, "danger", "Invalid product id")
		return redirect(c, "/admin")
	}

	prod, err := h.Catalog.DeleteProduct(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("delete_product_error", "status", 404, "product_id", id)
			addFlash(c, "danger", "Product not found")
			return redirect(c, "/admin")
		}
		l.Error("delete_product_error", "status", 500, "error", err)
		addFlash(c, "danger", "Error deleting product")
		return redirect(c, "/admin")
	}

	l.Info("delete_product_success", "product_id", id)
	addFlash(c, "success", fmt.Sprintf("Product %q deleted successfully!", prod.Name))
	return redirect(c, "/admin")
}
