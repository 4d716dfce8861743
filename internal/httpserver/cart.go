package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/coffee_shop/internal/domain"
	"github.com/Skotchmaster/coffee_shop/internal/service"
	"github.com/Skotchmaster/coffee_shop/internal/transport"
	"github.com/Skotchmaster/coffee_shop/pkg/logging"
)

func (h *Handlers) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	uid, ok := userID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}
	productID, ok := parseID(c, "productId")
	if !ok {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid product id")
		return c.JSON(http.StatusBadRequest, transport.ErrorResponse{Error: "Invalid product id"})
	}

	if _, err := h.Cart.AddItem(ctx, uid, productID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("add_to_cart_error", "status", 404, "reason", "product not found", "product_id", productID)
			return c.JSON(http.StatusNotFound, transport.ErrorResponse{Error: "Product not found"})
		}
		l.Error("add_to_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add to cart")
	}

	sum, err := h.Cart.Summary(ctx, uid)
	if err != nil {
		l.Error("add_to_cart_error", "status", 500, "reason", "cannot load cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load cart")
	}

	l.Info("add_to_cart_success", "product_id", productID)
	return c.JSON(http.StatusOK, transport.AddToCartResponse{
		Status:    "success",
		Success:   true,
		CartCount: sum.Count,
	})
}

func (h *Handlers) CartPage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.view")

	uid, _ := userID(c)
	sum, err := h.Cart.Summary(ctx, uid)
	if err != nil {
		l.Error("cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load cart")
	}
	return render(c, "cart.html", "Cart", sum)
}

func (h *Handlers) UpdateCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	uid, ok := userID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return c.JSON(http.StatusBadRequest, transport.ErrorResponse{Error: "Invalid item id"})
	}

	var req transport.UpdateCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_cart_error", "status", 400, "reason", "invalid quantity", "error", err)
		return c.JSON(http.StatusBadRequest, transport.ErrorResponse{Error: "Invalid quantity"})
	}

	deleted, err := h.Cart.SetQuantity(ctx, uid, itemID, int(req.Quantity))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("update_cart_error", "status", 404, "item_id", itemID)
			return c.JSON(http.StatusNotFound, transport.ErrorResponse{Error: "Not found"})
		case errors.Is(err, service.ErrUnauthorized):
			l.Warn("update_cart_error", "status", 403, "reason", "foreign item", "item_id", itemID)
			return c.JSON(http.StatusForbidden, transport.ErrorResponse{Error: "Unauthorized"})
		}
		l.Error("update_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update cart")
	}

	sum, err := h.Cart.Summary(ctx, uid)
	if err != nil {
		l.Error("update_cart_error", "status", 500, "reason", "cannot load cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load cart")
	}

	itemTotal := "0.00"
	for _, it := range sum.Items {
		if it.ID == itemID {
			itemTotal = domain.Money(domain.ItemTotal(it))
		}
	}

	l.Info("update_cart_success", "item_id", itemID, "deleted", deleted)
	return c.JSON(http.StatusOK, transport.UpdateCartResponse{
		Status:    "success",
		Success:   true,
		Deleted:   deleted,
		Total:     sum.Total,
		ItemTotal: itemTotal,
		CartCount: sum.Count,
	})
}
