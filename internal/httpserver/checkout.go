package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/coffee_shop/internal/domain"
	"github.com/Skotchmaster/coffee_shop/internal/service"
	"github.com/Skotchmaster/coffee_shop/internal/transport"
	"github.com/Skotchmaster/coffee_shop/pkg/logging"
)

func (h *Handlers) CheckoutPage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.quote")

	uid, _ := userID(c)
	items, q, err := h.Checkout.Quote(ctx, uid)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			addFlash(c, "warning", "Your cart is empty")
			return redirect(c, "/menu")
		}
		l.Error("checkout_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot price cart")
	}

	return render(c, "checkout.html", "Checkout", map[string]any{
		"Items": items,
		"Quote": q,
	})
}

func (h *Handlers) ProcessPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.process_payment")

	uid, _ := userID(c)
	var req transport.PaymentForm
	if err := c.Bind(&req); err != nil {
		l.Warn("payment_error", "status", 400, "reason", "invalid form", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	res, err := h.Checkout.ProcessPayment(ctx, uid, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPaymentMethod):
			l.Warn("payment_error", "status", 400, "reason", "invalid payment method", "method", req.PaymentMethod)
			addFlash(c, "danger", "Invalid payment method")
			return redirect(c, "/checkout")
		case errors.Is(err, service.ErrEmptyCart):
			addFlash(c, "warning", "Your cart is empty")
			return redirect(c, "/menu")
		}
		l.Error("payment_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "payment failed")
	}

	addFlash(c, "success", fmt.Sprintf("Payment of $%s processed successfully! (Saved $%s with discount)",
		domain.Money(res.Quote.Final), domain.Money(res.Quote.Discount)))
	return redirect(c, "/menu")
}

func (h *Handlers) FinalizeOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.finalize")

	uid, _ := userID(c)
	if err := h.Checkout.FinalizeOrder(ctx, uid); err != nil {
		l.Error("finalize_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot place order")
	}

	l.Info("order_placed")
	addFlash(c, "success", "Order placed successfully!")
	return redirect(c, "/")
}
