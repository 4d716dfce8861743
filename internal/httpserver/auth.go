package httpserver

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/coffee_shop/internal/service"
	"github.com/Skotchmaster/coffee_shop/internal/transport"
	"github.com/Skotchmaster/coffee_shop/pkg/logging"
	"github.com/Skotchmaster/coffee_shop/pkg/tokens"
)

func (h *Handlers) RegisterPage(c echo.Context) error {
	return render(c, "register.html", "Register", nil)
}

func (h *Handlers) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterForm
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid form", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "validation", "error", err)
		if isRequiredOnly(err) {
			addFlash(c, "danger", "Please fill in all fields")
		} else {
			addFlash(c, "danger", validationMessage(err))
		}
		return redirect(c, "/register")
	}

	if _, err := h.Auth.Register(ctx, req.Username, req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrConflict):
			l.Warn("register_error", "status", 409, "reason", "user exists")
			addFlash(c, "danger", "Username already exists")
			return redirect(c, "/register")
		case errors.Is(err, service.ErrValidation):
			l.Warn("register_error", "status", 400, "reason", reason(err))
			addFlash(c, "danger", reason(err))
			return redirect(c, "/register")
		}
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot register user")
	}

	l.Info("register_success", "username", req.Username)
	addFlash(c, "success", "Registration successful! Please log in.")
	return redirect(c, "/login")
}

func (h *Handlers) LoginPage(c echo.Context) error {
	return render(c, "login.html", "Login", map[string]string{"Next": c.QueryParam("next")})
}

func (h *Handlers) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginForm
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid form", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	back := "/login"
	if req.Next != "" {
		back += "?next=" + url.QueryEscape(req.Next)
	}
	if err := c.Validate(&req); err != nil {
		addFlash(c, "danger", "Please fill in all fields")
		return redirect(c, back)
	}

	sess, err := h.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrValidation) {
			l.Warn("login_error", "status", 401, "reason", "invalid credentials", "username", req.Username)
			addFlash(c, "danger", "Invalid username or password")
			return redirect(c, back)
		}
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot log in")
	}

	c.SetCookie(tokens.SessionCookie(sess.Token, h.SecureCookie))
	l.Info("login_success", "user_id", sess.User.ID)
	return redirect(c, safeNext(req.Next))
}

func (h *Handlers) Logout(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth.logout")

	c.SetCookie(tokens.DeleteCookie(tokens.SessionCookieName, "/", h.SecureCookie))
	l.Info("logout_success")
	addFlash(c, "info", "You have been logged out.")
	return redirect(c, "/")
}
