package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	authmw "github.com/Skotchmaster/coffee_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/coffee_shop/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/coffee_shop/pkg/middleware/logging"
)

type Deps struct {
	Handlers     *Handlers
	Session      *authmw.Session
	FlashStore   sessions.Store
	DB           *gorm.DB
	Logger       *slog.Logger
	StaticDir    string
	SecureCookie bool
}

// New builds the echo instance with the full middleware chain and routes.
func New(d *Deps) (*echo.Echo, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = NewValidator()

	if d.Session.Flash == nil {
		d.Session.Flash = addFlash
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(d.Logger))
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit("8M"))
	e.Use(session.Middleware(d.FlashStore))
	e.Use(csrf.Middleware(csrf.Config{Secure: d.SecureCookie}))
	e.Use(d.Session.Load())

	Register(e, d)
	return e, nil
}

func Register(e *echo.Echo, d *Deps) {
	h := d.Handlers
	s := d.Session

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.DB == nil {
			return c.NoContent(http.StatusOK)
		}
		sqlDB, err := d.DB.DB()
		if err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	if d.StaticDir != "" {
		e.Static("/static", d.StaticDir)
	}

	e.GET("/", h.Index)
	e.GET("/menu", h.Menu)
	e.GET("/search", h.Search)

	e.GET("/register", h.RegisterPage)
	e.POST("/register", h.Register)
	e.GET("/login", h.LoginPage)
	e.POST("/login", h.Login)
	e.GET("/logout", h.Logout, s.RequireLogin)

	e.POST("/add_to_cart/:productId", h.AddToCart, s.RequireLogin)
	e.GET("/cart", h.CartPage, s.RequireLogin)
	e.POST("/update_cart/:itemId", h.UpdateCart, s.RequireLogin)

	e.GET("/checkout", h.CheckoutPage, s.RequireLogin)
	e.POST("/checkout", h.FinalizeOrder, s.RequireLogin)
	e.POST("/process_payment", h.ProcessPayment, s.RequireLogin)

	e.GET("/admin", h.Admin, s.RequireAdmin)
	e.POST("/add_product", h.AddProduct, s.RequireAdmin)
	e.POST("/delete_product/:id", h.DeleteProduct, s.RequireAdmin)
}
