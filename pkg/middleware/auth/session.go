package authmw

import (
	"context"
	"net/http"
	"net/url"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/coffee_shop/pkg/tokens"
)

const (
	ctxToken     = "session_token"
	ctxPrincipal = "principal"
	CtxUserID    = "user_id"
	CtxIsAdmin   = "is_admin"
)

// Principal is the authenticated caller of the current request.
type Principal struct {
	UserID   uint
	Username string
	IsAdmin  bool
}

func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(ctxPrincipal).(Principal)
	return p, ok
}

// FlashFunc lets RequireLogin leave a message for the login page without
// depending on the flash store.
type FlashFunc func(c echo.Context, category, message string)

// AdminLookup reports the current admin flag of a user from the store.
type AdminLookup func(ctx context.Context, userID uint) (bool, error)

type Session struct {
	Secret       []byte
	SecureCookie bool
	LoginPath    string
	Flash        FlashFunc
	// IsAdmin, when set, overrides the is_admin claim in RequireAdmin so a
	// demoted account loses access before its token expires.
	IsAdmin AdminLookup
}

// Load parses the session cookie when present. A missing or invalid cookie
// leaves the request anonymous; an invalid one is also cleared.
func (s *Session) Load() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    s.Secret,
		SigningMethod: "HS256",
		ContextKey:    ctxToken,
		TokenLookup:   "cookie:" + tokens.SessionCookieName,
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(tokens.SessionClaims)
		},
		SuccessHandler: func(c echo.Context) {
			tkn, ok := c.Get(ctxToken).(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := tkn.Claims.(*tokens.SessionClaims)
			if !ok {
				return
			}
			uid, err := claims.UserID()
			if err != nil {
				return
			}
			setPrincipal(c, Principal{UserID: uid, Username: claims.Username, IsAdmin: claims.IsAdmin})
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if ck, cErr := c.Cookie(tokens.SessionCookieName); cErr == nil && ck.Value != "" {
				c.SetCookie(tokens.DeleteCookie(tokens.SessionCookieName, "/", s.SecureCookie))
			}
			return nil
		},
		ContinueOnIgnoredError: true,
	})
}

func (s *Session) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := PrincipalFrom(c); ok {
			return next(c)
		}
		req := c.Request()
		if req.Method != http.MethodGet {
			return echo.NewHTTPError(http.StatusUnauthorized, "login required")
		}
		if s.Flash != nil {
			s.Flash(c, "warning", "Please log in to access this page.")
		}
		login := s.LoginPath
		if login == "" {
			login = "/login"
		}
		return c.Redirect(http.StatusSeeOther, login+"?next="+url.QueryEscape(req.URL.RequestURI()))
	}
}

func (s *Session) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return s.RequireLogin(func(c echo.Context) error {
		p, _ := PrincipalFrom(c)
		admin := p.IsAdmin
		if s.IsAdmin != nil {
			var err error
			if admin, err = s.IsAdmin(c.Request().Context(), p.UserID); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "cannot check permissions").SetInternal(err)
			}
		}
		if !admin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	})
}

func setPrincipal(c echo.Context, p Principal) {
	c.Set(ctxPrincipal, p)
	c.Set(CtxUserID, p.UserID)
	c.Set(CtxIsAdmin, p.IsAdmin)
}
