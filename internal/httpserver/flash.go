package httpserver

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/coffee_shop/pkg/logging"
)

const flashSession = "flash"

var flashCategories = []string{"success", "info", "warning", "danger"}

type Flash struct {
	Category string
	Message  string
}

func NewFlashStore(secret []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func addFlash(c echo.Context, category, message string) {
	sess, err := session.Get(flashSession, c)
	if err != nil {
		logging.FromContext(c.Request().Context()).Warn("flash_error", "reason", "cannot load flash session", "error", err)
		return
	}
	sess.AddFlash(message, category)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		logging.FromContext(c.Request().Context()).Warn("flash_error", "reason", "cannot save flash session", "error", err)
	}
}

func popFlashes(c echo.Context) []Flash {
	sess, err := session.Get(flashSession, c)
	if err != nil {
		return nil
	}
	var out []Flash
	for _, cat := range flashCategories {
		for _, m := range sess.Flashes(cat) {
			if s, ok := m.(string); ok {
				out = append(out, Flash{Category: cat, Message: s})
			}
		}
	}
	if len(out) > 0 {
		_ = sess.Save(c.Request(), c.Response())
	}
	return out
}
