package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/coffee_shop/internal/events"
	"github.com/Skotchmaster/coffee_shop/internal/models"
	"github.com/Skotchmaster/coffee_shop/internal/repo"
	"github.com/Skotchmaster/coffee_shop/internal/service"
	"github.com/Skotchmaster/coffee_shop/internal/storage"
	"github.com/Skotchmaster/coffee_shop/pkg/db"
	pkg_hash "github.com/Skotchmaster/coffee_shop/pkg/hash"
	"github.com/Skotchmaster/coffee_shop/pkg/logging"
	authmw "github.com/Skotchmaster/coffee_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/coffee_shop/pkg/tokens"
)

const csrfValue = "test-csrf-token"

var testSecret = []byte("0123456789abcdef-http-test")

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	Repo   *repo.GormRepo
	Images *storage.ImageStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	gdb, err := db.Open(ctx, ":memory:", "")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	images, err := storage.NewImageStore(t.TempDir(), "/static/images")
	require.NoError(t, err)

	r := &repo.GormRepo{DB: gdb}
	pub := events.Noop{}
	h := &Handlers{
		Auth:     &service.AuthService{Repo: r, Secret: testSecret, TTL: time.Hour, Events: pub},
		Cart:     &service.CartService{Repo: r, Events: pub},
		Checkout: &service.CheckoutService{Repo: r, Events: pub},
		Catalog:  &service.CatalogService{Repo: r, Images: images, Events: pub},
	}
	e, err := New(&Deps{
		Handlers:   h,
		Session:    &authmw.Session{Secret: testSecret, IsAdmin: r.UserIsAdmin},
		FlashStore: NewFlashStore(testSecret, false),
		DB:         gdb,
		Logger:     logging.New("error", io.Discard),
	})
	require.NoError(t, err)

	return &testEnv{T: t, E: e, Repo: r, Images: images}
}

func (env *testEnv) user(name string, admin bool) models.User {
	env.T.Helper()
	pw, err := pkg_hash.HashPassword("password")
	require.NoError(env.T, err)
	u := models.User{Username: name, Email: name + "@example.com", PasswordHash: pw, IsAdmin: admin}
	require.NoError(env.T, env.Repo.DB.Create(&u).Error)
	return u
}

func (env *testEnv) product(name, price, category string) models.Product {
	env.T.Helper()
	p := models.Product{
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Description: name,
		ImageURL:    "/static/images/" + name + ".png",
		Category:    category,
	}
	require.NoError(env.T, env.Repo.DB.Create(&p).Error)
	return p
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	user        *models.User
	cookies     []*http.Cookie
	origin      string
}

func (env *testEnv) do(r request) *httptest.ResponseRecorder {
	env.T.Helper()
	req := httptest.NewRequest(r.method, r.path, r.body)
	if r.contentType != "" {
		req.Header.Set(echo.HeaderContentType, r.contentType)
	}
	origin := r.origin
	if origin == "" {
		origin = "http://example.com"
	}
	req.Header.Set("Origin", origin)
	req.Header.Set("X-CSRF-Token", csrfValue)
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: csrfValue})
	if r.user != nil {
		tok, err := tokens.NewSessionToken(r.user.ID, r.user.Username, r.user.IsAdmin, time.Now().Add(time.Hour), testSecret)
		require.NoError(env.T, err)
		req.AddCookie(tokens.SessionCookie(tok, false))
	}
	for _, ck := range r.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func form(values url.Values) (io.Reader, string) {
	return strings.NewReader(values.Encode()), echo.MIMEApplicationForm
}

func jsonBody(t *testing.T, v any) (io.Reader, string) {
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(v))
	return &buf, echo.MIMEApplicationJSON
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (env *testEnv) cartCount(userID uint) int64 {
	var n int64
	require.NoError(env.T, env.Repo.DB.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(request{method: http.MethodGet, path: "/health/live"}).Code)
	assert.Equal(t, http.StatusOK, env.do(request{method: http.MethodGet, path: "/health/ready"}).Code)
}

func TestPages(t *testing.T) {
	env := newTestEnv(t)
	env.product("Latte", "3.50", "drink")
	env.product("Croissant", "2.00", "food")

	rec := env.do(request{method: http.MethodGet, path: "/menu"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Latte")
	assert.Contains(t, body, "$3.50")
	assert.Contains(t, body, "Croissant")

	for _, path := range []string{"/", "/login", "/register"} {
		rec := env.do(request{method: http.MethodGet, path: path})
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), csrfValue, path)
	}
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	env.product("Caramel Latte", "3.50", "drink")
	env.product("Muffin", "2.00", "food")

	rec := env.do(request{method: http.MethodGet, path: "/search?q=latte"})
	require.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		Data []models.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Caramel Latte", res.Data[0].Name)

	assert.Equal(t, http.StatusBadRequest, env.do(request{method: http.MethodGet, path: "/search"}).Code)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	body, ct := form(url.Values{"username": {"alice"}, "email": {"alice@example.com"}, "password": {"pw"}})
	rec := env.do(request{method: http.MethodPost, path: "/register", body: body, contentType: ct})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	body, ct = form(url.Values{"username": {"alice"}, "email": {"other@example.com"}, "password": {"pw"}})
	rec = env.do(request{method: http.MethodPost, path: "/register", body: body, contentType: ct})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/register", rec.Header().Get(echo.HeaderLocation))

	page := env.do(request{method: http.MethodGet, path: "/register", cookies: []*http.Cookie{cookieNamed(rec, flashSession)}})
	assert.Contains(t, page.Body.String(), "Username already exists")

	body, ct = form(url.Values{"username": {"alice"}, "password": {"pw"}, "next": {"/cart"}})
	rec = env.do(request{method: http.MethodPost, path: "/login", body: body, contentType: ct})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/cart", rec.Header().Get(echo.HeaderLocation))
	sess := cookieNamed(rec, tokens.SessionCookieName)
	require.NotNil(t, sess)
	assert.True(t, sess.HttpOnly)
	assert.True(t, sess.Expires.IsZero())

	rec = env.do(request{method: http.MethodGet, path: "/cart", cookies: []*http.Cookie{sess}})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(request{method: http.MethodGet, path: "/logout", cookies: []*http.Cookie{sess}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	cleared := cookieNamed(rec, tokens.SessionCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestLogin_Failures(t *testing.T) {
	env := newTestEnv(t)
	env.user("alice", false)

	body, ct := form(url.Values{"username": {"alice"}, "password": {"wrong"}})
	rec := env.do(request{method: http.MethodPost, path: "/login", body: body, contentType: ct})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	assert.Nil(t, cookieNamed(rec, tokens.SessionCookieName))

	page := env.do(request{method: http.MethodGet, path: "/login", cookies: []*http.Cookie{cookieNamed(rec, flashSession)}})
	assert.Contains(t, page.Body.String(), "Invalid username or password")

	body, ct = form(url.Values{"username": {"alice"}, "password": {"password"}, "next": {"//evil.test"}})
	rec = env.do(request{method: http.MethodPost, path: "/login", body: body, contentType: ct})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	body, ct = form(url.Values{"username": {""}, "password": {""}})
	rec = env.do(request{method: http.MethodPost, path: "/login", body: body, contentType: ct})
	page = env.do(request{method: http.MethodGet, path: "/login", cookies: []*http.Cookie{cookieNamed(rec, flashSession)}})
	assert.Contains(t, page.Body.String(), "Please fill in all fields")
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)
	p := env.product("Latte", "3.50", "drink")

	rec := env.do(request{method: http.MethodGet, path: "/cart"})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fcart", rec.Header().Get(echo.HeaderLocation))

	rec = env.do(request{method: http.MethodPost, path: "/add_to_cart/" + itoa(p.ID)})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCSRFRequired(t *testing.T) {
	env := newTestEnv(t)
	u := env.user("alice", false)
	p := env.product("Latte", "3.50", "drink")

	req := httptest.NewRequest(http.MethodPost, "/add_to_cart/"+itoa(p.ID), nil)
	req.Header.Set("Origin", "http://example.com")
	tok, err := tokens.NewSessionToken(u.ID, u.Username, false, time.Now().Add(time.Hour), testSecret)
	require.NoError(t, err)
	req.AddCookie(tokens.SessionCookie(tok, false))
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, env.cartCount(u.ID))
}

func TestCSRFRejectsCrossOrigin(t *testing.T) {
	env := newTestEnv(t)
	u := env.user("alice", false)
	p := env.product("Latte", "3.50", "drink")

	rec := env.do(request{method: http.MethodPost, path: "/add_to_cart/" + itoa(p.ID), user: &u, origin: "http://evil.test"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, env.cartCount(u.ID))

	rec = env.do(request{method: http.MethodPost, path: "/add_to_cart/" + itoa(p.ID), user: &u})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), env.cartCount(u.ID))
}
