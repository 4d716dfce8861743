package httpserver

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/coffee_shop/internal/models"
)

func productForm(t *testing.T, fields map[string]string, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("\x89PNG\r\n"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func validProduct() map[string]string {
	return map[string]string{
		"name":        "Flat White",
		"price":       "3.20",
		"description": "Velvety",
		"category":    "drink",
	}
}

func (env *testEnv) productCount() int64 {
	var n int64
	require.NoError(env.T, env.Repo.DB.Model(&models.Product{}).Count(&n).Error)
	return n
}

func (env *testEnv) imageCount() int {
	entries, err := os.ReadDir(env.Images.Dir)
	require.NoError(env.T, err)
	return len(entries)
}

func TestAdmin_NonAdminForbidden(t *testing.T) {
	env := newTestEnv(t)
	u := env.user("alice", false)
	p := env.product("Latte", "3.50", "drink")
	addItem(t, env, u, p.ID)

	rec := env.do(request{method: http.MethodGet, path: "/admin", user: &u})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(request{method: http.MethodPost, path: "/delete_product/" + itoa(p.ID), user: &u})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, int64(1), env.productCount())
	assert.Equal(t, int64(1), env.cartCount(u.ID))

	body, ct := productForm(t, validProduct(), "flat.png")
	rec = env.do(request{method: http.MethodPost, path: "/add_product", body: body, contentType: ct, user: &u})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, int64(1), env.productCount())
	assert.Zero(t, env.imageCount())
}

func TestAdmin_Overview(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user("root", true)
	u := env.user("alice", false)
	p := env.product("Latte", "3.50", "drink")
	addItem(t, env, u, p.ID)

	rec := env.do(request{method: http.MethodGet, path: "/admin", user: &admin})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "alice@example.com")
	assert.Contains(t, body, "Latte")
}

func TestAdmin_AddProduct(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user("root", true)

	body, ct := productForm(t, validProduct(), "flat.PNG")
	rec := env.do(request{method: http.MethodPost, path: "/add_product", body: body, contentType: ct, user: &admin})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get(echo.HeaderLocation))

	var p models.Product
	require.NoError(t, env.Repo.DB.Where("name = ?", "Flat White").First(&p).Error)
	assert.Equal(t, "3.20", p.Price.StringFixed(2))
	assert.Equal(t, 1, env.imageCount())

	page := env.do(request{method: http.MethodGet, path: "/admin", user: &admin, cookies: []*http.Cookie{cookieNamed(rec, flashSession)}})
	assert.Contains(t, page.Body.String(), "added successfully!")
}

func TestAdmin_AddProductRejected(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user("root", true)

	cases := []struct {
		name     string
		fields   func(map[string]string)
		filename string
		flash    string
	}{
		{"bad extension", func(map[string]string) {}, "shell.php", "png, jpg, jpeg or gif"},
		{"negative price", func(f map[string]string) { f["price"] = "-2" }, "a.png", "must not be negative"},
		{"bad category", func(f map[string]string) { f["category"] = "dessert" }, "a.png", "category"},
		{"missing image", func(map[string]string) {}, "", "image is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := validProduct()
			tc.fields(fields)
			body, ct := productForm(t, fields, tc.filename)
			rec := env.do(request{method: http.MethodPost, path: "/add_product", body: body, contentType: ct, user: &admin})
			require.Equal(t, http.StatusSeeOther, rec.Code)

			page := env.do(request{method: http.MethodGet, path: "/admin", user: &admin, cookies: []*http.Cookie{cookieNamed(rec, flashSession)}})
			assert.Contains(t, page.Body.String(), "Error adding product")
			assert.Contains(t, page.Body.String(), tc.flash)
			assert.Zero(t, env.productCount())
			assert.Zero(t, env.imageCount())
		})
	}
}

func TestAdmin_DeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user("root", true)
	u := env.user("alice", false)
	p := env.product("Latte", "3.50", "drink")
	addItem(t, env, u, p.ID)

	rec := env.do(request{method: http.MethodPost, path: "/delete_product/" + itoa(p.ID), user: &admin})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Zero(t, env.productCount())
	assert.Zero(t, env.cartCount(u.ID))

	rec = env.do(request{method: http.MethodPost, path: "/delete_product/" + itoa(p.ID), user: &admin})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	page := env.do(request{method: http.MethodGet, path: "/admin", user: &admin, cookies: []*http.Cookie{cookieNamed(rec, flashSession)}})
	assert.Contains(t, page.Body.String(), "Product not found")
}

func TestAdmin_DemotedTokenRejected(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user("root", true)
	p := env.product("Latte", "3.50", "drink")

	require.NoError(t, env.Repo.DB.Model(&models.User{}).Where("id = ?", admin.ID).Update("is_admin", false).Error)

	rec := env.do(request{method: http.MethodGet, path: "/admin", user: &admin})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(request{method: http.MethodPost, path: "/delete_product/" + itoa(p.ID), user: &admin})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, int64(1), env.productCount())
}
