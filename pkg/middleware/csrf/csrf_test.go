package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newServer() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(Config{SkipPaths: []string{"/auth/login"}}))
	h := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/cart", h)
	e.POST("/cart/items", h)
	e.POST("/auth/login", h)
	return e
}

func TestSafeMethodIssuesToken(t *testing.T) {
	e := newServer()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-CSRF-Token"))
}

func TestUnsafeMethodRequiresMatchingToken(t *testing.T) {
	e := newServer()

	req := httptest.NewRequest(http.MethodPost, "/cart/items", nil)
	req.Host = "shop.local"
	req.Header.Set("Origin", "http://shop.local")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/cart/items", nil)
	req.Host = "shop.local"
	req.Header.Set("Origin", "http://shop.local")
	req.Header.Set("X-CSRF-Token", "tok")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCrossOriginRejected(t *testing.T) {
	e := newServer()
	req := httptest.NewRequest(http.MethodPost, "/cart/items", nil)
	req.Host = "shop.local"
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("X-CSRF-Token", "tok")
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSkipPath(t *testing.T) {
	e := newServer()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
