package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/metrics"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

type Deps struct {
	Auth    *AuthHTTP
	Cart    *CartHTTP
	Catalog *CatalogHTTP
	Orders  *OrderHTTP
	Address *AddressHTTP
	AuthMW  *middleware.AutoRefreshMiddleware
	Metrics *metrics.Metrics
	CSRF    *csrf.Config
	// Ready reports whether the process can serve traffic.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", readyHandler(d.Ready))
	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))

	api := e.Group("")
	if d.CSRF != nil {
		api.Use(csrf.Middleware(*d.CSRF))
	}

	auth := api.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/verify", d.Auth.VerifyEmail)
	auth.POST("/verify/resend", d.Auth.ResendVerification)
	auth.POST("/password/reset-request", d.Auth.RequestPasswordReset)
	auth.POST("/password/reset", d.Auth.ResetPassword)
	auth.PUT("/profile", d.Auth.UpdateProfile, d.AuthMW.RequireAuth)

	catalog := api.Group("/catalog/products")
	catalog.GET("", d.Catalog.GetProducts)
	catalog.GET("/top", d.Catalog.TopProducts)
	catalog.GET("/search", d.Catalog.Search)
	catalog.GET("/:id", d.Catalog.GetProduct)

	admin := api.Group("/admin", d.AuthMW.RequireAdmin)
	admin.POST("/products", d.Catalog.CreateProduct)
	admin.PATCH("/products/:id", d.Catalog.PatchProduct)
	admin.PUT("/products/:id/archive", d.Catalog.Archive)
	admin.PUT("/products/:id/unarchive", d.Catalog.Unarchive)
	admin.GET("/products/archived", d.Catalog.GetArchived)
	admin.GET("/orders", d.Orders.AdminListOrders)
	admin.PATCH("/orders/:id", d.Orders.AdminPatchOrder)

	cart := api.Group("/cart", d.AuthMW.RequireAuth)
	cart.GET("", d.Cart.GetCart)
	cart.POST("/items", d.Cart.AddItem)
	cart.PUT("/items/:product_id", d.Cart.SetQuantity)
	cart.DELETE("/items/:product_id", d.Cart.RemoveItem)

	addresses := api.Group("/addresses", d.AuthMW.RequireAuth)
	addresses.GET("", d.Address.Get)
	addresses.PUT("", d.Address.Put)

	api.POST("/checkout/session", d.Orders.CreateCheckoutSession, d.AuthMW.RequireAuth)

	orders := api.Group("/orders", d.AuthMW.RequireAuth)
	orders.POST("/finalize", d.Orders.Finalize)
	orders.GET("", d.Orders.ListOrders)
	orders.GET("/:id", d.Orders.GetOrder)
}

func readyHandler(ready func(ctx context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		if ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := ready(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}
}
