package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	uid, err := userID(c)
	if err != nil {
		l.Warn("get_cart_error", "status", http.StatusUnauthorized, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	lines, err := h.Svc.Get(ctx, uid)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCartResponse(lines))
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	uid, err := userID(c)
	if err != nil {
		l.Warn("add_to_cart_error", "status", http.StatusUnauthorized, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart_error", "invalid body", err)
	}

	item, err := h.Svc.Add(ctx, uid, req.ProductID, req.Quantity)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("add_to_cart_success", "product_id", req.ProductID, "quantity", item.Quantity)
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHTTP) SetQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.set_quantity")

	uid, err := userID(c)
	if err != nil {
		l.Warn("set_quantity_error", "status", http.StatusUnauthorized, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	productID, err := uuidParam(c, "product_id")
	if err != nil {
		return badRequest(l, "set_quantity_error", "product_id is not a uuid", err)
	}

	var req transport.SetQuantityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "set_quantity_error", "invalid body", err)
	}
	if req.Quantity == nil {
		return badRequest(l, "set_quantity_error", "quantity is required", nil)
	}

	item, err := h.Svc.SetQuantity(ctx, uid, productID, *req.Quantity)
	if err != nil {
		return fail(l, "set_quantity_error", err)
	}
	if item == nil {
		l.Info("cart_item_removed", "product_id", productID)
		return c.NoContent(http.StatusNoContent)
	}

	l.Info("set_quantity_success", "product_id", productID, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	uid, err := userID(c)
	if err != nil {
		l.Warn("remove_from_cart_error", "status", http.StatusUnauthorized, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	productID, err := uuidParam(c, "product_id")
	if err != nil {
		return badRequest(l, "remove_from_cart_error", "product_id is not a uuid", err)
	}

	if err := h.Svc.Remove(ctx, uid, productID); err != nil {
		return fail(l, "remove_from_cart_error", err)
	}

	l.Info("remove_from_cart_success", "product_id", productID)
	return c.NoContent(http.StatusNoContent)
}
