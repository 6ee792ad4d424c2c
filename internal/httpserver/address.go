package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type AddressHTTP struct {
	Svc *service.AddressService
}

func (h *AddressHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.get")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	a, err := h.Svc.Get(ctx, uid)
	if err != nil {
		return fail(l, "get_address_error", err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AddressHTTP) Put(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.put")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.AddressRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "put_address_error", "invalid body", err)
	}

	a, err := h.Svc.Put(ctx, uid, req.Snapshot())
	if err != nil {
		return fail(l, "put_address_error", err)
	}
	return c.JSON(http.StatusOK, a)
}
