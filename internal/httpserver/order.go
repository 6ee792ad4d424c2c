package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderHTTP struct {
	Finalizer *service.Finalizer
	Svc       *service.OrderService
	Checkout  *service.CheckoutService
}

func (h *OrderHTTP) CreateCheckoutSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.session")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CheckoutSessionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "checkout_session_error", "invalid body", err)
	}

	s, err := h.Checkout.CreateSession(ctx, uid, req.Email)
	if err != nil {
		return fail(l, "checkout_session_error", err)
	}

	l.Info("checkout_session_created", "session_id", s.ID)
	return c.JSON(http.StatusCreated, transport.CheckoutSessionResponse{SessionID: s.ID, URL: s.URL})
}

func (h *OrderHTTP) Finalize(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.finalize")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.FinalizeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "finalize_order_error", "invalid body", err)
	}

	in := service.FinalizeRequest{
		SessionID: req.SessionID,
		UserID:    uid,
		Email:     req.Email,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.RequestedLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	if req.Address != nil {
		addr := req.Address.Snapshot()
		in.Address = &addr
	}

	res, err := h.Finalizer.Finalize(ctx, in)
	if err != nil {
		return fail(l, "finalize_order_error", err)
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	l.Info("finalize_order_success", "order_id", res.Order.ID, "created", res.Created)
	return c.JSON(status, transport.FinalizeResponse{Order: res.Order, Created: res.Created})
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	page, offset, limit := pageParams(c)
	total, orders, err := h.Svc.ListForUser(ctx, uid, offset, limit)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.Page[models.Order]{Data: orders, Meta: util.NewMeta(page, offset, limit, total)})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(l, "get_order_error", "id is not a uuid", err)
	}

	o, err := h.Svc.Get(ctx, id, uid, isAdmin(c))
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) AdminListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.order.list")

	page, offset, limit := pageParams(c)
	total, orders, err := h.Svc.ListAll(ctx, c.QueryParam("status"), offset, limit)
	if err != nil {
		return fail(l, "admin_list_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.Page[models.Order]{Data: orders, Meta: util.NewMeta(page, offset, limit, total)})
}

func (h *OrderHTTP) AdminPatchOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.order.patch")

	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(l, "patch_order_error", "id is not a uuid", err)
	}

	var req transport.PatchOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "patch_order_error", "invalid body", err)
	}

	patch := service.FulfillmentPatch{Carrier: req.Carrier, TrackingNumber: req.TrackingNumber}
	if req.Status != nil {
		st := domain.OrderStatus(*req.Status)
		patch.Status = &st
	}

	o, err := h.Svc.UpdateFulfillment(ctx, id, patch)
	if err != nil {
		return fail(l, "patch_order_error", err)
	}

	l.Info("patch_order_success", "order_id", o.ID, "status", o.Status)
	return c.JSON(http.StatusOK, o)
}
