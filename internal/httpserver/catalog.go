package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(l, "get_product_failed", "id is not a uuid", err)
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page, offset, limit := pageParams(c)
	total, items, err := h.Svc.GetProducts(ctx, offset, limit)
	if err != nil {
		return fail(l, "get_products_error", err)
	}
	return c.JSON(http.StatusOK, transport.Page[models.Product]{Data: items, Meta: util.NewMeta(page, offset, limit, total)})
}

func (h *CatalogHTTP) GetArchived(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_archived")

	page, offset, limit := pageParams(c)
	total, items, err := h.Svc.GetArchived(ctx, offset, limit)
	if err != nil {
		return fail(l, "get_archived_error", err)
	}
	return c.JSON(http.StatusOK, transport.Page[models.Product]{Data: items, Meta: util.NewMeta(page, offset, limit, total)})
}

func (h *CatalogHTTP) TopProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.top")

	items, err := h.Svc.TopProducts(ctx, util.ParseIntDefault(c.QueryParam("limit"), 8))
	if err != nil {
		return fail(l, "top_products_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page, offset, limit := pageParams(c)
	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return fail(l, "search_error", err)
	}
	return c.JSON(http.StatusOK, transport.Page[models.Product]{Data: items, Meta: util.NewMeta(page, offset, limit, total)})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_create_error", "invalid body", err)
	}

	p, err := h.Svc.CreateProduct(ctx, service.ProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Stock:         req.Stock,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		ImageURL:      req.ImageURL,
		CategoryID:    req.CategoryID,
	})
	if err != nil {
		return fail(l, "product_create_error", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "patch_product")

	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(l, "product_patch_error", "id is not a uuid", err)
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_patch_error", "invalid body", err)
	}

	p, err := h.Svc.PatchProduct(ctx, id, service.ProductPatch{
		Name:          req.Name,
		Description:   req.Description,
		Stock:         req.Stock,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		ImageURL:      req.ImageURL,
		CategoryID:    req.CategoryID,
	})
	if err != nil {
		return fail(l, "product_patch_error", err)
	}

	l.Info("patch_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) Archive(c echo.Context) error {
	return h.setArchived(c, true)
}

func (h *CatalogHTTP) Unarchive(c echo.Context) error {
	return h.setArchived(c, false)
}

func (h *CatalogHTTP) setArchived(c echo.Context, archived bool) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "archive_product", "archived", archived)

	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(l, "product_archive_error", "id is not a uuid", err)
	}

	p, err := h.Svc.SetArchived(ctx, id, archived)
	if err != nil {
		return fail(l, "product_archive_error", err)
	}
	return c.JSON(http.StatusOK, p)
}
