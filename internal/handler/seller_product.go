package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-backend/internal/errs"
	"github.com/iliyamo/shop-backend/internal/middleware"
	"github.com/iliyamo/shop-backend/internal/service"
)

// SellerProductHandler covers the seller-facing product management. Routes
// are mounted behind RequireRole(SELLER, ADMIN).
type SellerProductHandler struct {
	Seller *service.SellerProductService
}

func NewSellerProductHandler(svc *service.SellerProductService) *SellerProductHandler {
	return &SellerProductHandler{Seller: svc}
}

type productCreateReq struct {
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	StockQuantity int    `json:"stockQuantity"`
}

type productUpdateReq struct {
	Name          *string `json:"name"`
	Price         *int64  `json:"price"`
	StockQuantity *int    `json:"stockQuantity"`
}

// Create registers a product for the calling seller.
func (h *SellerProductHandler) Create(c echo.Context) error {
	p := middleware.Principal(c)
	if p == nil {
		return Fail(c, errs.Unauthorized)
	}
	var req productCreateReq
	if err := c.Bind(&req); err != nil {
		return failInput(c, "invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Name) > 200 {
		return failInput(c, "name must be 1-200 characters")
	}
	if req.Price < 0 {
		return failInput(c, "price must not be negative")
	}
	if req.StockQuantity < 0 {
		return failInput(c, "stockQuantity must not be negative")
	}

	created, err := h.Seller.CreateProduct(c.Request().Context(), p.ID, req.Name, req.Price, req.StockQuantity)
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, http.StatusCreated, newProductView(created))
}

// ListMine pages the caller's products in all statuses.
func (h *SellerProductHandler) ListMine(c echo.Context) error {
	p := middleware.Principal(c)
	if p == nil {
		return Fail(c, errs.Unauthorized)
	}
	items, paging, err := h.Seller.ListMyProducts(c.Request().Context(), p.ID, pageQuery(c))
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, http.StatusOK, pageView{Content: newProductViews(items), Paging: paging})
}

// Update applies a partial update to the caller's product. Absent fields
// stay unchanged.
func (h *SellerProductHandler) Update(c echo.Context) error {
	p := middleware.Principal(c)
	if p == nil {
		return Fail(c, errs.Unauthorized)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return Fail(c, errs.ProductNotFound)
	}
	var req productUpdateReq
	if err := c.Bind(&req); err != nil {
		return failInput(c, "invalid request body")
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" || len(trimmed) > 200 {
			return failInput(c, "name must be 1-200 characters")
		}
		req.Name = &trimmed
	}
	if req.Price != nil && *req.Price < 0 {
		return failInput(c, "price must not be negative")
	}
	if req.StockQuantity != nil && *req.StockQuantity < 0 {
		return failInput(c, "stockQuantity must not be negative")
	}

	updated, err := h.Seller.UpdateProduct(c.Request().Context(), id, p.ID, service.ProductUpdateInput{
		Name:          req.Name,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, http.StatusOK, newProductView(updated))
}

// Delete removes the caller's product.
func (h *SellerProductHandler) Delete(c echo.Context) error {
	p := middleware.Principal(c)
	if p == nil {
		return Fail(c, errs.Unauthorized)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return Fail(c, errs.ProductNotFound)
	}
	if err := h.Seller.DeleteProduct(c.Request().Context(), id, p.ID); err != nil {
		return Fail(c, err)
	}
	return OK(c, http.StatusOK, nil)
}
