package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-backend/internal/errs"
	"github.com/iliyamo/shop-backend/internal/service"
)

// ProductHandler serves the public, unauthenticated product reads.
type ProductHandler struct {
	Products *service.ProductService
}

func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{Products: svc}
}

// List pages publicly visible products.
func (h *ProductHandler) List(c echo.Context) error {
	items, paging, err := h.Products.ListProducts(c.Request().Context(), pageQuery(c))
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, http.StatusOK, pageView{Content: newProductViews(items), Paging: paging})
}

// Get returns one product by id.
func (h *ProductHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return Fail(c, errs.ProductNotFound)
	}
	p, err := h.Products.GetProduct(c.Request().Context(), id)
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, http.StatusOK, newProductView(p))
}
