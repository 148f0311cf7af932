package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-backend/internal/errs"
	"github.com/iliyamo/shop-backend/internal/middleware"
	"github.com/iliyamo/shop-backend/internal/service"
)

// OrderHandler exposes order placement, listing and cancellation for the
// authenticated buyer.
type OrderHandler struct {
	Orders *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{Orders: svc}
}

type orderCreateReq struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Create places an order for one product.
func (h *OrderHandler) Create(c echo.Context) error {
	p := middleware.Principal(c)
	if p == nil {
		return Fail(c, errs.Unauthorized)
	}
	var req orderCreateReq
	if err := c.Bind(&req); err != nil {
		return failInput(c, "invalid request body")
	}
	if req.ProductID <= 0 {
		return failInput(c, "productId is required")
	}
	if req.Quantity < 1 {
		return failInput(c, "quantity must be at least 1")
	}

	order, err := h.Orders.CreateOrder(c.Request().Context(), p.ID, req.ProductID, req.Quantity)
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, http.StatusCreated, newOrderView(order))
}

// List pages the caller's orders, newest first.
func (h *OrderHandler) List(c echo.Context) error {
	p := middleware.Principal(c)
	if p == nil {
		return Fail(c, errs.Unauthorized)
	}
	items, paging, err := h.Orders.ListMyOrders(c.Request().Context(), p.ID, pageQuery(c))
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, http.StatusOK, pageView{Content: newOrderViews(items), Paging: paging})
}

// Get returns one of the caller's orders with its items.
func (h *OrderHandler) Get(c echo.Context) error {
	p := middleware.Principal(c)
	if p == nil {
		return Fail(c, errs.Unauthorized)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return Fail(c, errs.OrderNotFound)
	}
	order, err := h.Orders.GetOrder(c.Request().Context(), id, p.ID)
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, http.StatusOK, newOrderView(order))
}

// Cancel moves the caller's order to CANCELLED and restores stock.
func (h *OrderHandler) Cancel(c echo.Context) error {
	p := middleware.Principal(c)
	if p == nil {
		return Fail(c, errs.Unauthorized)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return Fail(c, errs.OrderNotFound)
	}
	if err := h.Orders.CancelOrder(c.Request().Context(), id, p.ID); err != nil {
		return Fail(c, err)
	}
	return OK(c, http.StatusOK, nil)
}
