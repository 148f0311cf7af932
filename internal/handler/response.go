// Package handler contains the HTTP endpoints. Every response is wrapped in
// the same envelope: {"success": bool, "data": ..., "error": {code,message}}.
package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-backend/internal/errs"
	"github.com/iliyamo/shop-backend/internal/model"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

// OK writes a success envelope.
func OK(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

// Fail maps a business error onto its HTTP status and error body. Anything
// that is not an errs.Error becomes INTERNAL_SERVER_ERROR without leaking
// the underlying message.
func Fail(c echo.Context, err error) error {
	var be *errs.Error
	if !errors.As(err, &be) {
		be = errs.Internal
	}
	return c.JSON(be.Status, envelope{
		Success: false,
		Error:   &errorBody{Code: string(be.Code), Message: be.Message},
	})
}

// failInput is the shorthand for request validation failures.
func failInput(c echo.Context, message string) error {
	return Fail(c, errs.WithMessage(errs.InvalidInput, message))
}

// ----- views -----

type memberView struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func newMemberView(m *model.Member) memberView {
	return memberView{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Phone:     m.Phone,
		Role:      string(m.Role),
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

type productView struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Price         int64     `json:"price"`
	StockQuantity int       `json:"stockQuantity"`
	Status        string    `json:"status"`
	SellerID      int64     `json:"sellerId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func newProductView(p *model.Product) productView {
	return productView{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		Status:        string(p.Status),
		SellerID:      p.SellerID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func newProductViews(items []model.Product) []productView {
	out := make([]productView, 0, len(items))
	for i := range items {
		out = append(out, newProductView(&items[i]))
	}
	return out
}

type orderItemView struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"productId"`
	ProductName  string `json:"productName"`
	ProductPrice int64  `json:"productPrice"`
	Quantity     int    `json:"quantity"`
	Subtotal     int64  `json:"subtotal"`
}

type orderView struct {
	ID         int64           `json:"id"`
	Status     string          `json:"status"`
	TotalPrice int64           `json:"totalPrice"`
	Items      []orderItemView `json:"items"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func newOrderView(o *model.Order) orderView {
	items := make([]orderItemView, 0, len(o.Items))
	for i := range o.Items {
		it := &o.Items[i]
		items = append(items, orderItemView{
			ID:           it.ID,
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductPrice: it.ProductPrice,
			Quantity:     it.Quantity,
			Subtotal:     it.Subtotal(),
		})
	}
	return orderView{
		ID:         o.ID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice,
		Items:      items,
		CreatedAt:  o.CreatedAt,
	}
}

func newOrderViews(items []model.Order) []orderView {
	out := make([]orderView, 0, len(items))
	for i := range items {
		out = append(out, newOrderView(&items[i]))
	}
	return out
}

// pageView is the paged listing shape shared by products and orders.
type pageView struct {
	Content interface{}      `json:"content"`
	Paging  model.PagingInfo `json:"paging"`
}

// pageQuery reads and clamps the ?page=&size= query values.
func pageQuery(c echo.Context) model.PageRequest {
	page := intQuery(c, "page", 0)
	size := intQuery(c, "size", 10)
	return model.NormalizePage(page, size)
}

func intQuery(c echo.Context, name string, def int) int {
	s := c.QueryParam(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// pathID parses a numeric path parameter; ok is false for junk.
func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}
