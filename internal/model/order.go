package model

import (
	"time"

	"github.com/iliyamo/shop-backend/internal/errs"
)

// OrderStatus is the state of an order in its lifecycle. Transitions are
// forward-only: PENDING -> PAID -> SHIPPING -> DELIVERED, with CANCELLED
// reachable from PENDING and PAID. DELIVERED and CANCELLED are terminal.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderShipping  OrderStatus = "SHIPPING"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderPaid
}

// OrderItem is a line inside an order. ProductName and ProductPrice are
// snapshots taken at order creation and never mutated afterwards, so the
// order keeps its original pricing even if the product changes.
type OrderItem struct {
	ID           int64
	OrderID      int64
	ProductID    int64
	ProductName  string
	ProductPrice int64
	Quantity     int
}

// Subtotal is the snapshot price times the ordered quantity.
func (i *OrderItem) Subtotal() int64 { return i.ProductPrice * int64(i.Quantity) }

// Order is the aggregate root for order items. Items exist only inside their
// parent order: they are created with it and removed with it, never
// referenced standalone.
type Order struct {
	ID         int64
	BuyerID    int64
	Status     OrderStatus
	TotalPrice int64
	Items      []OrderItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewOrder builds a PENDING order for a single product, snapshotting the
// product's name and price into the line item.
func NewOrder(buyerID int64, product *Product, quantity int) *Order {
	o := &Order{
		BuyerID: buyerID,
		Status:  OrderPending,
	}
	o.addItem(OrderItem{
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductPrice: product.Price,
		Quantity:     quantity,
	})
	return o
}

func (o *Order) addItem(item OrderItem) {
	o.Items = append(o.Items, item)
	o.recalcTotal()
}

// recalcTotal keeps the invariant totalPrice == sum of item subtotals.
func (o *Order) recalcTotal() {
	var total int64
	for i := range o.Items {
		total += o.Items[i].Subtotal()
	}
	o.TotalPrice = total
}

// Cancel moves the order to CANCELLED. A second cancellation fails with
// ORDER_ALREADY_CANCELLED; any non-cancellable state fails with
// ORDER_CANNOT_CANCEL.
func (o *Order) Cancel() error {
	if o.Status == OrderCancelled {
		return errs.OrderAlreadyCanceled
	}
	if !o.Status.Cancellable() {
		return errs.OrderCannotCancel
	}
	o.Status = OrderCancelled
	return nil
}
