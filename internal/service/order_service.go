package service

import (
	"context"
	"log"

	"github.com/iliyamo/shop-backend/internal/errs"
	"github.com/iliyamo/shop-backend/internal/model"
)

// OrderTx is the set of operations available inside an order transaction.
// LockProduct takes the product's exclusive row lock, which serializes all
// concurrent buyers of that product until the transaction ends.
type OrderTx interface {
	// LockProduct fails with errs.ProductNotFound when the row is absent
	// and errs.OrderLockFailed when the lock cannot be acquired within
	// the configured timeout.
	LockProduct(ctx context.Context, productID int64) (*model.Product, error)
	// SaveProduct persists the stock and status of a locked product.
	SaveProduct(ctx context.Context, p *model.Product) error
	// InsertOrder persists the order together with its items and fills
	// in the generated IDs.
	InsertOrder(ctx context.Context, o *model.Order) error
	// GetOrderWithItems loads an order regardless of buyer, failing with
	// errs.OrderNotFound when absent.
	GetOrderWithItems(ctx context.Context, orderID int64) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
}

// OrderStore is the persistence contract for orders. WithinTx runs fn in a
// single transaction, committing when fn returns nil and rolling back
// otherwise.
type OrderStore interface {
	WithinTx(ctx context.Context, fn func(tx OrderTx) error) error
	// GetByIDForBuyer loads the buyer's order with items. An order owned
	// by someone else is reported as errs.OrderNotFound so existence is
	// not leaked.
	GetByIDForBuyer(ctx context.Context, orderID, buyerID int64) (*model.Order, error)
	ListByBuyer(ctx context.Context, buyerID int64, page model.PageRequest) ([]model.Order, int64, error)
}

// OrderEventPublisher pushes order lifecycle events to the message broker.
// Publishing is best effort and never fails the request.
type OrderEventPublisher interface {
	OrderCreated(ctx context.Context, o *model.Order)
	OrderCancelled(ctx context.Context, o *model.Order)
}

// OrderService creates and cancels orders under the product row lock,
// keeping stock non-negative across concurrent buyers.
type OrderService struct {
	orders    OrderStore
	publisher OrderEventPublisher // optional, may be nil
}

func NewOrderService(orders OrderStore, publisher OrderEventPublisher) *OrderService {
	return &OrderService{orders: orders, publisher: publisher}
}

// CreateOrder places a PENDING order for quantity units of a product. The
// product row is locked for the whole transaction, so the stock check and
// decrement are atomic with the order insert.
func (s *OrderService) CreateOrder(ctx context.Context, buyerID, productID int64, quantity int) (*model.Order, error) {
	var order *model.Order
	err := s.orders.WithinTx(ctx, func(tx OrderTx) error {
		product, err := tx.LockProduct(ctx, productID)
		if err != nil {
			return err
		}
		if err := product.DecreaseStock(quantity); err != nil {
			return err
		}
		if err := tx.SaveProduct(ctx, product); err != nil {
			return err
		}
		order = model.NewOrder(buyerID, product, quantity)
		return tx.InsertOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("order created: orderId=%d buyerId=%d productId=%d quantity=%d",
		order.ID, buyerID, productID, quantity)
	if s.publisher != nil {
		s.publisher.OrderCreated(ctx, order)
	}
	return order, nil
}

// CancelOrder moves the buyer's order to CANCELLED and restores the stock
// of every item, locking each product row before the increment.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, buyerID int64) error {
	var cancelled *model.Order
	err := s.orders.WithinTx(ctx, func(tx OrderTx) error {
		order, err := tx.GetOrderWithItems(ctx, orderID)
		if err != nil {
			return err
		}
		if order.BuyerID != buyerID {
			return errs.AccessDenied
		}
		if err := order.Cancel(); err != nil {
			return err
		}
		if err := tx.UpdateOrderStatus(ctx, order.ID, order.Status); err != nil {
			return err
		}
		for i := range order.Items {
			item := &order.Items[i]
			product, err := tx.LockProduct(ctx, item.ProductID)
			if err != nil {
				return err
			}
			product.IncreaseStock(item.Quantity)
			if err := tx.SaveProduct(ctx, product); err != nil {
				return err
			}
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("order cancelled: orderId=%d buyerId=%d", orderID, buyerID)
	if s.publisher != nil {
		s.publisher.OrderCancelled(ctx, cancelled)
	}
	return nil
}

// GetOrder returns the buyer's order with its items.
func (s *OrderService) GetOrder(ctx context.Context, orderID, buyerID int64) (*model.Order, error) {
	return s.orders.GetByIDForBuyer(ctx, orderID, buyerID)
}

// ListMyOrders pages through the buyer's orders, newest first.
func (s *OrderService) ListMyOrders(ctx context.Context, buyerID int64, page model.PageRequest) ([]model.Order, model.PagingInfo, error) {
	items, total, err := s.orders.ListByBuyer(ctx, buyerID, page)
	if err != nil {
		return nil, model.PagingInfo{}, err
	}
	return items, model.PagingInfo{CurrentPage: page.Page, PageSize: page.Size, TotalElements: total}, nil
}
