package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/iliyamo/shop-backend/internal/errs"
	"github.com/iliyamo/shop-backend/internal/model"
	"github.com/iliyamo/shop-backend/internal/repository/memstore"
	"github.com/iliyamo/shop-backend/internal/service"
)

func newOrderFixture(t *testing.T, stock int) (*service.OrderService, *memstore.Store, *model.Product) {
	t.Helper()
	store := memstore.New()
	p := model.NewProduct("limited drop", 40000, stock, 99)
	if err := store.Products().Create(context.Background(), p); err != nil {
		t.Fatalf("Create product: %v", err)
	}
	return service.NewOrderService(store.Orders(), nil), store, p
}

func TestCreateOrderHappyPath(t *testing.T) {
	svc, store, p := newOrderFixture(t, 5)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, 1, p.ID, 2)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.ID == 0 || order.Status != model.OrderPending {
		t.Errorf("order = %+v", order)
	}
	if order.TotalPrice != 80000 {
		t.Errorf("total = %d, want 80000", order.TotalPrice)
	}
	if len(order.Items) != 1 || order.Items[0].ProductName != "limited drop" {
		t.Errorf("items = %+v", order.Items)
	}

	got, err := store.Products().GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.StockQuantity != 3 {
		t.Errorf("stock after order = %d, want 3", got.StockQuantity)
	}
}

func TestCreateOrderFailures(t *testing.T) {
	svc, store, p := newOrderFixture(t, 2)
	ctx := context.Background()

	if _, err := svc.CreateOrder(ctx, 1, 9999, 1); !errors.Is(err, errs.ProductNotFound) {
		t.Errorf("missing product error = %v", err)
	}
	if _, err := svc.CreateOrder(ctx, 1, p.ID, 3); !errors.Is(err, errs.InsufficientStock) {
		t.Errorf("oversell error = %v", err)
	}
	// the failed attempt must not have touched stock or created an order
	got, _ := store.Products().GetByID(ctx, p.ID)
	if got.StockQuantity != 2 {
		t.Errorf("stock after failed order = %d, want 2", got.StockQuantity)
	}
	if store.OrderCount() != 0 {
		t.Errorf("orders after failures = %d, want 0", store.OrderCount())
	}
}

func TestConcurrentBuyersNeverOversell(t *testing.T) {
	svc, store, p := newOrderFixture(t, 1)
	ctx := context.Background()

	var ok, insufficient int32
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(buyer int64) {
			defer wg.Done()
			_, err := svc.CreateOrder(ctx, buyer, p.ID, 1)
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, errs.InsufficientStock):
				atomic.AddInt32(&insufficient, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	if ok != 1 || insufficient != 1 {
		t.Errorf("results = %d ok / %d insufficient, want 1/1", ok, insufficient)
	}
	got, _ := store.Products().GetByID(ctx, p.ID)
	if got.StockQuantity != 0 || got.Status != model.ProductSoldOut {
		t.Errorf("final product = stock %d status %s", got.StockQuantity, got.Status)
	}
}

func TestBulkContentionMatchesStock(t *testing.T) {
	const stock = 100
	const buyers = 150

	svc, store, p := newOrderFixture(t, stock)
	ctx := context.Background()

	var ok int32
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(buyer int64) {
			defer wg.Done()
			_, err := svc.CreateOrder(ctx, buyer, p.ID, 1)
			if err == nil {
				atomic.AddInt32(&ok, 1)
			} else if !errors.Is(err, errs.InsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	if ok != stock {
		t.Errorf("successful orders = %d, want %d", ok, stock)
	}
	if store.OrderCount() != stock {
		t.Errorf("persisted orders = %d, want %d", store.OrderCount(), stock)
	}
	got, _ := store.Products().GetByID(ctx, p.ID)
	if got.StockQuantity != 0 {
		t.Errorf("final stock = %d, want 0", got.StockQuantity)
	}
}

func TestCancelOrderRestoresStock(t *testing.T) {
	svc, store, p := newOrderFixture(t, 3)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, 1, p.ID, 3)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if err := svc.CancelOrder(ctx, order.ID, 1); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}

	got, _ := store.Products().GetByID(ctx, p.ID)
	if got.StockQuantity != 3 || got.Status != model.ProductSelling {
		t.Errorf("product after cancel = stock %d status %s", got.StockQuantity, got.Status)
	}
	cancelled, err := svc.GetOrder(ctx, order.ID, 1)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if cancelled.Status != model.OrderCancelled {
		t.Errorf("order status = %s, want CANCELLED", cancelled.Status)
	}
}

func TestCancelOrderGuards(t *testing.T) {
	svc, _, p := newOrderFixture(t, 5)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, 1, p.ID, 1)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if err := svc.CancelOrder(ctx, 9999, 1); !errors.Is(err, errs.OrderNotFound) {
		t.Errorf("missing order error = %v", err)
	}
	if err := svc.CancelOrder(ctx, order.ID, 2); !errors.Is(err, errs.AccessDenied) {
		t.Errorf("foreign buyer error = %v", err)
	}
	if err := svc.CancelOrder(ctx, order.ID, 1); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if err := svc.CancelOrder(ctx, order.ID, 1); !errors.Is(err, errs.OrderAlreadyCanceled) {
		t.Errorf("double cancel error = %v", err)
	}
}

func TestConcurrentCancelAndCreateKeepStockConsistent(t *testing.T) {
	const stock = 10
	svc, store, p := newOrderFixture(t, stock)
	ctx := context.Background()

	// half the stock is already ordered and will be cancelled mid-flight
	var existing []int64
	for i := 0; i < 5; i++ {
		o, err := svc.CreateOrder(ctx, 1, p.ID, 1)
		if err != nil {
			t.Fatalf("seed order: %v", err)
		}
		existing = append(existing, o.ID)
	}

	var created int32
	var wg sync.WaitGroup
	for _, id := range existing {
		wg.Add(1)
		go func(orderID int64) {
			defer wg.Done()
			if err := svc.CancelOrder(ctx, orderID, 1); err != nil {
				t.Errorf("CancelOrder(%d): %v", orderID, err)
			}
		}(id)
	}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(buyer int64) {
			defer wg.Done()
			_, err := svc.CreateOrder(ctx, buyer, p.ID, 1)
			if err == nil {
				atomic.AddInt32(&created, 1)
			} else if !errors.Is(err, errs.InsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}(int64(i + 2))
	}
	wg.Wait()

	got, _ := store.Products().GetByID(ctx, p.ID)
	if got.StockQuantity < 0 {
		t.Fatalf("stock went negative: %d", got.StockQuantity)
	}
	// 10 initial - 5 seeded + 5 cancelled - created = final
	want := stock - int(created)
	if got.StockQuantity != want {
		t.Errorf("final stock = %d, want %d (created=%d)", got.StockQuantity, want, created)
	}
}

func TestListMyOrdersPagesNewestFirst(t *testing.T) {
	svc, _, p := newOrderFixture(t, 100)
	ctx := context.Background()

	var last int64
	for i := 0; i < 15; i++ {
		o, err := svc.CreateOrder(ctx, 7, p.ID, 1)
		if err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
		last = o.ID
	}
	// another buyer's order must not leak in
	if _, err := svc.CreateOrder(ctx, 8, p.ID, 1); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	items, paging, err := svc.ListMyOrders(ctx, 7, model.NormalizePage(0, 10))
	if err != nil {
		t.Fatalf("ListMyOrders: %v", err)
	}
	if paging.TotalElements != 15 || len(items) != 10 {
		t.Errorf("page = %d items / total %d, want 10/15", len(items), paging.TotalElements)
	}
	if items[0].ID != last {
		t.Errorf("first item = %d, want newest %d", items[0].ID, last)
	}

	items, _, err = svc.ListMyOrders(ctx, 7, model.NormalizePage(1, 10))
	if err != nil {
		t.Fatalf("ListMyOrders page 1: %v", err)
	}
	if len(items) != 5 {
		t.Errorf("second page = %d items, want 5", len(items))
	}
}

func TestGetOrderCollapsesForeignIntoNotFound(t *testing.T) {
	svc, _, p := newOrderFixture(t, 5)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, 1, p.ID, 1)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if _, err := svc.GetOrder(ctx, order.ID, 2); !errors.Is(err, errs.OrderNotFound) {
		t.Errorf("foreign order error = %v, want ORDER_NOT_FOUND", err)
	}
}
