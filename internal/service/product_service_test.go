package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/shop-backend/internal/errs"
	"github.com/iliyamo/shop-backend/internal/model"
	"github.com/iliyamo/shop-backend/internal/repository/memstore"
	"github.com/iliyamo/shop-backend/internal/service"
)

func TestPublicListHidesStoppedProducts(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	selling := model.NewProduct("selling", 1000, 5, 1)
	soldOut := model.NewProduct("sold out", 1000, 0, 1)
	stopped := model.NewProduct("stopped", 1000, 5, 1)
	stopped.Status = model.ProductStopped
	for _, p := range []*model.Product{selling, soldOut, stopped} {
		if err := store.Products().Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	svc := service.NewProductService(store.Products())
	items, paging, err := svc.ListProducts(ctx, model.NormalizePage(0, 10))
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if paging.TotalElements != 2 || len(items) != 2 {
		t.Fatalf("listed %d/%d, want 2/2", len(items), paging.TotalElements)
	}
	for _, p := range items {
		if p.Status == model.ProductStopped {
			t.Errorf("stopped product leaked into public listing: %+v", p)
		}
	}
}

func TestSellerUpdateEnforcesOwnership(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	svc := service.NewSellerProductService(store.Products())

	created, err := svc.CreateProduct(ctx, 11, "mine", 5000, 3)
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	price := int64(6000)
	if _, err := svc.UpdateProduct(ctx, created.ID, 22, service.ProductUpdateInput{Price: &price}); !errors.Is(err, errs.AccessDenied) {
		t.Errorf("foreign update error = %v, want ACCESS_DENIED", err)
	}
	if err := svc.DeleteProduct(ctx, created.ID, 22); !errors.Is(err, errs.AccessDenied) {
		t.Errorf("foreign delete error = %v, want ACCESS_DENIED", err)
	}

	updated, err := svc.UpdateProduct(ctx, created.ID, 11, service.ProductUpdateInput{Price: &price})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if updated.Price != 6000 || updated.Name != "mine" || updated.StockQuantity != 3 {
		t.Errorf("partial update result = %+v", updated)
	}

	if err := svc.DeleteProduct(ctx, created.ID, 11); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if _, err := svc.UpdateProduct(ctx, created.ID, 11, service.ProductUpdateInput{}); !errors.Is(err, errs.ProductNotFound) {
		t.Errorf("update after delete error = %v", err)
	}
}

func TestSellerStockUpdateReconcilesStatus(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	svc := service.NewSellerProductService(store.Products())

	created, err := svc.CreateProduct(ctx, 1, "widget", 1000, 0)
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if created.Status != model.ProductSoldOut {
		t.Fatalf("zero-stock create status = %s", created.Status)
	}

	stock := 5
	updated, err := svc.UpdateProduct(ctx, created.ID, 1, service.ProductUpdateInput{StockQuantity: &stock})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if updated.Status != model.ProductSelling {
		t.Errorf("status after restock = %s, want SELLING", updated.Status)
	}
}

func TestListMyProductsIncludesAllStatuses(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	svc := service.NewSellerProductService(store.Products())

	if _, err := svc.CreateProduct(ctx, 1, "a", 1000, 5); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	stopped, err := svc.CreateProduct(ctx, 1, "b", 1000, 5)
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	stopped.Status = model.ProductStopped
	if err := store.Products().Update(ctx, stopped); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := svc.CreateProduct(ctx, 2, "other seller", 1000, 5); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	items, paging, err := svc.ListMyProducts(ctx, 1, model.NormalizePage(0, 10))
	if err != nil {
		t.Fatalf("ListMyProducts: %v", err)
	}
	if paging.TotalElements != 2 || len(items) != 2 {
		t.Errorf("listed %d/%d, want 2/2", len(items), paging.TotalElements)
	}
}
