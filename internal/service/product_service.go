package service

import (
	"context"

	"github.com/iliyamo/shop-backend/internal/errs"
	"github.com/iliyamo/shop-backend/internal/model"
)

// ProductStore is the persistence contract for products.
type ProductStore interface {
	// Create inserts the product and fills in its ID.
	Create(ctx context.Context, p *model.Product) error
	// GetByID fails with errs.ProductNotFound when no row matches.
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	ListByStatuses(ctx context.Context, statuses []model.ProductStatus, page model.PageRequest) ([]model.Product, int64, error)
	ListBySeller(ctx context.Context, sellerID int64, page model.PageRequest) ([]model.Product, int64, error)
	// Update persists name, price, stock and status.
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id int64) error
}

// ProductService serves the public, unauthenticated product reads.
type ProductService struct {
	products ProductStore
}

func NewProductService(products ProductStore) *ProductService {
	return &ProductService{products: products}
}

// GetProduct returns a single product by id.
func (s *ProductService) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	return s.products.GetByID(ctx, productID)
}

// ListProducts pages through publicly visible products, newest first.
// STOPPED products are hidden from the public listing.
func (s *ProductService) ListProducts(ctx context.Context, page model.PageRequest) ([]model.Product, model.PagingInfo, error) {
	items, total, err := s.products.ListByStatuses(ctx,
		[]model.ProductStatus{model.ProductSelling, model.ProductSoldOut}, page)
	if err != nil {
		return nil, model.PagingInfo{}, err
	}
	return items, model.PagingInfo{CurrentPage: page.Page, PageSize: page.Size, TotalElements: total}, nil
}

// ProductUpdateInput is a partial update: nil fields stay unchanged.
type ProductUpdateInput struct {
	Name          *string
	Price         *int64
	StockQuantity *int
}

// SellerProductService covers the seller-facing product management. Every
// mutating operation verifies that the caller owns the product.
type SellerProductService struct {
	products ProductStore
}

func NewSellerProductService(products ProductStore) *SellerProductService {
	return &SellerProductService{products: products}
}

// CreateProduct registers a new product for the seller.
func (s *SellerProductService) CreateProduct(ctx context.Context, sellerID int64, name string, price int64, stock int) (*model.Product, error) {
	p := model.NewProduct(name, price, stock, sellerID)
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListMyProducts pages through the seller's own products in all statuses.
func (s *SellerProductService) ListMyProducts(ctx context.Context, sellerID int64, page model.PageRequest) ([]model.Product, model.PagingInfo, error) {
	items, total, err := s.products.ListBySeller(ctx, sellerID, page)
	if err != nil {
		return nil, model.PagingInfo{}, err
	}
	return items, model.PagingInfo{CurrentPage: page.Page, PageSize: page.Size, TotalElements: total}, nil
}

// UpdateProduct applies a partial update after the ownership check. A stock
// change reconciles the product status.
func (s *SellerProductService) UpdateProduct(ctx context.Context, productID, sellerID int64, in ProductUpdateInput) (*model.Product, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.SellerID != sellerID {
		return nil, errs.AccessDenied
	}
	p.ApplyUpdate(in.Name, in.Price, in.StockQuantity)
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProduct removes the seller's product.
func (s *SellerProductService) DeleteProduct(ctx context.Context, productID, sellerID int64) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p.SellerID != sellerID {
		return errs.AccessDenied
	}
	return s.products.Delete(ctx, productID)
}
