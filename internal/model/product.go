package model

import (
	"time"

	"github.com/iliyamo/shop-backend/internal/errs"
)

// ProductStatus is the sale state of a product. SELLING and SOLD_OUT follow
// the stock level automatically; STOPPED is set by the seller and never
// changes on stock writes.
type ProductStatus string

const (
	ProductSelling ProductStatus = "SELLING"
	ProductSoldOut ProductStatus = "SOLD_OUT"
	ProductStopped ProductStatus = "STOPPED"
)

// Product mirrors the 'products' table. Price is in integer minor units.
type Product struct {
	ID            int64
	Name          string
	Price         int64
	StockQuantity int
	Status        ProductStatus
	SellerID      int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewProduct builds a product in its initial SELLING state.
func NewProduct(name string, price int64, stock int, sellerID int64) *Product {
	p := &Product{
		Name:          name,
		Price:         price,
		StockQuantity: stock,
		Status:        ProductSelling,
		SellerID:      sellerID,
	}
	p.reconcileStatus()
	return p
}

// DecreaseStock removes quantity units from stock. The caller must hold the
// product's row lock. Fails with INSUFFICIENT_STOCK when stock would go
// negative; on success the status is reconciled with the new level.
func (p *Product) DecreaseStock(quantity int) error {
	if p.StockQuantity < quantity {
		return errs.InsufficientStock
	}
	p.StockQuantity -= quantity
	p.reconcileStatus()
	return nil
}

// IncreaseStock returns quantity units to stock, used when an order is
// cancelled. Status is reconciled with the new level.
func (p *Product) IncreaseStock(quantity int) {
	p.StockQuantity += quantity
	p.reconcileStatus()
}

// ApplyUpdate performs a partial update: nil pointers leave the field
// unchanged. A stock change reconciles the status.
func (p *Product) ApplyUpdate(name *string, price *int64, stock *int) {
	if name != nil {
		p.Name = *name
	}
	if price != nil {
		p.Price = *price
	}
	if stock != nil {
		p.StockQuantity = *stock
		p.reconcileStatus()
	}
}

// reconcileStatus recomputes the status from the stock level. Only the
// SELLING/SOLD_OUT pair moves; STOPPED is sticky.
func (p *Product) reconcileStatus() {
	if p.StockQuantity == 0 && p.Status == ProductSelling {
		p.Status = ProductSoldOut
	} else if p.StockQuantity > 0 && p.Status == ProductSoldOut {
		p.Status = ProductSelling
	}
}
