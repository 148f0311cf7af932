package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/shop-backend/internal/errs"
	"github.com/iliyamo/shop-backend/internal/model"
)

// ProductRepo persists products in the 'products' table.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

const productColumns = "id, name, price, stock_quantity, status, seller_id, created_at, updated_at"

// Create inserts a product and fills in its generated ID.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO products (name, price, stock_quantity, status, seller_id, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?)`,
		p.Name, p.Price, p.StockQuantity, string(p.Status), p.SellerID, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// GetByID fetches a product by id.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id=? LIMIT 1", id)
	return scanProductRow(row)
}

// ListByStatuses pages products in any of the given statuses, newest first.
func (r *ProductRepo) ListByStatuses(ctx context.Context, statuses []model.ProductStatus, page model.PageRequest) ([]model.Product, int64, error) {
	if len(statuses) == 0 {
		return []model.Product{}, 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	args := make([]interface{}, 0, len(statuses)+2)
	for _, s := range statuses {
		args = append(args, string(s))
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products WHERE status IN ("+placeholders+")", args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, page.Size, page.Offset())
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE status IN ("+placeholders+
			") ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectProducts(rows)
	return items, total, err
}

// ListBySeller pages the seller's products in all statuses, newest first.
func (r *ProductRepo) ListBySeller(ctx context.Context, sellerID int64, page model.PageRequest) ([]model.Product, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products WHERE seller_id=?", sellerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE seller_id=? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		sellerID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectProducts(rows)
	return items, total, err
}

// Update persists the mutable fields and touches updated_at.
func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE products SET name=?, price=?, stock_quantity=?, status=?, updated_at=? WHERE id=?",
		p.Name, p.Price, p.StockQuantity, string(p.Status), time.Now().UTC(), p.ID)
	return err
}

// Delete removes a product row.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(sc rowScanner) (*model.Product, error) {
	var p model.Product
	err := sc.Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity,
		(*string)(&p.Status), &p.SellerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProductRow(row *sql.Row) (*model.Product, error) {
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ProductNotFound
	}
	return p, err
}

func collectProducts(rows *sql.Rows) ([]model.Product, error) {
	items := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}
