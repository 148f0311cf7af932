package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/shop-backend/internal/errs"
	"github.com/iliyamo/shop-backend/internal/model"
	"github.com/iliyamo/shop-backend/internal/service"
)

// lockWaitSeconds bounds how long a transaction waits for a conflicting
// product row lock before the order is rejected with ORDER_LOCK_FAILED.
const lockWaitSeconds = 3

// OrderRepo persists orders and their items, and implements the
// transactional store contract used by the order service. The product row
// lock taken inside a transaction is what serializes concurrent buyers.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

const orderColumns = "id, buyer_id, status, total_price, created_at, updated_at"
const orderItemColumns = "id, order_id, product_id, product_name, product_price, quantity"

// WithinTx runs fn inside a single transaction with the session lock wait
// timeout lowered to the order deadline. fn returning nil commits;
// anything else rolls back.
func (r *OrderRepo) WithinTx(ctx context.Context, fn func(tx service.OrderTx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, "SET innodb_lock_wait_timeout = ?", lockWaitSeconds); err != nil {
		return err
	}
	if err := fn(&orderTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByIDForBuyer loads the order with items only when it belongs to the
// buyer. A missing row and a foreign order are both ORDER_NOT_FOUND so
// callers cannot probe for other buyers' orders.
func (r *OrderRepo) GetByIDForBuyer(ctx context.Context, orderID, buyerID int64) (*model.Order, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id=? AND buyer_id=? LIMIT 1", orderID, buyerID)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	items, err := loadItems(ctx, r.DB, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

// ListByBuyer pages the buyer's orders newest first, hydrating the items of
// the returned page in one extra query.
func (r *OrderRepo) ListByBuyer(ctx context.Context, buyerID int64, page model.PageRequest) ([]model.Order, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM orders WHERE buyer_id=?", buyerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE buyer_id=? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		buyerID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := []model.Order{}
	ids := []int64{}
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.BuyerID, (*string)(&o.Status), &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	items, err := loadItems(ctx, r.DB, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, total, nil
}

// orderTx adapts a *sql.Tx to the service.OrderTx contract.
type orderTx struct{ tx *sql.Tx }

// LockProduct reads the product row with an exclusive lock held until the
// surrounding transaction ends. A lock wait timeout (MySQL 1205) is
// relabelled as the retryable ORDER_LOCK_FAILED conflict.
func (t *orderTx) LockProduct(ctx context.Context, productID int64) (*model.Product, error) {
	row := t.tx.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id=? FOR UPDATE", productID)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ProductNotFound
	}
	if err != nil {
		if isLockWaitTimeout(err) {
			return nil, errs.OrderLockFailed
		}
		return nil, err
	}
	return p, nil
}

func (t *orderTx) SaveProduct(ctx context.Context, p *model.Product) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE products SET stock_quantity=?, status=?, updated_at=? WHERE id=?",
		p.StockQuantity, string(p.Status), time.Now().UTC(), p.ID)
	return err
}

// InsertOrder writes the order row and its items in the same transaction,
// filling in the generated IDs. Items never exist outside their order.
func (t *orderTx) InsertOrder(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()
	res, err := t.tx.ExecContext(ctx,
		"INSERT INTO orders (buyer_id, status, total_price, created_at, updated_at) VALUES (?,?,?,?,?)",
		o.BuyerID, string(o.Status), o.TotalPrice, now, now)
	if err != nil {
		return err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = orderID
	o.CreatedAt = now
	o.UpdatedAt = now

	if len(o.Items) == 0 {
		return nil
	}
	query := "INSERT INTO order_items (order_id, product_id, product_name, product_price, quantity) VALUES "
	args := make([]interface{}, 0, len(o.Items)*5)
	for i := range o.Items {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?,?)"
		item := &o.Items[i]
		item.OrderID = orderID
		args = append(args, orderID, item.ProductID, item.ProductName, item.ProductPrice, item.Quantity)
	}
	itemRes, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	// MySQL returns the first generated id of a multi-row insert.
	firstID, err := itemRes.LastInsertId()
	if err != nil {
		return err
	}
	for i := range o.Items {
		o.Items[i].ID = firstID + int64(i)
	}
	return nil
}

func (t *orderTx) GetOrderWithItems(ctx context.Context, orderID int64) (*model.Order, error) {
	row := t.tx.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id=? LIMIT 1", orderID)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	items, err := loadItems(ctx, t.tx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (t *orderTx) UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE orders SET status=?, updated_at=? WHERE id=?",
		string(status), time.Now().UTC(), orderID)
	return err
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func loadItems(ctx context.Context, q queryer, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	out := make(map[int64][]model.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(orderIDs)), ",")
	args := make([]interface{}, 0, len(orderIDs))
	for _, id := range orderIDs {
		args = append(args, id)
	}
	rows, err := q.QueryContext(ctx,
		"SELECT "+orderItemColumns+" FROM order_items WHERE order_id IN ("+placeholders+") ORDER BY id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductPrice, &it.Quantity); err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

func scanOrder(row *sql.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.BuyerID, (*string)(&o.Status), &o.TotalPrice, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.OrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// isLockWaitTimeout reports MySQL error 1205 (lock wait timeout exceeded).
func isLockWaitTimeout(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1205
}
