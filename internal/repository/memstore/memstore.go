// Package memstore is an in-memory implementation of the service store
// contracts. It backs service-level tests, including the concurrency
// scenarios: a transaction holds the store mutex for its whole lifetime,
// which stands in for the exclusive product row lock of the MySQL store.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/shop-backend/internal/errs"
	"github.com/iliyamo/shop-backend/internal/model"
	"github.com/iliyamo/shop-backend/internal/service"
)

// Store keeps members, products and orders in maps guarded by one mutex.
// Members(), Products() and Orders() expose the per-aggregate views that
// satisfy the service store interfaces.
type Store struct {
	mu sync.Mutex

	members       map[int64]*model.Member
	memberByEmail map[string]int64
	nextMemberID  int64

	products      map[int64]*model.Product
	nextProductID int64

	orders      map[int64]*model.Order
	nextOrderID int64
	nextItemID  int64
}

func New() *Store {
	return &Store{
		members:       make(map[int64]*model.Member),
		memberByEmail: make(map[string]int64),
		products:      make(map[int64]*model.Product),
		orders:        make(map[int64]*model.Order),
	}
}

// Members returns the service.MemberStore view.
func (s *Store) Members() *MemberStore { return &MemberStore{s} }

// Products returns the service.ProductStore view.
func (s *Store) Products() *ProductStore { return &ProductStore{s} }

// Orders returns the service.OrderStore view.
func (s *Store) Orders() *OrderStore { return &OrderStore{s} }

// OrderCount reports the number of committed orders; used by tests.
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// ----- members -----

type MemberStore struct{ s *Store }

func (m *MemberStore) Create(_ context.Context, mem *model.Member) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.memberByEmail[mem.Email]; ok {
		return errs.DuplicateEmail
	}
	m.s.nextMemberID++
	mem.ID = m.s.nextMemberID
	now := time.Now()
	mem.CreatedAt = now
	mem.UpdatedAt = now
	m.s.members[mem.ID] = cloneMember(mem)
	m.s.memberByEmail[mem.Email] = mem.ID
	return nil
}

func (m *MemberStore) GetByEmail(_ context.Context, email string) (*model.Member, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	id, ok := m.s.memberByEmail[email]
	if !ok {
		return nil, errs.MemberNotFound
	}
	return cloneMember(m.s.members[id]), nil
}

func (m *MemberStore) GetByID(_ context.Context, id int64) (*model.Member, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	mem, ok := m.s.members[id]
	if !ok {
		return nil, errs.MemberNotFound
	}
	return cloneMember(mem), nil
}

func (m *MemberStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_, ok := m.s.memberByEmail[email]
	return ok, nil
}

func (m *MemberStore) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	mem, ok := m.s.members[id]
	if !ok {
		return errs.MemberNotFound
	}
	t := at
	mem.LastLoginAt = &t
	mem.UpdatedAt = time.Now()
	return nil
}

// SetStatus flips a member's lifecycle status; used by tests to exercise
// the inactive-member paths.
func (m *MemberStore) SetStatus(id int64, status model.MemberStatus) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if mem, ok := m.s.members[id]; ok {
		mem.Status = status
	}
}

// ----- products -----

type ProductStore struct{ s *Store }

func (p *ProductStore) Create(_ context.Context, prod *model.Product) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.nextProductID++
	prod.ID = p.s.nextProductID
	now := time.Now()
	prod.CreatedAt = now
	prod.UpdatedAt = now
	p.s.products[prod.ID] = cloneProduct(prod)
	return nil
}

func (p *ProductStore) GetByID(_ context.Context, id int64) (*model.Product, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	prod, ok := p.s.products[id]
	if !ok {
		return nil, errs.ProductNotFound
	}
	return cloneProduct(prod), nil
}

func (p *ProductStore) ListByStatuses(_ context.Context, statuses []model.ProductStatus, page model.PageRequest) ([]model.Product, int64, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	allowed := make(map[model.ProductStatus]bool, len(statuses))
	for _, st := range statuses {
		allowed[st] = true
	}
	matched := []*model.Product{}
	for _, prod := range p.s.products {
		if allowed[prod.Status] {
			matched = append(matched, prod)
		}
	}
	return pageProducts(matched, page)
}

func (p *ProductStore) ListBySeller(_ context.Context, sellerID int64, page model.PageRequest) ([]model.Product, int64, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	matched := []*model.Product{}
	for _, prod := range p.s.products {
		if prod.SellerID == sellerID {
			matched = append(matched, prod)
		}
	}
	return pageProducts(matched, page)
}

func (p *ProductStore) Update(_ context.Context, prod *model.Product) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.products[prod.ID]; !ok {
		return errs.ProductNotFound
	}
	clone := cloneProduct(prod)
	clone.UpdatedAt = time.Now()
	p.s.products[prod.ID] = clone
	return nil
}

func (p *ProductStore) Delete(_ context.Context, id int64) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.products[id]; !ok {
		return errs.ProductNotFound
	}
	delete(p.s.products, id)
	return nil
}

// ----- orders -----

type OrderStore struct{ s *Store }

// WithinTx serializes transactions with the store mutex and stages writes
// so a failing fn leaves the store untouched, mirroring a rollback.
func (o *OrderStore) WithinTx(_ context.Context, fn func(tx service.OrderTx) error) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	tx := &memTx{
		store:          o.s,
		stagedProducts: make(map[int64]*model.Product),
		stagedStatus:   make(map[int64]model.OrderStatus),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (o *OrderStore) GetByIDForBuyer(_ context.Context, orderID, buyerID int64) (*model.Order, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	ord, ok := o.s.orders[orderID]
	if !ok || ord.BuyerID != buyerID {
		return nil, errs.OrderNotFound
	}
	return cloneOrder(ord), nil
}

func (o *OrderStore) ListByBuyer(_ context.Context, buyerID int64, page model.PageRequest) ([]model.Order, int64, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	matched := []*model.Order{}
	for _, ord := range o.s.orders {
		if ord.BuyerID == buyerID {
			matched = append(matched, ord)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	start, end := pageBounds(len(matched), page)
	out := make([]model.Order, 0, end-start)
	for _, ord := range matched[start:end] {
		out = append(out, *cloneOrder(ord))
	}
	return out, total, nil
}

// memTx stages mutations until commit. The store mutex is already held.
type memTx struct {
	store          *Store
	stagedProducts map[int64]*model.Product
	stagedStatus   map[int64]model.OrderStatus
	newOrders      []*model.Order
}

func (t *memTx) LockProduct(_ context.Context, productID int64) (*model.Product, error) {
	if p, ok := t.stagedProducts[productID]; ok {
		return cloneProduct(p), nil
	}
	p, ok := t.store.products[productID]
	if !ok {
		return nil, errs.ProductNotFound
	}
	return cloneProduct(p), nil
}

func (t *memTx) SaveProduct(_ context.Context, p *model.Product) error {
	t.stagedProducts[p.ID] = cloneProduct(p)
	return nil
}

func (t *memTx) InsertOrder(_ context.Context, o *model.Order) error {
	t.store.nextOrderID++
	o.ID = t.store.nextOrderID
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	for i := range o.Items {
		t.store.nextItemID++
		o.Items[i].ID = t.store.nextItemID
		o.Items[i].OrderID = o.ID
	}
	t.newOrders = append(t.newOrders, cloneOrder(o))
	return nil
}

func (t *memTx) GetOrderWithItems(_ context.Context, orderID int64) (*model.Order, error) {
	o, ok := t.store.orders[orderID]
	if !ok {
		return nil, errs.OrderNotFound
	}
	clone := cloneOrder(o)
	if st, ok := t.stagedStatus[orderID]; ok {
		clone.Status = st
	}
	return clone, nil
}

func (t *memTx) UpdateOrderStatus(_ context.Context, orderID int64, status model.OrderStatus) error {
	if _, ok := t.store.orders[orderID]; !ok {
		return errs.OrderNotFound
	}
	t.stagedStatus[orderID] = status
	return nil
}

func (t *memTx) commit() {
	for id, p := range t.stagedProducts {
		p.UpdatedAt = time.Now()
		t.store.products[id] = p
	}
	for id, st := range t.stagedStatus {
		t.store.orders[id].Status = st
		t.store.orders[id].UpdatedAt = time.Now()
	}
	for _, o := range t.newOrders {
		t.store.orders[o.ID] = o
	}
}

// ----- helpers -----

func pageBounds(n int, page model.PageRequest) (int, int) {
	start := page.Offset()
	if start > n {
		start = n
	}
	end := start + page.Size
	if end > n {
		end = n
	}
	return start, end
}

func pageProducts(matched []*model.Product, page model.PageRequest) ([]model.Product, int64, error) {
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	start, end := pageBounds(len(matched), page)
	out := make([]model.Product, 0, end-start)
	for _, p := range matched[start:end] {
		out = append(out, *cloneProduct(p))
	}
	return out, total, nil
}

func cloneMember(m *model.Member) *model.Member {
	clone := *m
	if m.LastLoginAt != nil {
		t := *m.LastLoginAt
		clone.LastLoginAt = &t
	}
	return &clone
}

func cloneProduct(p *model.Product) *model.Product {
	clone := *p
	return &clone
}

func cloneOrder(o *model.Order) *model.Order {
	clone := *o
	clone.Items = make([]model.OrderItem, len(o.Items))
	copy(clone.Items, o.Items)
	return &clone
}
