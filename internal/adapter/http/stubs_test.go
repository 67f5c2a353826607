package http

import (
	"context"
	"time"

	domain "github.com/lordfalah/wasshoes-sub000/internal/entity"
	"github.com/lordfalah/wasshoes-sub000/internal/usecase"
)

// Minimal in-memory ports for handler tests. Behavior is only as deep
// as the handlers need; usecase-level edge cases live in the usecase
// package tests.

type memOrders struct {
	orders map[string]*domain.Order
}

func newMemOrders(orders ...*domain.Order) *memOrders {
	m := &memOrders{orders: map[string]*domain.Order{}}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *memOrders) Create(_ context.Context, o *domain.Order) error {
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) GetPendingByUserStore(_ context.Context, userID, storeID string) (*domain.Order, error) {
	for _, o := range m.orders {
		if o.UserID == userID && o.StoreID == storeID && o.Status == domain.StatusPending {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (m *memOrders) UpdateStatusIfChanged(_ context.Context, id string, to domain.Status) (bool, error) {
	o, ok := m.orders[id]
	if !ok {
		return false, domain.ErrOrderNotFound
	}
	if o.Status == to {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (m *memOrders) UpdateStatusIf(_ context.Context, id string, from, to domain.Status) (bool, error) {
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (m *memOrders) UpdateLaundryStatus(_ context.Context, id string, to domain.LaundryStatus) error {
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.LaundryStatus = to
	return nil
}

func (m *memOrders) ExpireStale(_ context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	var n int64
	for _, o := range m.orders {
		if o.Status == domain.StatusPending && o.CreatedAt.Before(cutoff) {
			o.Status = domain.StatusExpire
			n++
		}
	}
	return n, nil
}

func (m *memOrders) ListUnpaidByUser(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID && o.Status == domain.StatusPending {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOrders) ListByStore(_ context.Context, storeID string, f usecase.OrderFilter) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.orders {
		if o.StoreID != storeID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

type memCarts struct {
	carts map[string]*domain.Cart
}

func newMemCarts() *memCarts { return &memCarts{carts: map[string]*domain.Cart{}} }

func (m *memCarts) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	c, ok := m.carts[id]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	return c, nil
}

func (m *memCarts) GetOpenByUser(_ context.Context, userID, storeID string) (*domain.Cart, error) {
	for _, c := range m.carts {
		if c.UserID == userID && !c.Closed && (storeID == "" || c.StoreID == storeID) {
			return c, nil
		}
	}
	return nil, domain.ErrCartNotFound
}

func (m *memCarts) Create(_ context.Context, c *domain.Cart) error {
	m.carts[c.ID] = c
	return nil
}

func (m *memCarts) SaveItems(_ context.Context, cartID string, items []domain.CartItem) error {
	c, ok := m.carts[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	c.Items = items
	return nil
}

func (m *memCarts) Close(_ context.Context, cartID string) error {
	c, ok := m.carts[cartID]
	if !ok || c.Closed {
		return domain.ErrCartClosed
	}
	c.Closed = true
	return nil
}

func (m *memCarts) Delete(_ context.Context, cartID string) error {
	delete(m.carts, cartID)
	return nil
}

type memPakets struct {
	pakets map[string]domain.Paket
}

func newMemPakets(pakets ...domain.Paket) *memPakets {
	m := &memPakets{pakets: map[string]domain.Paket{}}
	for _, p := range pakets {
		m.pakets[p.ID] = p
	}
	return m
}

func (m *memPakets) GetByID(_ context.Context, id string) (*domain.Paket, error) {
	p, ok := m.pakets[id]
	if !ok {
		return nil, domain.ErrPaketNotFound
	}
	return &p, nil
}

func (m *memPakets) GetByIDs(_ context.Context, ids []string) ([]domain.Paket, error) {
	var out []domain.Paket
	for _, id := range ids {
		if p, ok := m.pakets[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPakets) ListByStore(_ context.Context, storeID string) ([]domain.Paket, error) {
	var out []domain.Paket
	for _, p := range m.pakets {
		if p.StoreID == storeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPakets) Create(_ context.Context, p *domain.Paket) error {
	m.pakets[p.ID] = *p
	return nil
}

func (m *memPakets) Update(_ context.Context, p *domain.Paket) error {
	if _, ok := m.pakets[p.ID]; !ok {
		return domain.ErrPaketNotFound
	}
	m.pakets[p.ID] = *p
	return nil
}

func (m *memPakets) Delete(_ context.Context, id string) error {
	if _, ok := m.pakets[id]; !ok {
		return domain.ErrPaketNotFound
	}
	delete(m.pakets, id)
	return nil
}

type memGateway struct {
	created  []usecase.GatewayTransaction
	statuses map[string]*usecase.GatewayStatus
}

func newMemGateway() *memGateway {
	return &memGateway{statuses: map[string]*usecase.GatewayStatus{}}
}

func (m *memGateway) CreateTransaction(_ context.Context, tx usecase.GatewayTransaction) (string, string, error) {
	m.created = append(m.created, tx)
	return "tok-" + tx.OrderID, "https://pay.example/" + tx.OrderID, nil
}

func (m *memGateway) TransactionStatus(_ context.Context, orderID string) (*usecase.GatewayStatus, error) {
	if s, ok := m.statuses[orderID]; ok {
		return s, nil
	}
	return &usecase.GatewayStatus{OrderID: orderID, TransactionStatus: "pending"}, nil
}

func (m *memGateway) Cancel(_ context.Context, orderID string) error { return nil }

type memIdem struct {
	locks  map[string]bool
	memory map[string]string
}

func newMemIdem() *memIdem {
	return &memIdem{locks: map[string]bool{}, memory: map[string]string{}}
}

func (m *memIdem) TryLock(_ context.Context, scope, key string) (bool, error) {
	k := scope + ":" + key
	if m.locks[k] {
		return false, nil
	}
	m.locks[k] = true
	return true, nil
}

func (m *memIdem) Remember(_ context.Context, scope, key, value string) error {
	m.memory[scope+":"+key] = value
	return nil
}

func (m *memIdem) Recall(_ context.Context, scope, key string) (string, bool, error) {
	v, ok := m.memory[scope+":"+key]
	return v, ok, nil
}

type memOutbox struct{ payloads [][]byte }

func (m *memOutbox) InsertOrderCreated(_ context.Context, payload []byte) error {
	m.payloads = append(m.payloads, payload)
	return nil
}
