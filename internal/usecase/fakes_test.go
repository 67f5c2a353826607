package usecase

import (
	"context"
	"sync"
	"time"

	domain "github.com/lordfalah/wasshoes-sub000/internal/entity"
)

// In-memory ports for usecase tests. They are deliberately dumb: maps
// guarded by a mutex, no query planning.

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: map[string]*domain.Cart{}}
}

func (f *fakeCartRepo) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[id]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	cp := *c
	cp.Items = append([]domain.CartItem(nil), c.Items...)
	return &cp, nil
}

func (f *fakeCartRepo) GetOpenByUser(_ context.Context, userID, storeID string) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.carts {
		if c.UserID == userID && !c.Closed && (storeID == "" || c.StoreID == storeID) {
			cp := *c
			cp.Items = append([]domain.CartItem(nil), c.Items...)
			return &cp, nil
		}
	}
	return nil, domain.ErrCartNotFound
}

func (f *fakeCartRepo) Create(_ context.Context, c *domain.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	cp.Items = append([]domain.CartItem(nil), c.Items...)
	f.carts[c.ID] = &cp
	return nil
}

func (f *fakeCartRepo) SaveItems(_ context.Context, cartID string, items []domain.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	c.Items = append([]domain.CartItem(nil), items...)
	return nil
}

func (f *fakeCartRepo) Close(_ context.Context, cartID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[cartID]
	if !ok || c.Closed {
		return domain.ErrCartClosed
	}
	c.Closed = true
	return nil
}

func (f *fakeCartRepo) Delete(_ context.Context, cartID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, cartID)
	return nil
}

type fakePaketRepo struct {
	pakets map[string]domain.Paket
}

func newFakePaketRepo(pakets ...domain.Paket) *fakePaketRepo {
	f := &fakePaketRepo{pakets: map[string]domain.Paket{}}
	for _, p := range pakets {
		f.pakets[p.ID] = p
	}
	return f
}

func (f *fakePaketRepo) GetByID(_ context.Context, id string) (*domain.Paket, error) {
	p, ok := f.pakets[id]
	if !ok {
		return nil, domain.ErrPaketNotFound
	}
	return &p, nil
}

func (f *fakePaketRepo) GetByIDs(_ context.Context, ids []string) ([]domain.Paket, error) {
	var out []domain.Paket
	for _, id := range ids {
		if p, ok := f.pakets[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePaketRepo) ListByStore(_ context.Context, storeID string) ([]domain.Paket, error) {
	var out []domain.Paket
	for _, p := range f.pakets {
		if p.StoreID == storeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePaketRepo) Create(_ context.Context, p *domain.Paket) error {
	f.pakets[p.ID] = *p
	return nil
}

func (f *fakePaketRepo) Update(_ context.Context, p *domain.Paket) error {
	if _, ok := f.pakets[p.ID]; !ok {
		return domain.ErrPaketNotFound
	}
	f.pakets[p.ID] = *p
	return nil
}

func (f *fakePaketRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.pakets[id]; !ok {
		return domain.ErrPaketNotFound
	}
	delete(f.pakets, id)
	return nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*domain.Order{}}
}

func (f *fakeOrderRepo) Create(_ context.Context, o *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *o
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) GetPendingByUserStore(_ context.Context, userID, storeID string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.UserID == userID && o.StoreID == storeID && o.Status == domain.StatusPending {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (f *fakeOrderRepo) UpdateStatusIfChanged(_ context.Context, id string, to domain.Status) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return false, domain.ErrOrderNotFound
	}
	if o.Status == to {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (f *fakeOrderRepo) UpdateStatusIf(_ context.Context, id string, from, to domain.Status) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (f *fakeOrderRepo) UpdateLaundryStatus(_ context.Context, id string, to domain.LaundryStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.LaundryStatus = to
	return nil
}

func (f *fakeOrderRepo) ExpireStale(_ context.Context, olderThan time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var n int64
	for _, o := range f.orders {
		if o.Status == domain.StatusPending && o.CreatedAt.Before(cutoff) {
			o.Status = domain.StatusExpire
			n++
		}
	}
	return n, nil
}

func (f *fakeOrderRepo) ListUnpaidByUser(_ context.Context, userID string) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, o := range f.orders {
		if o.UserID == userID && o.Status == domain.StatusPending {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) ListByStore(_ context.Context, storeID string, filter OrderFilter) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, o := range f.orders {
		if o.StoreID != storeID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

type fakeIdem struct {
	mu     sync.Mutex
	locks  map[string]bool
	memory map[string]string
}

func newFakeIdem() *fakeIdem {
	return &fakeIdem{locks: map[string]bool{}, memory: map[string]string{}}
}

func (f *fakeIdem) TryLock(_ context.Context, scope, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := scope + ":" + key
	if f.locks[k] {
		return false, nil
	}
	f.locks[k] = true
	return true, nil
}

func (f *fakeIdem) Remember(_ context.Context, scope, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memory[scope+":"+key] = value
	return nil
}

func (f *fakeIdem) Recall(_ context.Context, scope, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.memory[scope+":"+key]
	return v, ok, nil
}

type fakeGateway struct {
	mu          sync.Mutex
	created     []GatewayTransaction
	cancelled   []string
	status      map[string]*GatewayStatus
	createErr   error
	statusErr   error
	cancelErr   error
	statusCalls int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{status: map[string]*GatewayStatus{}}
}

func (f *fakeGateway) CreateTransaction(_ context.Context, tx GatewayTransaction) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", "", f.createErr
	}
	f.created = append(f.created, tx)
	return "tok-" + tx.OrderID, "https://pay.example/" + tx.OrderID, nil
}

func (f *fakeGateway) TransactionStatus(_ context.Context, orderID string) (*GatewayStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if s, ok := f.status[orderID]; ok {
		return s, nil
	}
	return &GatewayStatus{OrderID: orderID, TransactionStatus: "pending"}, nil
}

func (f *fakeGateway) Cancel(_ context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, orderID)
	return nil
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []StatusChangedMsg
}

func (f *fakePublisher) PublishStatusChanged(_ context.Context, msg StatusChangedMsg) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return nil
}

type fakeCache struct {
	mu sync.Mutex
	m  map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{m: map[string]string{}} }

func (f *fakeCache) SetStatus(_ context.Context, orderID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[orderID] = status
	return nil
}

func (f *fakeCache) GetStatus(_ context.Context, orderID string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.m[orderID]
	return s, ok, nil
}

type fakeOutbox struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (f *fakeOutbox) InsertOrderCreated(_ context.Context, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return nil
}
