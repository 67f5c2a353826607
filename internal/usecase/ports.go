package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/lordfalah/wasshoes-sub000/internal/entity"
)

// Actor is the resolved caller of a request: identity, role, store
// scope, and the cart cookie value (if any). Handlers build it once
// per request; business logic never reads ambient cookie state.
type Actor struct {
	UserID   string
	Role     string // "customer" | "admin"
	StoreID  string // admin store scope; empty for customers
	CartID   string // cart cookie value, may be empty or stale
	Customer domain.CustomerInfo
}

func (a Actor) Authenticated() bool { return a.UserID != "" }
func (a Actor) Admin() bool         { return a.Role == RoleAdmin }

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type CartRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetOpenByUser(ctx context.Context, userID, storeID string) (*domain.Cart, error)
	Create(ctx context.Context, c *domain.Cart) error
	SaveItems(ctx context.Context, cartID string, items []domain.CartItem) error
	Close(ctx context.Context, cartID string) error
	Delete(ctx context.Context, cartID string) error
}

type PaketRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Paket, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Paket, error)
	ListByStore(ctx context.Context, storeID string) ([]domain.Paket, error)
	Create(ctx context.Context, p *domain.Paket) error
	Update(ctx context.Context, p *domain.Paket) error
	Delete(ctx context.Context, id string) error
}

// OrderFilter narrows store dashboards. Zero values mean "no filter".
type OrderFilter struct {
	Status   domain.Status
	From, To time.Time
	UserID   string
	Limit    int
	Offset   int
}

type OrderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetPendingByUserStore(ctx context.Context, userID, storeID string) (*domain.Order, error)
	// UpdateStatusIfChanged writes only when the stored status differs;
	// returns whether a row changed.
	UpdateStatusIfChanged(ctx context.Context, id string, to domain.Status) (bool, error)
	// UpdateStatusIf is a guarded compare-and-set transition.
	UpdateStatusIf(ctx context.Context, id string, from, to domain.Status) (bool, error)
	UpdateLaundryStatus(ctx context.Context, id string, to domain.LaundryStatus) error
	// ExpireStale flips PENDING orders older than the cutoff to EXPIRE.
	ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error)
	ListUnpaidByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListByStore(ctx context.Context, storeID string, f OrderFilter) ([]domain.Order, error)
}

type OutboxRepo interface {
	InsertOrderCreated(ctx context.Context, payload []byte) error
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

type StatusCache interface {
	SetStatus(ctx context.Context, orderID string, status string) error
	GetStatus(ctx context.Context, orderID string) (string, bool, error)
}

// GatewayItem is one line as the gateway sees it. Overridden lines are
// collapsed to a single synthetic unit at the override price so the
// gateway-side gross matches the agreed total.
type GatewayItem struct {
	ID       string
	Name     string
	Price    int64
	Quantity int
}

type GatewayTransaction struct {
	OrderID     string
	GrossAmount int64
	Items       []GatewayItem
	Customer    domain.CustomerInfo
}

// GatewayStatus is the gateway's authoritative view of a transaction.
type GatewayStatus struct {
	OrderID           string          `json:"order_id"`
	TransactionID     string          `json:"transaction_id"`
	TransactionStatus string          `json:"transaction_status"`
	StatusCode        string          `json:"status_code"`
	GrossAmount       decimal.Decimal `json:"gross_amount"`
	PaymentType       string          `json:"payment_type"`
	FraudStatus       string          `json:"fraud_status"`
	TransactionTime   string          `json:"transaction_time"`
}

type PaymentGateway interface {
	CreateTransaction(ctx context.Context, tx GatewayTransaction) (token, redirectURL string, err error)
	TransactionStatus(ctx context.Context, orderID string) (*GatewayStatus, error)
	Cancel(ctx context.Context, orderID string) error
}

type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, msg StatusChangedMsg) error
}
