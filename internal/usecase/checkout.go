package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	domain "github.com/lordfalah/wasshoes-sub000/internal/entity"
	"github.com/lordfalah/wasshoes-sub000/internal/logging"
	"github.com/lordfalah/wasshoes-sub000/internal/pricing"
)

var (
	ErrDuplicate     = errors.New("checkout already in flight")
	ErrPaketMismatch = errors.New("some packages not found")
	ErrEmptyCheckout = errors.New("no items to check out")
)

// CheckoutInput is the role-dispatched checkout request. Customers may
// only name items and quantities; the admin-only fields (overrides,
// shoe photos, explicit payment method) are zeroed by the handler for
// customer calls.
type CheckoutInput struct {
	Actor      Actor
	StoreID    string
	Items      []domain.CartItem
	Customer   domain.CustomerInfo
	Method     domain.PaymentMethod
	ShoeImages []string
}

// CheckoutResult carries the order plus whether it pre-existed (a
// repeated submit returned the live PENDING order instead of creating
// a duplicate).
type CheckoutResult struct {
	Order    *domain.Order
	Existing bool
}

// Checkout turns the active cart into a PENDING order backed by a
// gateway transaction, then closes the cart.
type Checkout struct {
	orders OrderRepo
	carts  CartRepo
	pakets PaketRepo
	gw     PaymentGateway
	idem   IdempotencyStore
	outbox OutboxRepo
	log    *slog.Logger
}

func NewCheckout(orders OrderRepo, carts CartRepo, pakets PaketRepo, gw PaymentGateway, idem IdempotencyStore, outbox OutboxRepo) *Checkout {
	return &Checkout{
		orders: orders,
		carts:  carts,
		pakets: pakets,
		gw:     gw,
		idem:   idem,
		outbox: outbox,
		log:    logging.New("checkout"),
	}
}

func (uc *Checkout) Execute(ctx context.Context, in CheckoutInput) (CheckoutResult, error) {
	if !in.Actor.Authenticated() {
		return CheckoutResult{}, ErrUnauthenticated
	}
	if len(in.Items) == 0 {
		return CheckoutResult{}, ErrEmptyCheckout
	}
	if in.Method == "" {
		in.Method = domain.PaymentAuto
	}

	// Fast path: a previous submit already produced an order.
	if id, ok, _ := uc.idem.Recall(ctx, in.Actor.UserID, in.StoreID); ok {
		if o, err := uc.orders.GetByID(ctx, id); err == nil && o.Status == domain.StatusPending {
			return CheckoutResult{Order: o, Existing: true}, nil
		}
	}

	// One live PENDING order per (user, store).
	if o, err := uc.orders.GetPendingByUserStore(ctx, in.Actor.UserID, in.StoreID); err == nil && o != nil {
		return CheckoutResult{Order: o, Existing: true}, nil
	} else if err != nil && !errors.Is(err, domain.ErrOrderNotFound) {
		return CheckoutResult{}, err
	}

	// Lock out the near-simultaneous double submit that would pass the
	// existence check twice.
	ok, err := uc.idem.TryLock(ctx, in.Actor.UserID, in.StoreID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if !ok {
		return CheckoutResult{}, ErrDuplicate
	}

	pakets, lines, err := uc.priceLines(ctx, in.Items)
	if err != nil {
		return CheckoutResult{}, err
	}
	summary := pricing.Summarize(lines)

	order := &domain.Order{
		ID:            uuid.NewString(),
		UserID:        in.Actor.UserID,
		StoreID:       in.StoreID,
		Status:        domain.StatusPending,
		LaundryStatus: domain.LaundryOnHold,
		PaymentMethod: in.Method,
		TotalPrice:    summary.FinalPrice,
		Customer:      in.Customer,
		ShoeImages:    in.ShoeImages,
	}
	for _, it := range in.Items {
		order.Items = append(order.Items, domain.PaketOrder{
			OrderID:    order.ID,
			PaketID:    it.PaketID,
			Quantity:   it.Quantity,
			PriceOrder: it.PriceOrder,
		})
	}

	if in.Method == domain.PaymentAuto {
		token, redirect, err := uc.gw.CreateTransaction(ctx, GatewayTransaction{
			OrderID:     order.ID,
			GrossAmount: summary.FinalPrice,
			Items:       gatewayItems(in.Items, pakets),
			Customer:    in.Customer,
		})
		if err != nil {
			return CheckoutResult{}, err
		}
		order.PaymentToken = token
		order.RedirectURL = redirect
	}

	// Order + line items land in one transaction.
	if err := uc.orders.Create(ctx, order); err != nil {
		return CheckoutResult{}, err
	}

	uc.closeCart(ctx, in.Actor, in.StoreID)

	payload, _ := json.Marshal(OrderCreatedMsg{
		OrderID:    order.ID,
		UserID:     order.UserID,
		StoreID:    order.StoreID,
		TotalPrice: order.TotalPrice,
		Method:     string(order.PaymentMethod),
	})
	if err := uc.outbox.InsertOrderCreated(ctx, payload); err != nil {
		uc.log.Error("outbox insert failed", "order_id", order.ID, "error", err)
	}

	_ = uc.idem.Remember(ctx, in.Actor.UserID, in.StoreID, order.ID)
	return CheckoutResult{Order: order}, nil
}

// priceLines validates every requested paket and builds pricing lines.
// Fewer pakets found than requested is a hard error.
func (uc *Checkout) priceLines(ctx context.Context, items []domain.CartItem) (map[string]domain.Paket, []pricing.Line, error) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.PaketID)
	}
	found, err := uc.pakets.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	if len(found) != len(ids) {
		return nil, nil, ErrPaketMismatch
	}
	byID := make(map[string]domain.Paket, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{
			Price:      byID[it.PaketID].Price,
			Quantity:   it.Quantity,
			PriceOrder: it.PriceOrder,
		})
	}
	return byID, lines, nil
}

// gatewayItems renders lines for the gateway. Overridden lines become
// one synthetic unit at the override price so the gateway gross always
// equals the sum of its items.
func gatewayItems(items []domain.CartItem, pakets map[string]domain.Paket) []GatewayItem {
	out := make([]GatewayItem, 0, len(items))
	for _, it := range items {
		p := pakets[it.PaketID]
		if it.PriceOrder != nil {
			out = append(out, GatewayItem{ID: p.ID, Name: p.Name, Price: *it.PriceOrder, Quantity: 1})
			continue
		}
		out = append(out, GatewayItem{ID: p.ID, Name: p.Name, Price: p.Price, Quantity: it.Quantity})
	}
	return out
}

// closeCart freezes the originating cart. Failure here never fails the
// checkout; the order exists, the stale cart is just noise.
func (uc *Checkout) closeCart(ctx context.Context, actor Actor, storeID string) {
	cart := uc.resolveCart(ctx, actor, storeID)
	if cart == nil {
		return
	}
	if err := uc.carts.Close(ctx, cart.ID); err != nil {
		uc.log.Error("cart close failed", "cart_id", cart.ID, "error", err)
	}
}

func (uc *Checkout) resolveCart(ctx context.Context, actor Actor, storeID string) *domain.Cart {
	if actor.CartID != "" {
		if c, err := uc.carts.GetByID(ctx, actor.CartID); err == nil && !c.Closed {
			return c
		}
	}
	if c, err := uc.carts.GetOpenByUser(ctx, actor.UserID, storeID); err == nil {
		return c
	}
	return nil
}
