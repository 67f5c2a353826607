package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	domain "github.com/lordfalah/wasshoes-sub000/internal/entity"
	"github.com/lordfalah/wasshoes-sub000/internal/logging"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrPaketHidden     = errors.New("paket is not visible")
)

// CartService resolves and mutates the caller's single open cart.
// Resolution order is always cart cookie first, then the user's open
// cart; a stale or closed cookie cart is ignored, not an error.
type CartService struct {
	carts  CartRepo
	pakets PaketRepo
	log    *slog.Logger
}

func NewCartService(carts CartRepo, pakets PaketRepo) *CartService {
	return &CartService{carts: carts, pakets: pakets, log: logging.New("cart")}
}

// resolveOpen finds the actor's open cart, or nil when there is none.
func (s *CartService) resolveOpen(ctx context.Context, actor Actor, storeID string) (*domain.Cart, error) {
	if actor.CartID != "" {
		c, err := s.carts.GetByID(ctx, actor.CartID)
		if err != nil && !errors.Is(err, domain.ErrCartNotFound) {
			return nil, err
		}
		if c != nil && !c.Closed && (storeID == "" || c.StoreID == storeID) {
			return c, nil
		}
	}
	if actor.UserID == "" {
		return nil, nil
	}
	c, err := s.carts.GetOpenByUser(ctx, actor.UserID, storeID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// GetCart returns the active cart, or an empty one when the actor has
// no session or no cart. Lookup failures are logged and swallowed so
// the storefront always renders.
func (s *CartService) GetCart(ctx context.Context, actor Actor, storeID string) *domain.Cart {
	c, err := s.resolveOpen(ctx, actor, storeID)
	if err != nil {
		s.log.Error("cart lookup failed", "user_id", actor.UserID, "error", err)
		return &domain.Cart{StoreID: storeID}
	}
	if c == nil {
		return &domain.Cart{StoreID: storeID}
	}
	return c
}

// AddToCart requires an authenticated actor and a visible paket. The
// target cart is the cookie cart, else the user's open cart, else a
// freshly created one. Duplicate paket ids merge by quantity.
//
// Callers compare the returned cart id with actor.CartID to decide
// whether a new cart cookie must be issued.
func (s *CartService) AddToCart(ctx context.Context, actor Actor, item domain.CartItem) (*domain.Cart, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if item.Quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}

	p, err := s.pakets.GetByID(ctx, item.PaketID)
	if err != nil {
		if errors.Is(err, domain.ErrPaketNotFound) {
			return nil, domain.ErrPaketNotFound
		}
		return nil, err
	}
	if !p.Visible {
		return nil, ErrPaketHidden
	}

	cart, err := s.resolveOpen(ctx, actor, p.StoreID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &domain.Cart{
			ID:      uuid.NewString(),
			UserID:  actor.UserID,
			StoreID: p.StoreID,
		}
		cart.Merge(item)
		if err := s.carts.Create(ctx, cart); err != nil {
			return nil, err
		}
		return cart, nil
	}

	cart.Merge(item)
	if err := s.carts.SaveItems(ctx, cart.ID, cart.Items); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItem changes quantity or, for admins, the per-line total
// override. Quantity zero removes the line for non-admin callers;
// an admin setting a zero override keeps the line (zero is a valid
// agreed price, only a nil override means "none").
func (s *CartService) UpdateItem(ctx context.Context, actor Actor, item domain.CartItem) (*domain.Cart, error) {
	cart, err := s.resolveByUserThenCookie(ctx, actor)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, domain.ErrCartNotFound
	}
	if cart.Closed {
		return nil, domain.ErrCartClosed
	}

	if item.Quantity == 0 && !actor.Admin() {
		cart.Remove(item.PaketID)
		if err := s.carts.SaveItems(ctx, cart.ID, cart.Items); err != nil {
			return nil, err
		}
		return cart, nil
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].PaketID != item.PaketID {
			continue
		}
		found = true
		if item.Quantity > 0 {
			cart.Items[i].Quantity = item.Quantity
		}
		if actor.Admin() && item.PriceOrder != nil {
			cart.Items[i].PriceOrder = item.PriceOrder
		}
	}
	if !found {
		return nil, domain.ErrPaketNotFound
	}
	if err := s.carts.SaveItems(ctx, cart.ID, cart.Items); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItems filters the given paket ids out of the active cart.
func (s *CartService) RemoveItems(ctx context.Context, actor Actor, paketIDs ...string) (*domain.Cart, error) {
	cart, err := s.resolveByUserThenCookie(ctx, actor)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, domain.ErrCartNotFound
	}
	if cart.Closed {
		return nil, domain.ErrCartClosed
	}
	cart.Remove(paketIDs...)
	if err := s.carts.SaveItems(ctx, cart.ID, cart.Items); err != nil {
		return nil, err
	}
	return cart, nil
}

// DeleteCart hard-deletes the open cart. The returned flag tells the
// handler whether the cart was reached through the cookie, i.e.
// whether the cookie should be cleared.
func (s *CartService) DeleteCart(ctx context.Context, actor Actor) (byCookie bool, err error) {
	cart, err := s.resolveByUserThenCookie(ctx, actor)
	if err != nil {
		return false, err
	}
	if cart == nil {
		return false, domain.ErrCartNotFound
	}
	if err := s.carts.Delete(ctx, cart.ID); err != nil {
		return false, err
	}
	return cart.ID == actor.CartID, nil
}

// resolveByUserThenCookie prefers the user-scoped lookup; mutating
// endpoints trust the account over a possibly shared cookie.
func (s *CartService) resolveByUserThenCookie(ctx context.Context, actor Actor) (*domain.Cart, error) {
	if actor.UserID != "" {
		c, err := s.carts.GetOpenByUser(ctx, actor.UserID, "")
		if err != nil && !errors.Is(err, domain.ErrCartNotFound) {
			return nil, err
		}
		if c != nil {
			return c, nil
		}
	}
	if actor.CartID == "" {
		return nil, nil
	}
	c, err := s.carts.GetByID(ctx, actor.CartID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}
