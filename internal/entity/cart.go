package domain

import (
	"errors"
	"time"
)

var (
	ErrCartNotFound  = errors.New("cart not found")
	ErrCartClosed    = errors.New("cart already closed")
	ErrPaketNotFound = errors.New("paket not found")
)

// CartItem references a paket by id. PriceOrder, when non-nil, is an
// admin-set TOTAL for the line. Zero is a valid override; only nil
// means "no override".
type CartItem struct {
	PaketID    string `json:"paketId"`
	Quantity   int    `json:"quantity"`
	PriceOrder *int64 `json:"priceOrder,omitempty"`
}

// Cart holds a customer's pending selection for one store. UserID is
// empty for anonymous carts, which are reachable only through the cart
// cookie. A closed cart is frozen forever; checkout closes it exactly
// once.
type Cart struct {
	ID        string
	UserID    string
	StoreID   string
	Closed    bool
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Merge adds an item, folding duplicates by paket id.
func (c *Cart) Merge(item CartItem) {
	for i := range c.Items {
		if c.Items[i].PaketID == item.PaketID {
			c.Items[i].Quantity += item.Quantity
			if item.PriceOrder != nil {
				c.Items[i].PriceOrder = item.PriceOrder
			}
			return
		}
	}
	c.Items = append(c.Items, item)
}

// Remove drops every line whose paket id is in ids.
func (c *Cart) Remove(ids ...string) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := c.Items[:0]
	for _, it := range c.Items {
		if !drop[it.PaketID] {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}
