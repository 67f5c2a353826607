package domain

import "time"

// Paket is a sellable laundry service offering. Price is the base
// unit price in rupiah; carts and orders reference pakets, never own
// them.
type Paket struct {
	ID          string
	StoreID     string
	CategoryID  string
	Name        string
	Price       int64
	Description string
	Image       string
	Visible     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store is a tenant. Admin users are scoped to a store through their
// token claims.
type Store struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
}
