package security

// In-memory account registry for token issuance (replace with the
// user store once the auth service owns it).
type Account struct {
	ID      string
	Secret  string
	Role    string // "customer" | "admin"
	StoreID string // admin store scope; empty for customers
	Name    string
	Email   string
	Enabled bool
}

var Accounts = map[string]Account{
	"demo-customer": {
		ID: "demo-customer", Secret: "demo-customer-secret",
		Role: "customer", Name: "Demo Customer", Email: "customer@example.com",
		Enabled: true,
	},
	"demo-admin": {
		ID: "demo-admin", Secret: "demo-admin-secret",
		Role: "admin", StoreID: "store-001", Name: "Demo Admin", Email: "admin@example.com",
		Enabled: true,
	},
}
