package usecase

// OrderCreatedMsg is written to the outbox at checkout and drained by
// the notifier.
type OrderCreatedMsg struct {
	OrderID    string `json:"orderId"`
	UserID     string `json:"userId"`
	StoreID    string `json:"storeId"`
	TotalPrice int64  `json:"totalPrice"`
	Method     string `json:"method"`
}

// StatusChangedMsg is published on RabbitMQ whenever an order's
// payment status moves.
type StatusChangedMsg struct {
	OrderID    string `json:"orderId"`
	StoreID    string `json:"storeId"`
	UserID     string `json:"userId"`
	FromStatus string `json:"fromStatus,omitempty"`
	Status     string `json:"status"`
}

// LaundryStatusMsg arrives on Kafka from store processing stations.
type LaundryStatusMsg struct {
	OrderID   string `json:"orderId"`
	StoreID   string `json:"storeId"`
	Status    string `json:"status"` // e.g. "IN_PROGRESS"
	StationID string `json:"stationId,omitempty"`
}
