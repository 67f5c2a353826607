package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	domain "github.com/lordfalah/wasshoes-sub000/internal/entity"
	"github.com/lordfalah/wasshoes-sub000/internal/logging"
)

var ErrInvalidSignature = errors.New("invalid signature")

// NotifPayload is the gateway webhook body. GrossAmount arrives as a
// decimal string ("100000.00") and must be hashed verbatim, so it is
// kept as received alongside the parsed value.
type NotifPayload struct {
	OrderID           string          `json:"order_id"`
	StatusCode        string          `json:"status_code"`
	GrossAmount       string          `json:"gross_amount"`
	TransactionStatus string          `json:"transaction_status"`
	FraudStatus       string          `json:"fraud_status"`
	PaymentType       string          `json:"payment_type"`
	TransactionID     string          `json:"transaction_id"`
	TransactionTime   string          `json:"transaction_time"`
	SignatureKey      string          `json:"signature_key"`
}

// Amount parses the gross amount; invalid input yields zero.
func (p NotifPayload) Amount() decimal.Decimal {
	d, err := decimal.NewFromString(p.GrossAmount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Notification ingests asynchronous gateway status callbacks. It is
// the only externally triggered state transition in the system, so the
// trust boundary lives here: signature first, then a re-query of the
// gateway rather than trusting the webhook body.
type Notification struct {
	orders    OrderRepo
	gw        PaymentGateway
	pub       EventPublisher
	cache     StatusCache
	serverKey string
	log       *slog.Logger
}

func NewNotification(orders OrderRepo, gw PaymentGateway, pub EventPublisher, cache StatusCache, serverKey string) *Notification {
	return &Notification{
		orders:    orders,
		gw:        gw,
		pub:       pub,
		cache:     cache,
		serverKey: serverKey,
		log:       logging.New("notification"),
	}
}

// Signature recomputes the expected signature_key for a payload:
// hex SHA-512 of order_id + status_code + gross_amount + serverKey.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// Handle verifies, re-queries, maps, and persists. It returns the
// authoritative gateway status so the handler can echo it back.
func (n *Notification) Handle(ctx context.Context, p NotifPayload) (*GatewayStatus, error) {
	want := Signature(p.OrderID, p.StatusCode, p.GrossAmount, n.serverKey)
	if !hmac.Equal([]byte(want), []byte(p.SignatureKey)) {
		n.log.Warn("webhook signature mismatch", "order_id", p.OrderID)
		return nil, ErrInvalidSignature
	}

	// The webhook body may be stale or replayed; ask the gateway.
	gs, err := n.gw.TransactionStatus(ctx, p.OrderID)
	if err != nil {
		return nil, err
	}

	order, err := n.orders.GetByID(ctx, p.OrderID)
	if err != nil {
		return nil, err
	}

	newStatus := domain.StatusFromGateway(gs.TransactionStatus)
	changed, err := n.orders.UpdateStatusIfChanged(ctx, order.ID, newStatus)
	if err != nil {
		return nil, err
	}
	if !changed {
		return gs, nil
	}

	// Best effort fan-out; the row is already authoritative.
	if n.cache != nil {
		_ = n.cache.SetStatus(ctx, order.ID, string(newStatus))
	}
	if n.pub != nil {
		if err := n.pub.PublishStatusChanged(ctx, StatusChangedMsg{
			OrderID:    order.ID,
			StoreID:    order.StoreID,
			UserID:     order.UserID,
			FromStatus: string(order.Status),
			Status:     string(newStatus),
		}); err != nil {
			n.log.Error("status event publish failed", "order_id", order.ID, "error", err)
		}
	}
	n.log.Info("order status updated",
		"order_id", order.ID, "from", order.Status, "to", newStatus, "payment_type", gs.PaymentType)
	return gs, nil
}
