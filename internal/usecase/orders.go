package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domain "github.com/lordfalah/wasshoes-sub000/internal/entity"
	"github.com/lordfalah/wasshoes-sub000/internal/logging"
)

// PendingTTL is how long an order may sit unpaid before the sweep
// flips it to EXPIRE.
const PendingTTL = 24 * time.Hour

var (
	ErrNotManualOrder = errors.New("order is not a manual-payment order")
	ErrOrderClosed    = errors.New("order is no longer pending")
)

// Orders is the read side plus the few admin-triggered mutations
// (cancel, manual settle, laundry progress).
type Orders struct {
	repo  OrderRepo
	gw    PaymentGateway
	pub   EventPublisher
	cache StatusCache
	log   *slog.Logger
}

func NewOrders(repo OrderRepo, gw PaymentGateway, pub EventPublisher, cache StatusCache) *Orders {
	return &Orders{repo: repo, gw: gw, pub: pub, cache: cache, log: logging.New("orders")}
}

// GetUnpaidOrders sweeps stale PENDING orders to EXPIRE, then returns
// the caller's remaining unpaid orders. The sweep is a single
// conditional UPDATE and only ever moves orders forward, so running it
// redundantly on every call is harmless.
func (s *Orders) GetUnpaidOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	if n, err := s.repo.ExpireStale(ctx, PendingTTL); err != nil {
		s.log.Error("expiry sweep failed", "error", err)
	} else if n > 0 {
		s.log.Info("expired stale pending orders", "count", n)
	}
	return s.repo.ListUnpaidByUser(ctx, userID)
}

func (s *Orders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Orders) ListByStore(ctx context.Context, storeID string, f OrderFilter) ([]domain.Order, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	return s.repo.ListByStore(ctx, storeID, f)
}

// Cancel moves a PENDING order to CANCEL. AUTO orders are cancelled at
// the gateway first so the customer cannot still pay; MANUAL orders
// bypass the gateway entirely.
func (s *Orders) Cancel(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.StatusPending {
		return nil, ErrOrderClosed
	}
	if order.PaymentMethod == domain.PaymentAuto {
		if err := s.gw.Cancel(ctx, order.ID); err != nil {
			return nil, err
		}
	}
	return s.transition(ctx, order, domain.StatusCancel)
}

// SettleManual marks a MANUAL-payment order paid without touching the
// gateway.
func (s *Orders) SettleManual(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentMethod != domain.PaymentManual {
		return nil, ErrNotManualOrder
	}
	if order.Status != domain.StatusPending {
		return nil, ErrOrderClosed
	}
	return s.transition(ctx, order, domain.StatusSettlement)
}

func (s *Orders) transition(ctx context.Context, order *domain.Order, to domain.Status) (*domain.Order, error) {
	ok, err := s.repo.UpdateStatusIf(ctx, order.ID, domain.StatusPending, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race against the webhook or another admin.
		return nil, ErrOrderClosed
	}
	if s.cache != nil {
		_ = s.cache.SetStatus(ctx, order.ID, string(to))
	}
	if s.pub != nil {
		if err := s.pub.PublishStatusChanged(ctx, StatusChangedMsg{
			OrderID:    order.ID,
			StoreID:    order.StoreID,
			UserID:     order.UserID,
			FromStatus: string(domain.StatusPending),
			Status:     string(to),
		}); err != nil {
			s.log.Error("status event publish failed", "order_id", order.ID, "error", err)
		}
	}
	order.Status = to
	return order, nil
}

// AdvanceLaundry moves the physical-processing status forward. Both
// the admin endpoint and the Kafka station feed land here.
func (s *Orders) AdvanceLaundry(ctx context.Context, orderID string, to domain.LaundryStatus) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanAdvanceLaundry(order.LaundryStatus, to) {
		return nil, domain.ErrInvalidTransition
	}
	if err := s.repo.UpdateLaundryStatus(ctx, order.ID, to); err != nil {
		return nil, err
	}
	order.LaundryStatus = to
	return order, nil
}
