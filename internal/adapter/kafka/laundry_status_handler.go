package kafka

import (
	"context"
	"errors"
	"log/slog"

	domain "github.com/lordfalah/wasshoes-sub000/internal/entity"
	"github.com/lordfalah/wasshoes-sub000/internal/logging"
	"github.com/lordfalah/wasshoes-sub000/internal/usecase"
)

// LaundryStatusHandler applies station progress events to orders.
// Events are forward-only; a stale or duplicate event is dropped, not
// retried, because the workflow can never move backwards.
type LaundryStatusHandler struct {
	Orders *usecase.Orders
	log    *slog.Logger
}

func NewLaundryStatusHandler(orders *usecase.Orders) *LaundryStatusHandler {
	return &LaundryStatusHandler{Orders: orders, log: logging.New("laundry-events")}
}

func (h *LaundryStatusHandler) Handle(ctx context.Context, ev usecase.LaundryStatusMsg) error {
	_, err := h.Orders.AdvanceLaundry(ctx, ev.OrderID, domain.LaundryStatus(ev.Status))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			h.log.Warn("dropping stale laundry event",
				"order_id", ev.OrderID, "status", ev.Status, "station", ev.StationID)
			return nil
		}
		return err
	}
	h.log.Info("laundry status advanced",
		"order_id", ev.OrderID, "status", ev.Status, "station", ev.StationID)
	return nil
}
