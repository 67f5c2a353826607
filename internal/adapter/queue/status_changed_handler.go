package queue

import (
	"context"
	"log/slog"

	"github.com/lordfalah/wasshoes-sub000/internal/logging"
	"github.com/lordfalah/wasshoes-sub000/internal/usecase"
)

// StatusChangedHandler drains order.status.changed.q and keeps the
// Redis status cache in step with the database, so storefront polling
// never reads a status older than the last published transition.
type StatusChangedHandler struct {
	cache usecase.StatusCache
	log   *slog.Logger
}

func NewStatusChangedHandler(cache usecase.StatusCache) *StatusChangedHandler {
	return &StatusChangedHandler{cache: cache, log: logging.New("status-events")}
}

// HandleStatusChanged is used with queue.JSONHandler[usecase.StatusChangedMsg].
func (h *StatusChangedHandler) HandleStatusChanged(ctx context.Context, msg usecase.StatusChangedMsg) error {
	if err := h.cache.SetStatus(ctx, msg.OrderID, msg.Status); err != nil {
		return err
	}
	h.log.Info("order status event",
		"order_id", msg.OrderID, "store_id", msg.StoreID, "from", msg.FromStatus, "to", msg.Status)
	return nil
}
