package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lordfalah/wasshoes-sub000/internal/adapter/http/middleware"
	domain "github.com/lordfalah/wasshoes-sub000/internal/entity"
	"github.com/lordfalah/wasshoes-sub000/internal/logging"
	"github.com/lordfalah/wasshoes-sub000/internal/usecase"
)

// StoreOrderHandler is the admin dashboard's read side plus its few
// mutations: cancel, manual settle, laundry progress.
type StoreOrderHandler struct {
	orders *usecase.Orders
}

func NewStoreOrderHandler(orders *usecase.Orders) *StoreOrderHandler {
	return &StoreOrderHandler{orders: orders}
}

// List handles GET /api/store/orders with status/date/customer filters.
func (h *StoreOrderHandler) List(c *gin.Context) {
	actor := middleware.Actor(c)

	f := usecase.OrderFilter{
		Status: domain.Status(c.Query("status")),
		UserID: c.Query("userId"),
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.From = t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.To = t
		}
	}
	f.Limit, _ = strconv.Atoi(c.Query("limit"))
	f.Offset, _ = strconv.Atoi(c.Query("offset"))

	list, err := h.orders.ListByStore(c.Request.Context(), actor.StoreID, f)
	if err != nil {
		logging.From(c).Error("store order list failed", "store_id", actor.StoreID, "error", err)
		respond(c, http.StatusInternalServerError, "fail", "internal server error", nil)
		return
	}
	out := make([]orderResp, 0, len(list))
	for i := range list {
		out = append(out, toOrderResp(&list[i]))
	}
	respond(c, http.StatusOK, "success", "orders", out)
}

// Cancel handles POST /api/store/orders/:id/cancel.
func (h *StoreOrderHandler) Cancel(c *gin.Context) {
	order, err := h.guarded(c, func(id string) (*domain.Order, error) {
		return h.orders.Cancel(c.Request.Context(), id)
	})
	if err != nil {
		return
	}
	respond(c, http.StatusOK, "success", "order cancelled", toOrderResp(order))
}

// Settle handles POST /api/store/orders/:id/settle for MANUAL orders.
func (h *StoreOrderHandler) Settle(c *gin.Context) {
	order, err := h.guarded(c, func(id string) (*domain.Order, error) {
		return h.orders.SettleManual(c.Request.Context(), id)
	})
	if err != nil {
		return
	}
	respond(c, http.StatusOK, "success", "order settled", toOrderResp(order))
}

type laundryStatusReq struct {
	Status domain.LaundryStatus `json:"status" binding:"required,oneof=ON_HOLD IN_PROGRESS QUALITY_CHECK READY_FOR_COLLECTION COMPLETED"`
}

// LaundryStatus handles PATCH /api/store/orders/:id/laundry-status.
func (h *StoreOrderHandler) LaundryStatus(c *gin.Context) {
	var req laundryStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.guarded(c, func(id string) (*domain.Order, error) {
		return h.orders.AdvanceLaundry(c.Request.Context(), id, req.Status)
	})
	if err != nil {
		return
	}
	respond(c, http.StatusOK, "success", "laundry status updated", toOrderResp(order))
}

// guarded runs an order mutation after checking the order belongs to
// the admin's store; it writes the error response itself.
func (h *StoreOrderHandler) guarded(c *gin.Context, fn func(id string) (*domain.Order, error)) (*domain.Order, error) {
	actor := middleware.Actor(c)
	id := c.Param("id")

	existing, err := h.orders.GetByID(c.Request.Context(), id)
	if err != nil {
		h.orderError(c, err)
		return nil, err
	}
	if existing.StoreID != actor.StoreID {
		respond(c, http.StatusForbidden, "fail", "order belongs to another store", nil)
		return nil, errors.New("store mismatch")
	}

	order, err := fn(id)
	if err != nil {
		h.orderError(c, err)
		return nil, err
	}
	return order, nil
}

func (h *StoreOrderHandler) orderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		respond(c, http.StatusNotFound, "fail", "order not found", nil)
	case errors.Is(err, usecase.ErrOrderClosed):
		respond(c, http.StatusConflict, "fail", "order is no longer pending", nil)
	case errors.Is(err, usecase.ErrNotManualOrder):
		respond(c, http.StatusBadRequest, "fail", "order is not a manual-payment order", nil)
	case errors.Is(err, domain.ErrInvalidTransition):
		respond(c, http.StatusBadRequest, "fail", "laundry status may only move forward", nil)
	default:
		logging.From(c).Error("store order action failed", "error", err)
		respond(c, http.StatusInternalServerError, "fail", "internal server error", nil)
	}
}
