package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lordfalah/wasshoes-sub000/internal/adapter/http/middleware"
	domain "github.com/lordfalah/wasshoes-sub000/internal/entity"
	"github.com/lordfalah/wasshoes-sub000/internal/logging"
	"github.com/lordfalah/wasshoes-sub000/internal/usecase"
)

type TransactionHandler struct {
	checkout *usecase.Checkout
	notif    *usecase.Notification
	orders   *usecase.Orders
}

func NewTransactionHandler(checkout *usecase.Checkout, notif *usecase.Notification, orders *usecase.Orders) *TransactionHandler {
	return &TransactionHandler{checkout: checkout, notif: notif, orders: orders}
}

type checkoutItemReq struct {
	PaketID    string `json:"paketId" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
	PriceOrder *int64 `json:"priceOrder,omitempty"`
}

// userCheckoutReq is what a customer may send.
type userCheckoutReq struct {
	StoreID string            `json:"storeId" binding:"required"`
	Items   []checkoutItemReq `json:"items" binding:"required,min=1,dive"`
}

// adminCheckoutReq additionally allows per-line overrides, shoe-photo
// evidence, an explicit payment method, and a customer snapshot.
type adminCheckoutReq struct {
	StoreID       string               `json:"storeId" binding:"required"`
	Items         []checkoutItemReq    `json:"items" binding:"required,min=1,dive"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" binding:"omitempty,oneof=AUTO MANUAL"`
	ShoeImages    []string             `json:"shoesImages"`
	Customer      *domain.CustomerInfo `json:"informationCustomer"`
}

type orderResp struct {
	ID            string               `json:"id"`
	StoreID       string               `json:"storeId"`
	Status        domain.Status        `json:"status"`
	LaundryStatus domain.LaundryStatus `json:"laundryStatus"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	PaymentToken  string               `json:"paymentToken,omitempty"`
	RedirectURL   string               `json:"redirectUrl,omitempty"`
	TotalPrice    int64                `json:"totalPrice"`
	CreatedAt     time.Time            `json:"createdAt"`
}

func toOrderResp(o *domain.Order) orderResp {
	return orderResp{
		ID:            o.ID,
		StoreID:       o.StoreID,
		Status:        o.Status,
		LaundryStatus: o.LaundryStatus,
		PaymentMethod: o.PaymentMethod,
		PaymentToken:  o.PaymentToken,
		RedirectURL:   o.RedirectURL,
		TotalPrice:    o.TotalPrice,
		CreatedAt:     o.CreatedAt,
	}
}

// Checkout handles POST /api/transactions. The body shape is
// role-dispatched: customer calls bind the narrow shape, so the
// admin-only fields never reach the usecase for them.
func (h *TransactionHandler) Checkout(c *gin.Context) {
	actor := middleware.Actor(c)

	in := usecase.CheckoutInput{Actor: actor, Customer: actor.Customer}
	if actor.Admin() {
		var req adminCheckoutReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		in.StoreID = req.StoreID
		in.Items = toCartItems(req.Items, true)
		in.Method = req.PaymentMethod
		in.ShoeImages = req.ShoeImages
		if req.Customer != nil {
			in.Customer = *req.Customer
		}
	} else {
		var req userCheckoutReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		in.StoreID = req.StoreID
		in.Items = toCartItems(req.Items, false)
	}

	out, err := h.checkout.Execute(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrPaketMismatch):
			respond(c, http.StatusBadRequest, "fail", "some packages not found", nil)
		case errors.Is(err, usecase.ErrDuplicate):
			respond(c, http.StatusConflict, "fail", "checkout already in flight", nil)
		case errors.Is(err, usecase.ErrUnauthenticated):
			respond(c, http.StatusUnauthorized, "fail", "authentication required", nil)
		case errors.Is(err, usecase.ErrEmptyCheckout):
			respond(c, http.StatusBadRequest, "fail", "no items to check out", nil)
		default:
			logging.From(c).Error("checkout failed", "error", err)
			respond(c, http.StatusInternalServerError, "fail", "internal server error", nil)
		}
		return
	}

	if out.Existing {
		respond(c, http.StatusOK, "existing", "a pending order already exists for this store", toOrderResp(out.Order))
		return
	}
	respond(c, http.StatusCreated, "success", "order created", toOrderResp(out.Order))
}

func toCartItems(reqs []checkoutItemReq, allowOverride bool) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(reqs))
	for _, r := range reqs {
		it := domain.CartItem{PaketID: r.PaketID, Quantity: r.Quantity}
		if allowOverride {
			it.PriceOrder = r.PriceOrder
		}
		out = append(out, it)
	}
	return out
}

// Notify handles POST /api/transactions/notif, the gateway webhook.
// Response shapes here are part of the gateway contract; do not wrap
// the error cases in the success envelope.
func (h *TransactionHandler) Notify(c *gin.Context) {
	var payload usecase.NotifPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	gs, err := h.notif.Handle(c.Request.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidSignature):
			c.JSON(http.StatusForbidden, gin.H{"message": "Invalid signature"})
		case errors.Is(err, domain.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order tidak ditemukan"})
		default:
			logging.From(c).Error("webhook handling failed", "order_id", payload.OrderID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		}
		return
	}

	respond(c, http.StatusCreated, "success", "transaction status processed", gs)
}

// Unpaid handles GET /api/transactions/unpaid; the stale-PENDING sweep
// runs inside the usecase before the rows come back.
func (h *TransactionHandler) Unpaid(c *gin.Context) {
	actor := middleware.Actor(c)
	list, err := h.orders.GetUnpaidOrders(c.Request.Context(), actor.UserID)
	if err != nil {
		logging.From(c).Error("unpaid orders lookup failed", "error", err)
		respond(c, http.StatusInternalServerError, "fail", "internal server error", nil)
		return
	}
	out := make([]orderResp, 0, len(list))
	for i := range list {
		out = append(out, toOrderResp(&list[i]))
	}
	respond(c, http.StatusOK, "success", "unpaid orders", out)
}
