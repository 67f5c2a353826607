package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lordfalah/wasshoes-sub000/configs"
	"github.com/lordfalah/wasshoes-sub000/internal/adapter/http/middleware"
	domain "github.com/lordfalah/wasshoes-sub000/internal/entity"
	"github.com/lordfalah/wasshoes-sub000/internal/logging"
	"github.com/lordfalah/wasshoes-sub000/internal/pricing"
	"github.com/lordfalah/wasshoes-sub000/internal/usecase"
)

type CartHandler struct {
	svc    *usecase.CartService
	pakets usecase.PaketRepo
	cfg    configs.Config
}

func NewCartHandler(svc *usecase.CartService, pakets usecase.PaketRepo, cfg configs.Config) *CartHandler {
	return &CartHandler{svc: svc, pakets: pakets, cfg: cfg}
}

type cartItemResp struct {
	PaketID    string `json:"paketId"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	Quantity   int    `json:"quantity"`
	PriceOrder *int64 `json:"priceOrder,omitempty"`
}

type cartResp struct {
	ID      string          `json:"id,omitempty"`
	StoreID string          `json:"storeId,omitempty"`
	Items   []cartItemResp  `json:"items"`
	Summary pricing.Summary `json:"summary"`
}

// view joins cart lines with their pakets and prices the whole thing.
// Pakets that have vanished since being added are shown with a zero
// price rather than breaking the page.
func (h *CartHandler) view(c *gin.Context, cart *domain.Cart) cartResp {
	resp := cartResp{ID: cart.ID, StoreID: cart.StoreID, Items: []cartItemResp{}}

	ids := make([]string, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.PaketID)
	}
	byID := map[string]domain.Paket{}
	if len(ids) > 0 {
		if pakets, err := h.pakets.GetByIDs(c.Request.Context(), ids); err == nil {
			for _, p := range pakets {
				byID[p.ID] = p
			}
		} else {
			logging.From(c).Error("paket lookup for cart view failed", "error", err)
		}
	}

	lines := make([]pricing.Line, 0, len(cart.Items))
	for _, it := range cart.Items {
		p := byID[it.PaketID]
		resp.Items = append(resp.Items, cartItemResp{
			PaketID:    it.PaketID,
			Name:       p.Name,
			Price:      p.Price,
			Quantity:   it.Quantity,
			PriceOrder: it.PriceOrder,
		})
		lines = append(lines, pricing.Line{Price: p.Price, Quantity: it.Quantity, PriceOrder: it.PriceOrder})
	}
	resp.Summary = pricing.Summarize(lines)
	return resp
}

// Get handles GET /api/cart. Always 200; a missing session or cart is
// an empty cart, not an error.
func (h *CartHandler) Get(c *gin.Context) {
	actor := middleware.Actor(c)
	cart := h.svc.GetCart(c.Request.Context(), actor, c.Query("storeId"))
	respond(c, http.StatusOK, "success", "cart", h.view(c, cart))
}

type addToCartReq struct {
	PaketID  string `json:"paketId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// Add handles POST /api/cart. A cart created on the fly issues a fresh
// cart cookie.
func (h *CartHandler) Add(c *gin.Context) {
	actor := middleware.Actor(c)
	var req addToCartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cart, err := h.svc.AddToCart(c.Request.Context(), actor, domain.CartItem{
		PaketID:  req.PaketID,
		Quantity: req.Quantity,
	})
	if err != nil {
		h.cartError(c, err)
		return
	}

	if cart.ID != actor.CartID {
		h.setCartCookie(c, cart.ID)
	}
	respond(c, http.StatusOK, "success", "item added to cart", h.view(c, cart))
}

type updateCartReq struct {
	PaketID    string `json:"paketId" binding:"required"`
	Quantity   int    `json:"quantity" binding:"min=0"`
	PriceOrder *int64 `json:"priceOrder,omitempty"`
}

// Update handles PATCH /api/cart: quantity changes, line removal via
// quantity 0, and admin price overrides.
func (h *CartHandler) Update(c *gin.Context) {
	actor := middleware.Actor(c)
	var req updateCartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cart, err := h.svc.UpdateItem(c.Request.Context(), actor, domain.CartItem{
		PaketID:    req.PaketID,
		Quantity:   req.Quantity,
		PriceOrder: req.PriceOrder,
	})
	if err != nil {
		h.cartError(c, err)
		return
	}
	respond(c, http.StatusOK, "success", "cart updated", h.view(c, cart))
}

type removeItemsReq struct {
	PaketIDs []string `json:"paketIds" binding:"required,min=1"`
}

// RemoveItems handles DELETE /api/cart/items.
func (h *CartHandler) RemoveItems(c *gin.Context) {
	actor := middleware.Actor(c)
	var req removeItemsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cart, err := h.svc.RemoveItems(c.Request.Context(), actor, req.PaketIDs...)
	if err != nil {
		h.cartError(c, err)
		return
	}
	respond(c, http.StatusOK, "success", "items removed", h.view(c, cart))
}

// Delete handles DELETE /api/cart. The cookie is cleared only when the
// cart was reached through it.
func (h *CartHandler) Delete(c *gin.Context) {
	actor := middleware.Actor(c)
	byCookie, err := h.svc.DeleteCart(c.Request.Context(), actor)
	if err != nil {
		h.cartError(c, err)
		return
	}
	if byCookie {
		h.clearCartCookie(c)
	}
	respond(c, http.StatusOK, "success", "cart deleted", nil)
}

func (h *CartHandler) cartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrUnauthenticated):
		respond(c, http.StatusUnauthorized, "fail", "authentication required", nil)
	case errors.Is(err, domain.ErrPaketNotFound):
		respond(c, http.StatusNotFound, "fail", "paket not found", nil)
	case errors.Is(err, usecase.ErrPaketHidden):
		respond(c, http.StatusNotFound, "fail", "paket not found", nil)
	case errors.Is(err, domain.ErrCartNotFound):
		respond(c, http.StatusNotFound, "fail", "cart not found", nil)
	case errors.Is(err, domain.ErrCartClosed):
		respond(c, http.StatusConflict, "fail", "cart already closed", nil)
	default:
		logging.From(c).Error("cart operation failed", "error", err)
		respond(c, http.StatusInternalServerError, "fail", "internal server error", nil)
	}
}

func (h *CartHandler) setCartCookie(c *gin.Context, cartID string) {
	c.SetCookie(
		h.cfg.Cart.CookieName,
		cartID,
		int(h.cfg.Cart.CookieTTL.Seconds()),
		"/",
		"",
		h.cfg.Cart.CookieSecure,
		true, // httpOnly
	)
}

func (h *CartHandler) clearCartCookie(c *gin.Context) {
	c.SetCookie(h.cfg.Cart.CookieName, "", -1, "/", "", h.cfg.Cart.CookieSecure, true)
}
