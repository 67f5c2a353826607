package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lordfalah/wasshoes-sub000/internal/adapter/http/middleware"
	domain "github.com/lordfalah/wasshoes-sub000/internal/entity"
	"github.com/lordfalah/wasshoes-sub000/internal/logging"
	"github.com/lordfalah/wasshoes-sub000/internal/usecase"
)

// PaketHandler is plain resource CRUD over the paket repo; there is no
// usecase in between because there are no rules beyond store scoping.
type PaketHandler struct {
	repo usecase.PaketRepo
}

func NewPaketHandler(repo usecase.PaketRepo) *PaketHandler {
	return &PaketHandler{repo: repo}
}

type paketResp struct {
	ID          string `json:"id"`
	StoreID     string `json:"storeId"`
	CategoryID  string `json:"categoryId"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Visible     bool   `json:"visible"`
}

func toPaketResp(p *domain.Paket) paketResp {
	return paketResp{
		ID:          p.ID,
		StoreID:     p.StoreID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		Visible:     p.Visible,
	}
}

// Get handles GET /api/store/package/:id. Hidden pakets stay visible
// to their own store's admin.
func (h *PaketHandler) Get(c *gin.Context) {
	p, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.paketError(c, err)
		return
	}
	actor := middleware.Actor(c)
	if !p.Visible && !(actor.Admin() && actor.StoreID == p.StoreID) {
		respond(c, http.StatusNotFound, "fail", "package not found", nil)
		return
	}
	respond(c, http.StatusOK, "success", "package", toPaketResp(p))
}

type createPaketReq struct {
	CategoryID  string `json:"categoryId"`
	Name        string `json:"name" binding:"required"`
	Price       int64  `json:"price" binding:"required,min=0"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Visible     *bool  `json:"visible"`
}

func (h *PaketHandler) Create(c *gin.Context) {
	actor := middleware.Actor(c)
	var req createPaketReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p := &domain.Paket{
		ID:          uuid.NewString(),
		StoreID:     actor.StoreID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Image:       req.Image,
		Visible:     req.Visible == nil || *req.Visible,
	}
	if err := h.repo.Create(c.Request.Context(), p); err != nil {
		h.paketError(c, err)
		return
	}
	respond(c, http.StatusCreated, "success", "package created", toPaketResp(p))
}

type updatePaketReq struct {
	CategoryID  *string `json:"categoryId"`
	Name        *string `json:"name"`
	Price       *int64  `json:"price" binding:"omitempty,min=0"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Visible     *bool   `json:"visible"`
}

// Update handles PATCH /api/store/package/:id; only sent fields change.
func (h *PaketHandler) Update(c *gin.Context) {
	actor := middleware.Actor(c)
	p, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.paketError(c, err)
		return
	}
	if p.StoreID != actor.StoreID {
		respond(c, http.StatusForbidden, "fail", "package belongs to another store", nil)
		return
	}

	var req updatePaketReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.CategoryID != nil {
		p.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	if req.Visible != nil {
		p.Visible = *req.Visible
	}

	if err := h.repo.Update(c.Request.Context(), p); err != nil {
		h.paketError(c, err)
		return
	}
	respond(c, http.StatusOK, "success", "package updated", toPaketResp(p))
}

func (h *PaketHandler) Delete(c *gin.Context) {
	actor := middleware.Actor(c)
	p, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.paketError(c, err)
		return
	}
	if p.StoreID != actor.StoreID {
		respond(c, http.StatusForbidden, "fail", "package belongs to another store", nil)
		return
	}
	if err := h.repo.Delete(c.Request.Context(), p.ID); err != nil {
		h.paketError(c, err)
		return
	}
	respond(c, http.StatusOK, "success", "package deleted", nil)
}

// List handles GET /api/store/package?storeId=...; anonymous callers
// only see visible pakets.
func (h *PaketHandler) List(c *gin.Context) {
	storeID := c.Query("storeId")
	if storeID == "" {
		respond(c, http.StatusBadRequest, "fail", "storeId query parameter required", nil)
		return
	}
	pakets, err := h.repo.ListByStore(c.Request.Context(), storeID)
	if err != nil {
		h.paketError(c, err)
		return
	}
	actor := middleware.Actor(c)
	out := make([]paketResp, 0, len(pakets))
	for i := range pakets {
		if !pakets[i].Visible && !(actor.Admin() && actor.StoreID == storeID) {
			continue
		}
		out = append(out, toPaketResp(&pakets[i]))
	}
	respond(c, http.StatusOK, "success", "packages", out)
}

func (h *PaketHandler) paketError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrPaketNotFound) {
		respond(c, http.StatusNotFound, "fail", "package not found", nil)
		return
	}
	logging.From(c).Error("paket operation failed", "error", err)
	respond(c, http.StatusInternalServerError, "fail", "internal server error", nil)
}
