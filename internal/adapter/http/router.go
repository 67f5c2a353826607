package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lordfalah/wasshoes-sub000/internal/adapter/http/middleware"
	"github.com/lordfalah/wasshoes-sub000/internal/logging"
	"github.com/lordfalah/wasshoes-sub000/internal/usecase"
)

func NewRouter(
	tx *TransactionHandler,
	cart *CartHandler,
	paket *PaketHandler,
	store *StoreOrderHandler,
	th *TokenHandler,
	authz *middleware.Authz,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		logging.From(c).Info("health check")
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", th.IssueToken)

	api := r.Group("/api")
	{
		// The webhook authenticates itself by signature, not by JWT.
		api.POST("/transactions/notif", tx.Notify)

		api.POST("/transactions", authz.Require(usecase.RoleCustomer, usecase.RoleAdmin), tx.Checkout)
		api.GET("/transactions/unpaid", authz.Require(usecase.RoleCustomer, usecase.RoleAdmin), tx.Unpaid)

		api.GET("/cart", authz.Optional(), cart.Get)
		api.POST("/cart", authz.Require(usecase.RoleCustomer, usecase.RoleAdmin), cart.Add)
		api.PATCH("/cart", authz.Require(usecase.RoleCustomer, usecase.RoleAdmin), cart.Update)
		api.DELETE("/cart/items", authz.Require(usecase.RoleCustomer, usecase.RoleAdmin), cart.RemoveItems)
		api.DELETE("/cart", authz.Require(usecase.RoleCustomer, usecase.RoleAdmin), cart.Delete)

		st := api.Group("/store")
		{
			st.GET("/package", authz.Optional(), paket.List)
			st.GET("/package/:id", authz.Optional(), paket.Get)
			st.POST("/package", authz.Require(usecase.RoleAdmin), paket.Create)
			st.PATCH("/package/:id", authz.Require(usecase.RoleAdmin), paket.Update)
			st.DELETE("/package/:id", authz.Require(usecase.RoleAdmin), paket.Delete)

			st.GET("/orders", authz.Require(usecase.RoleAdmin), store.List)
			st.POST("/orders/:id/cancel", authz.Require(usecase.RoleAdmin), store.Cancel)
			st.POST("/orders/:id/settle", authz.Require(usecase.RoleAdmin), store.Settle)
			st.PATCH("/orders/:id/laundry-status", authz.Require(usecase.RoleAdmin), store.LaundryStatus)
		}
	}

	return r
}
