package server

import (
	"database/sql"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lojinha/internal/database"
	"lojinha/internal/metrics"
)

type Handlers struct {
	Checkout *CheckoutHandler
	Cart     *CartHandler
	Order    *OrderHandler
	Address  *AddressHandler
}

func NewRouter(db *sql.DB, h Handlers, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(Logger(logger))
	router.Use(cors.Default())

	router.GET("/health", func(c *gin.Context) {
		stats := database.Health(db)
		code := http.StatusOK
		if stats["status"] != "up" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, stats)
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	authed := router.Group("/", Principal())
	{
		authed.GET("/cart", h.Cart.Get)
		authed.POST("/cart/items", h.Cart.AddItem)
		authed.DELETE("/cart/items/:productId", h.Cart.RemoveItem)
		authed.DELETE("/cart", h.Cart.Clear)

		authed.POST("/checkout/confirm", h.Checkout.Confirm)
		authed.POST("/checkout", h.Checkout.ConfirmLegacy)

		authed.GET("/orders", h.Order.List)
		authed.GET("/orders/:id", h.Order.Get)
		authed.PATCH("/orders/:id/status", h.Order.UpdateStatus)
		authed.PUT("/orders/:id/cancel/:customerId", h.Order.Cancel)

		authed.PUT("/payments/boleto/confirm/:digitalLine", h.Checkout.ConfirmBoleto)

		authed.POST("/addresses", h.Address.Create)
		authed.GET("/addresses", h.Address.List)
		authed.PATCH("/addresses/:id", h.Address.Patch)
	}

	return router
}
