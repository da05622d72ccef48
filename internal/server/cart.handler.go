package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"lojinha/internal/service"
)

type CartHandler struct {
	identity service.IdentityService
	carts    service.CartService
	logger   *zap.Logger
}

func NewCartHandler(identity service.IdentityService, carts service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{identity: identity, carts: carts, logger: logger}
}

func (h *CartHandler) Get(c *gin.Context) {
	customer, err := h.identity.Resolve(c.Request.Context(), c.GetString("principal_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	cart, err := h.carts.GetOrCreate(c.Request.Context(), customer.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product_id"})
		return
	}

	customer, err := h.identity.Resolve(c.Request.Context(), c.GetString("principal_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	cart, err := h.carts.AddItem(c.Request.Context(), customer.ID, productID, req.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	customer, err := h.identity.Resolve(c.Request.Context(), c.GetString("principal_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	cart, err := h.carts.RemoveItem(c.Request.Context(), customer.ID, productID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) Clear(c *gin.Context) {
	customer, err := h.identity.Resolve(c.Request.Context(), c.GetString("principal_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.carts.Clear(c.Request.Context(), customer.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
