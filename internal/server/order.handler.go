package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"lojinha/internal/domain"
	"lojinha/internal/service"
)

type OrderHandler struct {
	identity service.IdentityService
	orders   service.OrderService
	logger   *zap.Logger
}

func NewOrderHandler(identity service.IdentityService, orders service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{identity: identity, orders: orders, logger: logger}
}

func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.orders.Get(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if !isOperator(c) {
		customer, err := h.identity.Resolve(c.Request.Context(), c.GetString("principal_id"))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		if order.CustomerID != customer.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "order not owned by customer"})
			return
		}
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) List(c *gin.Context) {
	customer, err := h.identity.Resolve(c.Request.Context(), c.GetString("principal_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	orders, err := h.orders.ListByCustomer(c.Request.Context(), customer.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, resp)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus is the operator fulfillment path: SHIPPED and DELIVERED only.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	if !isOperator(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "operator role required"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	order, err := h.orders.AdvanceStatus(c.Request.Context(), orderID, domain.OrderStatus(req.Status))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer id"})
		return
	}

	// The path customer id must belong to the caller unless an operator is
	// canceling on someone's behalf.
	if !isOperator(c) {
		customer, err := h.identity.Resolve(c.Request.Context(), c.GetString("principal_id"))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		if customer.ID != customerID {
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot cancel for another customer"})
			return
		}
	}

	order, err := h.orders.Cancel(c.Request.Context(), orderID, customerID, isOperator(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}
