package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"lojinha/internal/domain"
	"lojinha/internal/service"
)

type CheckoutHandler struct {
	identity  service.IdentityService
	checkout  service.CheckoutService
	addresses service.AddressService
	logger    *zap.Logger
}

func NewCheckoutHandler(
	identity service.IdentityService,
	checkout service.CheckoutService,
	addresses service.AddressService,
	logger *zap.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{identity: identity, checkout: checkout, addresses: addresses, logger: logger}
}

type confirmRequest struct {
	AddressID string         `json:"address_id" binding:"required"`
	Payment   paymentRequest `json:"payment" binding:"required"`
	// Body-supplied key; the Idempotency-Key header takes precedence.
	IdempotencyKey string `json:"idempotency_key"`
}

type paymentRequest struct {
	Method    string `json:"method" binding:"required"`
	CardToken string `json:"card_token"`
}

func (h *CheckoutHandler) Confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	addressID, err := uuid.Parse(req.AddressID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address_id"})
		return
	}

	key := c.GetHeader(headerIdempotencyKey)
	if key == "" {
		key = req.IdempotencyKey
	}

	customer, err := h.identity.Resolve(c.Request.Context(), c.GetString("principal_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	sel := service.PaymentSelection{
		Method:    domain.PaymentMethod(req.Payment.Method),
		CardToken: req.Payment.CardToken,
	}
	order, replay, err := h.checkout.Confirm(c.Request.Context(), customer.ID, addressID, sel, key)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Location", "/orders/"+order.ID.String())
	status := http.StatusCreated
	if replay {
		status = http.StatusOK
	}
	c.JSON(status, toOrderResponse(order))
}

// ConfirmLegacy finalizes the current cart without a separate address and
// payment step: the customer's first address and PIX.
func (h *CheckoutHandler) ConfirmLegacy(c *gin.Context) {
	customer, err := h.identity.Resolve(c.Request.Context(), c.GetString("principal_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	addresses, err := h.addresses.List(c.Request.Context(), customer.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if len(addresses) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customer has no delivery address"})
		return
	}

	sel := service.PaymentSelection{Method: domain.PaymentPix}
	order, replay, err := h.checkout.Confirm(c.Request.Context(), customer.ID, addresses[0].ID, sel, c.GetHeader(headerIdempotencyKey))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Location", "/orders/"+order.ID.String())
	status := http.StatusCreated
	if replay {
		status = http.StatusOK
	}
	c.JSON(status, toOrderResponse(order))
}

// ConfirmBoleto simulates the bank-side settlement webhook for a slip.
func (h *CheckoutHandler) ConfirmBoleto(c *gin.Context) {
	line := c.Param("digitalLine")
	order, err := h.checkout.ConfirmBoleto(c.Request.Context(), line)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}
