package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lojinha/internal/domain"
)

type orderResponse struct {
	ID                string              `json:"id"`
	Number            string              `json:"number"`
	CustomerID        string              `json:"customer_id"`
	AddressID         string              `json:"address_id"`
	Status            string              `json:"status"`
	Total             string              `json:"total"`
	PaymentMethod     string              `json:"payment_method"`
	Items             []orderItemResponse `json:"items"`
	Payment           *paymentResponse    `json:"payment,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	PaidAt            *time.Time          `json:"paid_at,omitempty"`
	CanceledAt        *time.Time          `json:"canceled_at,omitempty"`
	EstimatedDelivery *time.Time          `json:"estimated_delivery,omitempty"`
}

// paymentResponse carries what the customer needs to finish or verify the
// payment: the boleto digital line and expiry, the PIX QR payload, the card
// receipt fields.
type paymentResponse struct {
	Method          string     `json:"method"`
	Status          string     `json:"status"`
	ProviderRef     string     `json:"provider_ref,omitempty"`
	CardBrand       string     `json:"card_brand,omitempty"`
	CardLastDigits  string     `json:"card_last_digits,omitempty"`
	PixQRCode       string     `json:"pix_qr_code,omitempty"`
	BoletoLine      string     `json:"boleto_line,omitempty"`
	BoletoExpiresAt *time.Time `json:"boleto_expires_at,omitempty"`
}

type orderItemResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	Subtotal    string `json:"subtotal"`
}

func toOrderResponse(order *domain.Order) orderResponse {
	resp := orderResponse{
		ID:                order.ID.String(),
		Number:            order.Number,
		CustomerID:        order.CustomerID.String(),
		AddressID:         order.AddressID.String(),
		Status:            order.Status.String(),
		Total:             order.Total.StringFixed(2),
		PaymentMethod:     string(order.PaymentMethod),
		CreatedAt:         order.CreatedAt,
		PaidAt:            order.PaidAt,
		CanceledAt:        order.CanceledAt,
		EstimatedDelivery: order.EstimatedDelivery,
	}
	if p := order.Payment; p != nil {
		resp.Payment = &paymentResponse{
			Method:          string(p.Method),
			Status:          string(p.Status),
			ProviderRef:     p.ProviderRef,
			CardBrand:       p.CardBrand,
			CardLastDigits:  p.CardLastDigits,
			PixQRCode:       p.PixQRCode,
			BoletoLine:      p.BoletoLine,
			BoletoExpiresAt: p.BoletoExpiresAt,
		}
	}
	for _, it := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID:   it.ProductID.String(),
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice.StringFixed(2),
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal.StringFixed(2),
		})
	}
	return resp
}

type cartResponse struct {
	CustomerID string             `json:"customer_id"`
	Items      []cartItemResponse `json:"items"`
	Total      string             `json:"total"`
	ItemCount  int                `json:"item_count"`
}

type cartItemResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
}

func toCartResponse(cart *domain.Cart) cartResponse {
	resp := cartResponse{
		CustomerID: cart.CustomerID.String(),
		Total:      cart.Total().StringFixed(2),
		ItemCount:  cart.ItemCount(),
	}
	for _, it := range cart.Items {
		resp.Items = append(resp.Items, cartItemResponse{
			ProductID:   it.ProductID.String(),
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice.StringFixed(2),
			Quantity:    it.Quantity,
		})
	}
	return resp
}

type addressResponse struct {
	ID     string `json:"id"`
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

func toAddressResponse(a *domain.Address) addressResponse {
	return addressResponse{
		ID:     a.ID.String(),
		Street: a.Street,
		City:   a.City,
		State:  a.State,
		Zip:    a.Zip,
	}
}

// respondError classifies a service failure into the caller-facing status.
// Unclassified errors are logged and surface as a generic 500 with no
// internal detail.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrOwnership):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPaymentDeclined):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("internal error",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "internal error",
			"request_id": c.GetString("request_id"),
		})
	}
}
