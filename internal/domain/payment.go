package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentPix    PaymentMethod = "pix"
	PaymentCard   PaymentMethod = "card"
	PaymentBoleto PaymentMethod = "boleto"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentPix, PaymentCard, PaymentBoleto:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentExpired   PaymentStatus = "EXPIRED"
)

// Payment records a gateway outcome. At most one exists per order; its
// presence guards against a second charge.
type Payment struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	Method          PaymentMethod
	Status          PaymentStatus
	Amount          decimal.Decimal
	ProviderRef     string
	CardBrand       string
	CardLastDigits  string
	PixQRCode       string
	BoletoLine      string
	BoletoExpiresAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
