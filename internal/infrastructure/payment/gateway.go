package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lojinha/internal/domain"
)

// Result is the normalized outcome of a gateway call. A decline is a Result
// with Succeeded=false and a message, not a transport error; errors are
// reserved for failures where the outcome is unknown.
type Result struct {
	Succeeded       bool
	Status          domain.PaymentStatus
	ProviderRef     string
	PixQRCode       string
	CardBrand       string
	CardLastDigits  string
	BoletoLine      string
	BoletoExpiresAt time.Time
	ErrorMessage    string
}

// Gateway abstracts payment execution so a live provider can replace the
// simulated one without touching order logic. The implementation is chosen
// once at startup from configuration.
type Gateway interface {
	ProcessPix(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) (*Result, error)
	ProcessCard(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal, cardToken string) (*Result, error)
	GenerateBoleto(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal, customer *domain.Customer) (*Result, error)
	// ConfirmBoleto acknowledges the bank-side settlement of a previously
	// issued slip. Order-state checks live in the checkout service.
	ConfirmBoleto(ctx context.Context, digitalLine string) (*Result, error)
}
