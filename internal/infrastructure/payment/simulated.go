package payment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lojinha/internal/domain"
)

// Card-token suffixes that deterministically reproduce decline scenarios.
const (
	TokenSuffixDeclined     = "0001"
	TokenSuffixInsufficient = "0002"
	TokenSuffixExpired      = "0003"
)

// simulatedGateway is the default provider. It needs no credentials and its
// outcomes are deterministic for a given card token, which is what the tests
// lean on.
type simulatedGateway struct {
	mu          sync.RWMutex
	issuedLines map[string]uuid.UUID // boleto digital line -> order id
	delay       time.Duration
}

func NewSimulatedGateway(delay time.Duration) Gateway {
	return &simulatedGateway{
		issuedLines: make(map[string]uuid.UUID),
		delay:       delay,
	}
}

func (g *simulatedGateway) ProcessPix(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) (*Result, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	txn := uuid.New().String()
	return &Result{
		Succeeded:   true,
		Status:      domain.PaymentSucceeded,
		ProviderRef: txn,
		PixQRCode:   fmt.Sprintf("00020126580014br.gov.bcb.pix0136%s5204000053039865802BR", txn),
	}, nil
}

func (g *simulatedGateway) ProcessCard(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal, cardToken string) (*Result, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	res := &Result{
		CardBrand:      brandFor(cardToken),
		CardLastDigits: lastDigits(cardToken),
	}

	switch {
	case strings.HasSuffix(cardToken, TokenSuffixDeclined):
		res.Status = domain.PaymentFailed
		res.ErrorMessage = "transação não autorizada pelo banco emissor"
	case strings.HasSuffix(cardToken, TokenSuffixInsufficient):
		res.Status = domain.PaymentFailed
		res.ErrorMessage = "saldo insuficiente"
	case strings.HasSuffix(cardToken, TokenSuffixExpired):
		res.Status = domain.PaymentFailed
		res.ErrorMessage = "cartão expirado"
	default:
		res.Succeeded = true
		res.Status = domain.PaymentSucceeded
		res.ProviderRef = uuid.New().String()
	}
	return res, nil
}

func (g *simulatedGateway) GenerateBoleto(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal, customer *domain.Customer) (*Result, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	line := generateDigitalLine()
	g.mu.Lock()
	g.issuedLines[line] = orderID
	g.mu.Unlock()

	days := 3 + rand.IntN(5) // 3 to 7 days out
	return &Result{
		Succeeded:       true,
		Status:          domain.PaymentPending,
		ProviderRef:     uuid.New().String(),
		BoletoLine:      line,
		BoletoExpiresAt: time.Now().AddDate(0, 0, days),
	}, nil
}

func (g *simulatedGateway) ConfirmBoleto(ctx context.Context, digitalLine string) (*Result, error) {
	g.mu.RLock()
	_, known := g.issuedLines[digitalLine]
	g.mu.RUnlock()

	if !known {
		return &Result{
			Status:       domain.PaymentFailed,
			ErrorMessage: "boleto desconhecido",
		}, nil
	}
	return &Result{
		Succeeded:   true,
		Status:      domain.PaymentSucceeded,
		ProviderRef: uuid.New().String(),
	}, nil
}

// wait simulates provider latency while staying cancellable.
func (g *simulatedGateway) wait(ctx context.Context) error {
	if g.delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(g.delay):
		return nil
	}
}

// generateDigitalLine fabricates a 47-digit bank-slip line.
func generateDigitalLine() string {
	var b strings.Builder
	b.Grow(47)
	for i := 0; i < 47; i++ {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}

func brandFor(token string) string {
	switch {
	case strings.HasPrefix(token, "4"):
		return "visa"
	case strings.HasPrefix(token, "5"):
		return "mastercard"
	default:
		return "card"
	}
}

func lastDigits(token string) string {
	if len(token) < 4 {
		return token
	}
	return token[len(token)-4:]
}
