package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lojinha/internal/cache"
	"lojinha/internal/domain"
	"lojinha/internal/infrastructure/notification"
	"lojinha/internal/infrastructure/payment"
	"lojinha/internal/metrics"
	"lojinha/internal/repo"
)

// estimatedDeliveryDays feeds the delivery estimate stamped on new orders.
const estimatedDeliveryDays = 7

// PaymentSelection is the method chosen at confirmation plus its
// method-specific input.
type PaymentSelection struct {
	Method    domain.PaymentMethod
	CardToken string
}

type CheckoutService interface {
	// Confirm snapshots the cart into an order, dispatches payment and
	// clears the cart. When idempotencyKey matches an existing order that
	// order is returned with replay=true and nothing re-runs.
	Confirm(ctx context.Context, customerID, addressID uuid.UUID, sel PaymentSelection, idempotencyKey string) (order *domain.Order, replay bool, err error)
	// ConfirmBoleto settles a pending bank slip by its digital line and
	// moves the owning order to PAID.
	ConfirmBoleto(ctx context.Context, digitalLine string) (*domain.Order, error)
}

type checkoutService struct {
	db        *sql.DB
	customers repo.CustomerRepo
	addresses repo.AddressRepo
	carts     repo.CartRepo
	cache     cache.CartCache // nil when REDIS_ADDR is unset
	orders    repo.OrderRepo
	payments  repo.PaymentRepo
	gateway   payment.Gateway
	notifier  *notifier
	metrics   *metrics.Metrics
	logger    *zap.Logger

	paymentTimeout time.Duration
}

func NewCheckoutService(
	db *sql.DB,
	customers repo.CustomerRepo,
	addresses repo.AddressRepo,
	carts repo.CartRepo,
	cartCache cache.CartCache,
	orders repo.OrderRepo,
	payments repo.PaymentRepo,
	gateway payment.Gateway,
	notifications repo.NotificationRepo,
	notificationGateway notification.Gateway,
	m *metrics.Metrics,
	logger *zap.Logger,
	paymentTimeout time.Duration,
) CheckoutService {
	return &checkoutService{
		db:             db,
		customers:      customers,
		addresses:      addresses,
		carts:          carts,
		cache:          cartCache,
		orders:         orders,
		payments:       payments,
		gateway:        gateway,
		notifier:       &notifier{notifications: notifications, gateway: notificationGateway, logger: logger},
		metrics:        m,
		logger:         logger,
		paymentTimeout: paymentTimeout,
	}
}

func (s *checkoutService) Confirm(ctx context.Context, customerID, addressID uuid.UUID, sel PaymentSelection, idempotencyKey string) (*domain.Order, bool, error) {
	// 1. Idempotency replay: same key, same order, no side effects.
	if idempotencyKey != "" {
		existing, err := s.orders.FindByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, true, nil
		}
	}

	if !sel.Method.Valid() {
		return nil, false, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, sel.Method)
	}
	if sel.Method == domain.PaymentCard && sel.CardToken == "" {
		return nil, false, fmt.Errorf("%w: card token is required", domain.ErrValidation)
	}

	// 2. Identity and ownership.
	customer, err := s.customers.FindById(ctx, customerID)
	if err != nil {
		return nil, false, err
	}
	if customer == nil {
		return nil, false, fmt.Errorf("%w: customer %s", domain.ErrNotFound, customerID)
	}
	address, err := s.addresses.FindById(ctx, addressID)
	if err != nil {
		return nil, false, err
	}
	if address == nil {
		return nil, false, fmt.Errorf("%w: address %s", domain.ErrNotFound, addressID)
	}
	if address.CustomerID != customer.ID {
		return nil, false, fmt.Errorf("%w: address %s", domain.ErrOwnership, addressID)
	}

	// 3. Cart snapshot.
	cart, err := s.carts.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, false, err
	}
	if cart.Empty() {
		return nil, false, fmt.Errorf("%w: customer %s", domain.ErrEmptyCart, customerID)
	}

	// 4. Order creation. Line prices and names are frozen here; later
	// catalog edits never touch this order.
	order := buildOrder(customer.ID, address.ID, cart, sel.Method, idempotencyKey)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	if err := s.orders.Create(ctx, tx, order); err != nil {
		if errors.Is(err, repo.ErrDuplicateKey) {
			// Lost the race: another request with this key won the unique
			// constraint. Return the winner's order as a replay.
			winner, findErr := s.orders.FindByIdempotencyKey(ctx, idempotencyKey)
			if findErr != nil {
				return nil, false, findErr
			}
			if winner != nil {
				return winner, true, nil
			}
		}
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	// 5. Payment dispatch.
	if err := s.dispatchPayment(ctx, order, customer, sel); err != nil {
		s.metrics.CheckoutTotal.WithLabelValues("declined").Inc()
		return nil, false, err
	}

	// 6. Cart clearing, only after the order is durable. A failure here
	// leaves an un-cleared cart, which the idempotency key makes
	// recoverable rather than duplicating. The cached cart view must go
	// with it or GET /cart keeps serving the pre-checkout cart.
	if err := s.carts.Clear(ctx, nil, cart.ID); err != nil {
		s.logger.Error("order created but cart not cleared",
			zap.String("order_id", order.ID.String()), zap.Error(err))
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, customerID.String()); err != nil {
			s.logger.Warn("cart cache invalidation failed",
				zap.String("customer_id", customerID.String()), zap.Error(err))
		}
	}

	// 7. Confirmation notification.
	s.notifier.orderConfirmed(ctx, order)

	s.metrics.CheckoutTotal.WithLabelValues("confirmed").Inc()
	return order, false, nil
}

func buildOrder(customerID, addressID uuid.UUID, cart *domain.Cart, method domain.PaymentMethod, key string) *domain.Order {
	now := time.Now()
	eta := now.AddDate(0, 0, estimatedDeliveryDays)

	order := &domain.Order{
		ID:                uuid.New(),
		CustomerID:        customerID,
		AddressID:         addressID,
		Status:            domain.OrderNew,
		PaymentMethod:     method,
		IdempotencyKey:    key,
		CreatedAt:         now,
		UpdatedAt:         now,
		EstimatedDelivery: &eta,
	}

	total := decimal.Zero
	for _, it := range cart.Items {
		subtotal := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		order.Items = append(order.Items, domain.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Subtotal:    subtotal,
		})
		total = total.Add(subtotal)
	}
	order.Total = total
	return order
}

// dispatchPayment runs the method-specific gateway call and drives the order
// through the state machine. Card and PIX confirm synchronously; boleto
// parks the order in PROCESSING until the bank-side confirmation arrives.
func (s *checkoutService) dispatchPayment(ctx context.Context, order *domain.Order, customer *domain.Customer, sel PaymentSelection) error {
	if err := s.transition(ctx, order, domain.OrderProcessing); err != nil {
		return err
	}

	payCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
	defer cancel()

	var (
		result *payment.Result
		err    error
	)
	switch sel.Method {
	case domain.PaymentPix:
		result, err = s.gateway.ProcessPix(payCtx, order.ID, order.Total)
	case domain.PaymentCard:
		result, err = s.gateway.ProcessCard(payCtx, order.ID, order.Total, sel.CardToken)
	case domain.PaymentBoleto:
		result, err = s.gateway.GenerateBoleto(payCtx, order.ID, order.Total, customer)
	}
	if err != nil {
		return fmt.Errorf("payment gateway: %w", err)
	}

	if !result.Succeeded && result.Status == domain.PaymentFailed {
		s.metrics.PaymentTotal.WithLabelValues(string(sel.Method), "declined").Inc()
		if terr := s.transition(ctx, order, domain.OrderCanceled); terr != nil {
			return terr
		}
		return fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, result.ErrorMessage)
	}

	s.metrics.PaymentTotal.WithLabelValues(string(sel.Method), string(result.Status)).Inc()

	record := paymentRecord(order, sel.Method, result)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := s.payments.Create(ctx, tx, record); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	order.Payment = record

	// Boleto stays PROCESSING; card and PIX resolve immediately.
	if result.Status == domain.PaymentSucceeded {
		return s.transition(ctx, order, domain.OrderPaid)
	}
	return nil
}

func paymentRecord(order *domain.Order, method domain.PaymentMethod, result *payment.Result) *domain.Payment {
	now := time.Now()
	record := &domain.Payment{
		ID:          uuid.New(),
		OrderID:     order.ID,
		Method:      method,
		Status:      result.Status,
		Amount:      order.Total,
		ProviderRef: result.ProviderRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	switch method {
	case domain.PaymentPix:
		record.PixQRCode = result.PixQRCode
	case domain.PaymentCard:
		record.CardBrand = result.CardBrand
		record.CardLastDigits = result.CardLastDigits
	case domain.PaymentBoleto:
		record.BoletoLine = result.BoletoLine
		expires := result.BoletoExpiresAt
		record.BoletoExpiresAt = &expires
	}
	return record
}

func (s *checkoutService) ConfirmBoleto(ctx context.Context, digitalLine string) (*domain.Order, error) {
	pay, err := s.payments.FindByBoletoLine(ctx, digitalLine)
	if err != nil {
		return nil, err
	}
	if pay == nil {
		return nil, fmt.Errorf("%w: boleto", domain.ErrNotFound)
	}

	order, err := s.orders.FindById(ctx, pay.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, pay.OrderID)
	}
	if order.Status != domain.OrderProcessing {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, domain.OrderPaid)
	}

	result, err := s.gateway.ConfirmBoleto(ctx, digitalLine)
	if err != nil {
		return nil, fmt.Errorf("payment gateway: %w", err)
	}
	if !result.Succeeded {
		return nil, fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, result.ErrorMessage)
	}

	now := time.Now()
	if err := order.Transition(domain.OrderPaid, now); err != nil {
		return nil, err
	}
	pay.Status = domain.PaymentSucceeded
	if result.ProviderRef != "" {
		pay.ProviderRef = result.ProviderRef
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	if err := s.payments.UpdateStatus(ctx, tx, pay); err != nil {
		return nil, err
	}
	// Conditional on PROCESSING: two concurrent confirmations of the same
	// slip both pass the read above, but only one lands the update.
	applied, err := s.orders.UpdateStatusFrom(ctx, tx, order, domain.OrderProcessing)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, domain.OrderProcessing, domain.OrderPaid)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	order.Payment = pay

	s.metrics.PaymentTotal.WithLabelValues(string(domain.PaymentBoleto), "confirmed").Inc()
	s.notifier.statusChanged(ctx, order)
	return order, nil
}

// transition persists a status change and emits its notification. The
// write is conditional on the status the order was read at, so a
// concurrent writer moving the order first surfaces as ErrInvalidTransition
// instead of a silent double-apply.
func (s *checkoutService) transition(ctx context.Context, order *domain.Order, to domain.OrderStatus) error {
	from := order.Status
	if err := order.Transition(to, time.Now()); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	applied, err := s.orders.UpdateStatusFrom(ctx, tx, order, from)
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.notifier.statusChanged(ctx, order)
	return nil
}
