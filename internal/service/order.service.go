package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lojinha/internal/domain"
	"lojinha/internal/infrastructure/notification"
	"lojinha/internal/repo"
)

type OrderService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error)
	// AdvanceStatus is the operator-only fulfillment path, restricted to
	// SHIPPED and DELIVERED.
	AdvanceStatus(ctx context.Context, orderID uuid.UUID, to domain.OrderStatus) (*domain.Order, error)
	// Cancel is legal from NEW and PROCESSING only. A non-operator caller
	// must own the order.
	Cancel(ctx context.Context, orderID, customerID uuid.UUID, operator bool) (*domain.Order, error)
}

type orderService struct {
	db       *sql.DB
	orders   repo.OrderRepo
	notifier *notifier
}

func NewOrderService(
	db *sql.DB,
	orders repo.OrderRepo,
	notifications repo.NotificationRepo,
	gateway notification.Gateway,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		db:       db,
		orders:   orders,
		notifier: &notifier{notifications: notifications, gateway: gateway, logger: logger},
	}
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	return order, nil
}

func (s *orderService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error) {
	return s.orders.ListByCustomer(ctx, customerID)
}

func (s *orderService) AdvanceStatus(ctx context.Context, orderID uuid.UUID, to domain.OrderStatus) (*domain.Order, error) {
	if to != domain.OrderShipped && to != domain.OrderDelivered {
		return nil, fmt.Errorf("%w: operators may only advance to %s or %s",
			domain.ErrValidation, domain.OrderShipped, domain.OrderDelivered)
	}

	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.applyTransition(ctx, order, to); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) Cancel(ctx context.Context, orderID, customerID uuid.UUID, operator bool) (*domain.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !operator && order.CustomerID != customerID {
		return nil, fmt.Errorf("%w: order %s", domain.ErrOwnership, orderID)
	}
	if err := s.applyTransition(ctx, order, domain.OrderCanceled); err != nil {
		return nil, err
	}
	return order, nil
}

// applyTransition validates the edge, persists the status change and emits
// the lifecycle notification. The write is conditional on the status the
// order was read at, so concurrent transitions cannot double-apply.
func (s *orderService) applyTransition(ctx context.Context, order *domain.Order, to domain.OrderStatus) error {
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
