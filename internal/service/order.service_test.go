package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lojinha/internal/domain"
	"lojinha/internal/infrastructure/notification"
)

func newOrderServiceFixture() (OrderService, *mockOrderRepo, *mockNotificationRepo) {
	orders := newMockOrderRepo()
	notified := &mockNotificationRepo{}
	svc := NewOrderService(testDB(), orders, notified, notification.NewLogGateway(zap.NewNop()), zap.NewNop())
	return svc, orders, notified
}

func seedOrder(t *testing.T, orders *mockOrderRepo, customerID uuid.UUID, status domain.OrderStatus) *domain.Order {
	t.Helper()
	order := &domain.Order{
		ID:             uuid.New(),
		CustomerID:     customerID,
		AddressID:      uuid.New(),
		Status:         status,
		Total:          decimal.RequireFromString("100.00"),
		IdempotencyKey: uuid.NewString(),
		CreatedAt:      time.Now(),
	}
	require.NoError(t, orders.Create(context.Background(), nil, order))
	return order
}

func TestOrderGet_NotFound(t *testing.T) {
	svc, _, _ := newOrderServiceFixture()
	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdvanceStatus_ShippedThenDelivered(t *testing.T) {
	svc, orders, notified := newOrderServiceFixture()
	order := seedOrder(t, orders, uuid.New(), domain.OrderPaid)

	shipped, err := svc.AdvanceStatus(context.Background(), order.ID, domain.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderShipped, shipped.Status)

	delivered, err := svc.AdvanceStatus(context.Background(), order.ID, domain.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDelivered, delivered.Status)

	assert.Equal(t, 2, notified.count())
}

func TestAdvanceStatus_RejectsNonFulfillmentTargets(t *testing.T) {
	svc, orders, _ := newOrderServiceFixture()
	order := seedOrder(t, orders, uuid.New(), domain.OrderNew)

	for _, to := range []domain.OrderStatus{domain.OrderNew, domain.OrderProcessing, domain.OrderPaid, domain.OrderCanceled} {
		_, err := svc.AdvanceStatus(context.Background(), order.ID, to)
		assert.ErrorIs(t, err, domain.ErrValidation, "target %s", to)
	}
}

func TestAdvanceStatus_IllegalEdge(t *testing.T) {
	svc, orders, _ := newOrderServiceFixture()
	order := seedOrder(t, orders, uuid.New(), domain.OrderNew)

	// NEW cannot ship; it must pass through PROCESSING and PAID first.
	_, err := svc.AdvanceStatus(context.Background(), order.ID, domain.OrderShipped)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancel_OwnerFromNew(t *testing.T) {
	svc, orders, notified := newOrderServiceFixture()
	customerID := uuid.New()
	order := seedOrder(t, orders, customerID, domain.OrderNew)

	canceled, err := svc.Cancel(context.Background(), order.ID, customerID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCanceled, canceled.Status)
	assert.NotNil(t, canceled.CanceledAt)
	assert.Equal(t, 1, notified.count())
}

func TestCancel_NonOwnerForbidden(t *testing.T) {
	svc, orders, _ := newOrderServiceFixture()
	order := seedOrder(t, orders, uuid.New(), domain.OrderNew)

	_, err := svc.Cancel(context.Background(), order.ID, uuid.New(), false)
	assert.ErrorIs(t, err, domain.ErrOwnership)
}

func TestCancel_OperatorBypassesOwnership(t *testing.T) {
	svc, orders, _ := newOrderServiceFixture()
	order := seedOrder(t, orders, uuid.New(), domain.OrderProcessing)

	canceled, err := svc.Cancel(context.Background(), order.ID, uuid.Nil, true)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCanceled, canceled.Status)
}

func TestCancel_PaidOrderIsIllegal(t *testing.T) {
	svc, orders, _ := newOrderServiceFixture()
	customerID := uuid.New()
	order := seedOrder(t, orders, customerID, domain.OrderPaid)

	_, err := svc.Cancel(context.Background(), order.ID, customerID, false)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
