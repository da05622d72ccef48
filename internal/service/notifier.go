package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lojinha/internal/domain"
	"lojinha/internal/infrastructure/notification"
	"lojinha/internal/repo"
)

// notifier records a lifecycle notification and hands the event to the
// downstream gateway. Delivery problems are logged, never propagated: a
// paid order must not fail because a broker hiccuped.
type notifier struct {
	notifications repo.NotificationRepo
	gateway       notification.Gateway
	logger        *zap.Logger
}

func (n *notifier) statusChanged(ctx context.Context, order *domain.Order) {
	n.emit(ctx, order, domain.StatusMessage(order.Status))
}

func (n *notifier) orderConfirmed(ctx context.Context, order *domain.Order) {
	n.emit(ctx, order, fmt.Sprintf("Pedido %s confirmado", order.Number))
}

func (n *notifier) emit(ctx context.Context, order *domain.Order, message string) {
	orderID := order.ID
	record := &domain.Notification{
		ID:         uuid.New(),
		CustomerID: order.CustomerID,
		OrderID:    &orderID,
		Status:     order.Status,
		Message:    message,
		CreatedAt:  time.Now(),
	}
	if err := n.notifications.Create(ctx, record); err != nil {
		n.logger.Error("failed to record notification",
			zap.String("order_id", order.ID.String()), zap.Error(err))
	}

	event := notification.Event{
		OrderID:    order.ID.String(),
		Number:     order.Number,
		CustomerID: order.CustomerID.String(),
		Status:     order.Status.String(),
		Message:    message,
		Total:      order.Total.StringFixed(2),
	}
	if err := n.gateway.Publish(ctx, event); err != nil {
		n.logger.Error("failed to publish notification",
			zap.String("order_id", order.ID.String()), zap.Error(err))
	}
}
