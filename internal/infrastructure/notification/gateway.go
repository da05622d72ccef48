package notification

import (
	"context"

	"go.uber.org/zap"
)

// Event is an order-lifecycle occurrence handed to downstream delivery.
type Event struct {
	OrderID    string `json:"order_id"`
	Number     string `json:"order_number"`
	CustomerID string `json:"customer_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	Total      string `json:"total"`
}

// Gateway receives lifecycle events. The wire mechanics of SMS/e-mail/webhook
// delivery live behind whatever consumes these events; this service only
// hands them off.
type Gateway interface {
	Publish(ctx context.Context, event Event) error
}

// logGateway is the fallback when no broker is configured: events land in the
// structured log and nowhere else.
type logGateway struct {
	logger *zap.Logger
}

func NewLogGateway(logger *zap.Logger) Gateway {
	return &logGateway{logger: logger}
}

func (g *logGateway) Publish(ctx context.Context, event Event) error {
	g.logger.Info("order lifecycle event",
		zap.String("order_id", event.OrderID),
		zap.String("order_number", event.Number),
		zap.String("customer_id", event.CustomerID),
		zap.String("status", event.Status),
		zap.String("message", event.Message),
	)
	return nil
}
