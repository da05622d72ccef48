package notification

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// kafkaGateway publishes lifecycle events to a topic, keyed by order id so
// one order's events stay in partition order.
type kafkaGateway struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaGateway(brokersCSV, topic string, logger *zap.Logger) Gateway {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return &kafkaGateway{writer: writer, logger: logger}
}

func (g *kafkaGateway) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	err = g.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		g.logger.Error("failed to publish lifecycle event",
			zap.String("order_id", event.OrderID), zap.Error(err))
	}
	return err
}
