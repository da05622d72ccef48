package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderNew        OrderStatus = "NEW"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderPaid       OrderStatus = "PAID"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCanceled   OrderStatus = "CANCELED"
)

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCanceled
}

// transitions is the full edge set of the order state machine. Anything not
// listed here is rejected; there is no other mutation path for status.
var transitions = map[OrderStatus][]OrderStatus{
	OrderNew:        {OrderProcessing, OrderCanceled},
	OrderProcessing: {OrderPaid, OrderCanceled},
	OrderPaid:       {OrderShipped},
	OrderShipped:    {OrderDelivered},
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// statusMessages are the customer-facing notification templates keyed by the
// status an order just entered.
var statusMessages = map[OrderStatus]string{
	OrderNew:        "Pedido recebido, aguardando confirmação",
	OrderProcessing: "Pedido em processamento",
	OrderPaid:       "Pagamento confirmado",
	OrderShipped:    "Pedido enviado",
	OrderDelivered:  "Pedido entregue",
	OrderCanceled:   "Pedido cancelado",
}

func StatusMessage(s OrderStatus) string {
	return statusMessages[s]
}

type Order struct {
	ID                uuid.UUID
	Number            string
	CustomerID        uuid.UUID
	AddressID         uuid.UUID
	Status            OrderStatus
	Total             decimal.Decimal
	PaymentMethod     PaymentMethod
	IdempotencyKey    string
	Items             []OrderItem
	// Payment is the gateway outcome for this order, nil until dispatched.
	// The customer needs its artifacts: the boleto digital line to settle
	// the slip, the PIX QR payload to scan.
	Payment           *Payment
	CreatedAt         time.Time
	UpdatedAt         time.Time
	PaidAt            *time.Time
	CanceledAt        *time.Time
	EstimatedDelivery *time.Time
}

// OrderItem is a snapshot of a cart line at confirmation time. Name and unit
// price are copied from the catalog so later catalog edits never change an
// order's history.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Subtotal    decimal.Decimal
}

// Transition moves the order to the target status, recording the paid/canceled
// timestamps exactly once. It is the only way status may change.
func (o *Order) Transition(to OrderStatus, now time.Time) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	o.Status = to
	o.UpdatedAt = now
	switch to {
	case OrderPaid:
		if o.PaidAt == nil {
			t := now
			o.PaidAt = &t
		}
	case OrderCanceled:
		if o.CanceledAt == nil {
			t := now
			o.CanceledAt = &t
		}
	}
	return nil
}
