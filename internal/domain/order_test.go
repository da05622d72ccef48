package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []OrderStatus{
	OrderNew, OrderProcessing, OrderPaid, OrderShipped, OrderDelivered, OrderCanceled,
}

func TestCanTransition_FullEdgeSet(t *testing.T) {
	legal := map[OrderStatus]map[OrderStatus]bool{
		OrderNew:        {OrderProcessing: true, OrderCanceled: true},
		OrderProcessing: {OrderPaid: true, OrderCanceled: true},
		OrderPaid:       {OrderShipped: true},
		OrderShipped:    {OrderDelivered: true},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := legal[from][to]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTransition_IllegalEdge(t *testing.T) {
	order := &Order{Status: OrderPaid}
	err := order.Transition(OrderCanceled, time.Now())
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, OrderPaid, order.Status, "a rejected transition must not mutate the order")
	assert.Nil(t, order.CanceledAt)
}

func TestTransition_TerminalStatesHaveNoExit(t *testing.T) {
	for _, from := range []OrderStatus{OrderDelivered, OrderCanceled} {
		assert.True(t, from.IsTerminal())
		for _, to := range allStatuses {
			order := &Order{Status: from}
			assert.ErrorIs(t, order.Transition(to, time.Now()), ErrInvalidTransition, "%s -> %s", from, to)
		}
	}
}

func TestTransition_SetsPaidAtOnce(t *testing.T) {
	order := &Order{Status: OrderProcessing}
	paidAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, order.Transition(OrderPaid, paidAt))
	require.NotNil(t, order.PaidAt)
	assert.True(t, order.PaidAt.Equal(paidAt))
	assert.True(t, order.UpdatedAt.Equal(paidAt))
}

func TestTransition_SetsCanceledAt(t *testing.T) {
	order := &Order{Status: OrderNew}
	require.NoError(t, order.Transition(OrderCanceled, time.Now()))
	assert.NotNil(t, order.CanceledAt)
	assert.Nil(t, order.PaidAt)
}

func TestStatusMessage_CoversAllStatuses(t *testing.T) {
	for _, s := range allStatuses {
		assert.NotEmpty(t, StatusMessage(s), "status %s", s)
	}
}
