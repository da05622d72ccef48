package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClampQuantity(t *testing.T) {
	assert.Equal(t, 1, ClampQuantity(0))
	assert.Equal(t, 1, ClampQuantity(-5))
	assert.Equal(t, 7, ClampQuantity(7))
	assert.Equal(t, MaxLineQuantity, ClampQuantity(MaxLineQuantity))
	assert.Equal(t, MaxLineQuantity, ClampQuantity(MaxLineQuantity+1))
}

func TestCartTotal_ExactDecimal(t *testing.T) {
	cart := &Cart{Items: []CartItem{
		{UnitPrice: decimal.RequireFromString("899.99"), Quantity: 2},
		{UnitPrice: decimal.RequireFromString("0.01"), Quantity: 3},
	}}
	assert.True(t, cart.Total().Equal(decimal.RequireFromString("1800.01")), "total was %s", cart.Total())
	assert.Equal(t, 5, cart.ItemCount())
	assert.False(t, cart.Empty())
}

func TestCartEmpty(t *testing.T) {
	assert.True(t, (&Cart{}).Empty())
	assert.True(t, decimal.Zero.Equal((&Cart{}).Total()))
}
