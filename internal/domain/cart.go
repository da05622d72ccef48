package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps a single cart line. Adds beyond it clamp, they do not
// error.
const MaxLineQuantity = 999

func ClampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	if q > MaxLineQuantity {
		return MaxLineQuantity
	}
	return q
}

// Cart is a customer's live working set. Valuation always runs against
// current catalog prices; nothing here is snapshotted.
type Cart struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Items      []CartItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CartItem joins the stored line with the product's current name and price.
type CartItem struct {
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	AddedAt     time.Time
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func (c *Cart) ItemCount() int {
	count := 0
	for _, it := range c.Items {
		count += it.Quantity
	}
	return count
}

func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}
