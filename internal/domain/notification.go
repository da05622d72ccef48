package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an append-only lifecycle record. Rows are never mutated,
// only created and eventually purged by age.
type Notification struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	OrderID    *uuid.UUID
	Status     OrderStatus
	Message    string
	CreatedAt  time.Time
}
