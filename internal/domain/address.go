package domain

import (
	"time"

	"github.com/google/uuid"
)

type Address struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Street     string
	City       string
	State      string
	Zip        string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AddressPatch carries a partial update. Nil means "leave unchanged", so
// presence is explicit instead of inferred from a loosely typed map.
type AddressPatch struct {
	Street *string
	City   *string
	State  *string
	Zip    *string
}

func (p AddressPatch) Empty() bool {
	return p.Street == nil && p.City == nil && p.State == nil && p.Zip == nil
}

func (p AddressPatch) Apply(a *Address, now time.Time) {
	if p.Street != nil {
		a.Street = *p.Street
	}
	if p.City != nil {
		a.City = *p.City
	}
	if p.State != nil {
		a.State = *p.State
	}
	if p.Zip != nil {
		a.Zip = *p.Zip
	}
	a.UpdatedAt = now
}
