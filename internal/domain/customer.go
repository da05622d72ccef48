package domain

import (
	"time"

	"github.com/google/uuid"
)

// Principal is a login identity from the auth system. Only its email matters
// here; token issuance and verification live upstream.
type Principal struct {
	ID    string
	Email string
}

type Customer struct {
	ID        uuid.UUID
	Email     string
	Name      string
	CreatedAt time.Time
}
