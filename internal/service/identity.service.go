package service

import (
	"context"
	"fmt"
	"strings"

	"lojinha/internal/domain"
	"lojinha/internal/repo"
)

// IdentityService maps an authenticated principal to its canonical customer
// record, creating one on first use.
type IdentityService interface {
	Resolve(ctx context.Context, principalID string) (*domain.Customer, error)
}

type identityService struct {
	principals repo.PrincipalRepo
	customers  repo.CustomerRepo
}

func NewIdentityService(principals repo.PrincipalRepo, customers repo.CustomerRepo) IdentityService {
	return &identityService{principals: principals, customers: customers}
}

// Resolve always yields the same customer id for the same principal: the
// customer is keyed by the principal's email behind a uniqueness constraint,
// so concurrent first-time resolutions collapse to one row.
func (s *identityService) Resolve(ctx context.Context, principalID string) (*domain.Customer, error) {
	principal, err := s.principals.FindById(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		return nil, fmt.Errorf("%w: principal %s", domain.ErrNotFound, principalID)
	}
	return s.customers.FindOrCreateByEmail(ctx, principal.Email, defaultName(principal.Email))
}

// defaultName derives a display name from the email's local part.
func defaultName(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
