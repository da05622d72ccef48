package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lojinha/internal/domain"
	"lojinha/internal/repo"
)

type AddressService interface {
	Create(ctx context.Context, customerID uuid.UUID, street, city, state, zip string) (*domain.Address, error)
	List(ctx context.Context, customerID uuid.UUID) ([]domain.Address, error)
	// Patch applies a partial update; nil fields stay untouched. The address
	// must belong to the calling customer.
	Patch(ctx context.Context, customerID, addressID uuid.UUID, patch domain.AddressPatch) (*domain.Address, error)
}

type addressService struct {
	addresses repo.AddressRepo
}

func NewAddressService(addresses repo.AddressRepo) AddressService {
	return &addressService{addresses: addresses}
}

func (s *addressService) Create(ctx context.Context, customerID uuid.UUID, street, city, state, zip string) (*domain.Address, error) {
	if street == "" || city == "" || state == "" || zip == "" {
		return nil, fmt.Errorf("%w: street, city, state and zip are required", domain.ErrValidation)
	}
	now := time.Now()
	address := &domain.Address{
		ID:         uuid.New(),
		CustomerID: customerID,
		Street:     street,
		City:       city,
		State:      state,
		Zip:        zip,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.addresses.Create(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *addressService) List(ctx context.Context, customerID uuid.UUID) ([]domain.Address, error) {
	return s.addresses.ListByCustomer(ctx, customerID)
}

func (s *addressService) Patch(ctx context.Context, customerID, addressID uuid.UUID, patch domain.AddressPatch) (*domain.Address, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}

	address, err := s.addresses.FindById(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, fmt.Errorf("%w: address %s", domain.ErrNotFound, addressID)
	}
	if address.CustomerID != customerID {
		return nil, fmt.Errorf("%w: address %s", domain.ErrOwnership, addressID)
	}

	patch.Apply(address, time.Now())
	if err := s.addresses.Update(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}
