package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lojinha/internal/cache"
	"lojinha/internal/domain"
	"lojinha/internal/repo"
)

type CartService interface {
	GetOrCreate(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error)
	AddItem(ctx context.Context, customerID, productID uuid.UUID, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*domain.Cart, error)
	Clear(ctx context.Context, customerID uuid.UUID) error
	Total(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
	ItemCount(ctx context.Context, customerID uuid.UUID) (int, error)
}

type cartService struct {
	carts    repo.CartRepo
	products repo.ProductRepo
	cache    cache.CartCache // nil when REDIS_ADDR is unset
	logger   *zap.Logger
}

func NewCartService(carts repo.CartRepo, products repo.ProductRepo, cartCache cache.CartCache, logger *zap.Logger) CartService {
	return &cartService{carts: carts, products: products, cache: cartCache, logger: logger}
}

func (s *cartService) GetOrCreate(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, customerID.String())
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cart cache get failed", zap.Error(err))
		}
	}

	cart, err := s.carts.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, err
	}

	// The set is synchronous: a background fill could race a writer's
	// invalidation and re-persist the view it just deleted.
	if s.cache != nil {
		if err := s.cache.Set(ctx, customerID.String(), cart); err != nil {
			s.logger.Warn("cart cache set failed", zap.Error(err))
		}
	}
	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, customerID, productID uuid.UUID, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	product, err := s.products.FindById(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: unknown product %s", domain.ErrValidation, productID)
	}

	cart, err := s.carts.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.UpsertItem(ctx, cart.ID, productID, domain.ClampQuantity(quantity)); err != nil {
		return nil, err
	}

	s.invalidate(customerID)
	return s.carts.GetOrCreate(ctx, customerID)
}

func (s *cartService) RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*domain.Cart, error) {
	cart, err := s.carts.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.RemoveItem(ctx, cart.ID, productID); err != nil {
		return nil, err
	}

	s.invalidate(customerID)
	return s.carts.GetOrCreate(ctx, customerID)
}

func (s *cartService) Clear(ctx context.Context, customerID uuid.UUID) error {
	cart, err := s.carts.GetOrCreate(ctx, customerID)
	if err != nil {
		return err
	}
	if err := s.carts.Clear(ctx, nil, cart.ID); err != nil {
		return err
	}
	s.invalidate(customerID)
	return nil
}

func (s *cartService) Total(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	cart, err := s.GetOrCreate(ctx, customerID)
	if err != nil {
		return decimal.Zero, err
	}
	return cart.Total(), nil
}

func (s *cartService) ItemCount(ctx context.Context, customerID uuid.UUID) (int, error) {
	cart, err := s.GetOrCreate(ctx, customerID)
	if err != nil {
		return 0, err
	}
	return cart.ItemCount(), nil
}

func (s *cartService) invalidate(customerID uuid.UUID) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, customerID.String()); err != nil {
		s.logger.Warn("cart cache invalidation failed", zap.Error(err))
	}
}
