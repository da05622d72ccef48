package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"lojinha/internal/domain"
)

var ErrCacheMiss = errors.New("cart not in cache")

// CartCache is a read-through cache for cart views. Writers invalidate; the
// database stays the source of truth.
type CartCache interface {
	Get(ctx context.Context, customerID string) (*domain.Cart, error)
	Set(ctx context.Context, customerID string, cart *domain.Cart) error
	Delete(ctx context.Context, customerID string) error
}

type redisCartCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartCache(addr string, ttl time.Duration) CartCache {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &redisCartCache{client: client, ttl: ttl}
}

func cartKey(customerID string) string {
	return "cart:" + customerID
}

func (c *redisCartCache) Get(ctx context.Context, customerID string) (*domain.Cart, error) {
	data, err := c.client.Get(ctx, cartKey(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *redisCartCache) Set(ctx context.Context, customerID string, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cartKey(customerID), data, c.ttl).Err()
}

func (c *redisCartCache) Delete(ctx context.Context, customerID string) error {
	return c.client.Del(ctx, cartKey(customerID)).Err()
}
