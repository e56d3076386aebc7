package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uwearuk/storefront/internal/cart"
)

const cartTTL = 30 * 24 * time.Hour

// Store keeps active carts in redis, one JSON document per user.
type Store struct {
	client *redis.Client
}

// NewStore constructs a redis-backed cart store.
func NewStore(addr string) *Store {
	return &Store{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// NewStoreWithClient wraps an existing client, used by tests.
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, userID string) ([]cart.Item, error) {
	value, err := s.client.Get(ctx, key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, cart.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	var items []cart.Item
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}

	return items, nil
}

func (s *Store) Set(ctx context.Context, userID string, items []cart.Item) error {
	value, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	if err := s.client.Set(ctx, key(userID), value, cartTTL).Err(); err != nil {
		return fmt.Errorf("set cart: %w", err)
	}

	return nil
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func key(userID string) string {
	return fmt.Sprintf("storefront:cart:%s", userID)
}
