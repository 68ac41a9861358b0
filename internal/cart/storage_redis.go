package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tiendazo/storefront-backend/pkg/redis"
)

type redisStorage struct {
	client *redis.Client
}

// NewRedisStorage builds cart storage on the shared redis client. Snapshots
// are stored as JSON under the namespaced cart key with no TTL; an emptied
// cart deletes the key.
func NewRedisStorage(client *redis.Client) (Storage, error) {
	if client == nil {
		return nil, errors.New("cart: redis client is required")
	}
	return &redisStorage{client: client}, nil
}

func (s *redisStorage) Load(ctx context.Context, ownerKey string) ([]LineItem, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(ownerKey))
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading cart snapshot: %w", err)
	}
	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decoding cart snapshot: %w", err)
	}
	return items, nil
}

func (s *redisStorage) Save(ctx context.Context, ownerKey string, items []LineItem) error {
	key := s.client.CartKey(ownerKey)
	if len(items) == 0 {
		return s.client.Del(ctx, key)
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding cart snapshot: %w", err)
	}
	return s.client.Set(ctx, key, string(raw), 0)
}
