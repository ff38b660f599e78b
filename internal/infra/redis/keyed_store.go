package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"telegram-pinmsg-bot/internal/domain"
	"telegram-pinmsg-bot/internal/domain/ports/repository"
	"telegram-pinmsg-bot/internal/infra/metrics"
)

var _ repository.KeyedStore = (*KeyedStore)(nil)

// KeyedStore keeps JSON values under "<namespace>:<key>" without expiry.
type KeyedStore struct {
	client *Client
}

func NewKeyedStore(client *Client) *KeyedStore {
	return &KeyedStore{client: client}
}

func storeKey(namespace, key string) string {
	return "kv:" + namespace + ":" + key
}

func (s *KeyedStore) Get(ctx context.Context, namespace, key string, dst any) error {
	data, err := s.client.Get(ctx, storeKey(namespace, key))
	if IsNil(err) {
		metrics.IncStoreOp("redis", "get", "miss")
		return domain.ErrNotFound
	}
	if err != nil {
		metrics.IncStoreOp("redis", "get", "error")
		return fmt.Errorf("%w: redis get %s/%s: %v", domain.ErrStorage, namespace, key, err)
	}
	metrics.IncStoreOp("redis", "get", "hit")
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		return fmt.Errorf("%w: decode %s/%s: %v", domain.ErrStorage, namespace, key, err)
	}
	return nil
}

func (s *KeyedStore) Set(ctx context.Context, namespace, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", namespace, key, err)
	}
	if err := s.client.Set(ctx, storeKey(namespace, key), data, 0); err != nil {
		metrics.IncStoreOp("redis", "set", "error")
		return fmt.Errorf("%w: redis set %s/%s: %v", domain.ErrStorage, namespace, key, err)
	}
	metrics.IncStoreOp("redis", "set", "ok")
	return nil
}

func (s *KeyedStore) Del(ctx context.Context, namespace, key string) (int64, error) {
	n, err := s.client.Del(ctx, storeKey(namespace, key))
	if err != nil {
		metrics.IncStoreOp("redis", "del", "error")
		return 0, fmt.Errorf("%w: redis del %s/%s: %v", domain.ErrStorage, namespace, key, err)
	}
	metrics.IncStoreOp("redis", "del", "ok")
	return n, nil
}

func (s *KeyedStore) Close() error { return s.client.Close() }
