package memory

import (
	"context"
	"encoding/json"
	"sync"

	"telegram-pinmsg-bot/internal/domain"
	"telegram-pinmsg-bot/internal/domain/ports/repository"
	"telegram-pinmsg-bot/internal/infra/metrics"
)

var _ repository.KeyedStore = (*KeyedStore)(nil)

// KeyedStore is a process-local KeyedStore. Values are stored JSON encoded so
// callers observe the same copy semantics as the network stores.
type KeyedStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func NewKeyedStore() *KeyedStore {
	return &KeyedStore{data: make(map[string]map[string][]byte)}
}

func (s *KeyedStore) Get(ctx context.Context, namespace, key string, dst any) error {
	s.mu.RLock()
	raw, ok := s.data[namespace][key]
	s.mu.RUnlock()
	if !ok {
		metrics.IncStoreOp("memory", "get", "miss")
		return domain.ErrNotFound
	}
	metrics.IncStoreOp("memory", "get", "hit")
	return json.Unmarshal(raw, dst)
}

func (s *KeyedStore) Set(ctx context.Context, namespace, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.data[namespace]
	if !ok {
		ns = make(map[string][]byte)
		s.data[namespace] = ns
	}
	ns[key] = raw
	metrics.IncStoreOp("memory", "set", "ok")
	return nil
}

func (s *KeyedStore) Del(ctx context.Context, namespace, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[namespace][key]; !ok {
		return 0, nil
	}
	delete(s.data[namespace], key)
	metrics.IncStoreOp("memory", "del", "ok")
	return 1, nil
}

// Len returns the number of keys held in namespace.
func (s *KeyedStore) Len(namespace string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[namespace])
}

func (s *KeyedStore) Close() error { return nil }
