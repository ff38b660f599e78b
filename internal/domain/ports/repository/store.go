package repository

import "context"

// KeyedStore is the State Store contract: durable per-namespace key/value persistence.
// Values are JSON encoded by the adapters.
type KeyedStore interface {
	// Get decodes the value for (namespace, key) into dst. It returns
	// domain.ErrNotFound when no value exists.
	Get(ctx context.Context, namespace, key string, dst any) error
	Set(ctx context.Context, namespace, key string, value any) error
	// Del removes the value and reports how many records were deleted.
	Del(ctx context.Context, namespace, key string) (int64, error)
	Close() error
}
