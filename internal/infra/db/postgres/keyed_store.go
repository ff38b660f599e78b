package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-pinmsg-bot/internal/domain"
	"telegram-pinmsg-bot/internal/domain/ports/repository"
	"telegram-pinmsg-bot/internal/infra/metrics"
)

var _ repository.KeyedStore = (*KeyedStore)(nil)

// executor is the subset of *pgxpool.Pool the store needs.
type executor interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

// KeyedStore persists namespaced JSON documents in the kv_store table.
type KeyedStore struct {
	db    executor
	close func()
}

func NewKeyedStore(pool *pgxpool.Pool) *KeyedStore {
	return &KeyedStore{db: pool, close: pool.Close}
}

const schema = `
CREATE TABLE IF NOT EXISTS kv_store (
  namespace  TEXT        NOT NULL,
  key        TEXT        NOT NULL,
  value      JSONB       NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  PRIMARY KEY (namespace, key)
);`

// EnsureSchema creates the kv_store table when missing.
func (s *KeyedStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%w: ensure schema: %v", domain.ErrStorage, err)
	}
	return nil
}

func (s *KeyedStore) Get(ctx context.Context, namespace, key string, dst any) error {
	const q = `SELECT value FROM kv_store WHERE namespace=$1 AND key=$2;`
	var raw []byte
	if err := s.db.QueryRow(ctx, q, namespace, key).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.IncStoreOp("postgres", "get", "miss")
			return domain.ErrNotFound
		}
		metrics.IncStoreOp("postgres", "get", "error")
		return fmt.Errorf("%w: select %s/%s: %v", domain.ErrStorage, namespace, key, err)
	}
	metrics.IncStoreOp("postgres", "get", "hit")
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: decode %s/%s: %v", domain.ErrStorage, namespace, key, err)
	}
	return nil
}

func (s *KeyedStore) Set(ctx context.Context, namespace, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", namespace, key, err)
	}
	const q = `
INSERT INTO kv_store (namespace, key, value, updated_at)
VALUES ($1,$2,$3,NOW())
ON CONFLICT (namespace, key) DO UPDATE SET
  value = EXCLUDED.value,
  updated_at = EXCLUDED.updated_at;`
	if _, err := s.db.Exec(ctx, q, namespace, key, raw); err != nil {
		metrics.IncStoreOp("postgres", "set", "error")
		return fmt.Errorf("%w: upsert %s/%s: %v", domain.ErrStorage, namespace, key, err)
	}
	metrics.IncStoreOp("postgres", "set", "ok")
	return nil
}

func (s *KeyedStore) Del(ctx context.Context, namespace, key string) (int64, error) {
	const q = `DELETE FROM kv_store WHERE namespace=$1 AND key=$2;`
	tag, err := s.db.Exec(ctx, q, namespace, key)
	if err != nil {
		metrics.IncStoreOp("postgres", "del", "error")
		return 0, fmt.Errorf("%w: delete %s/%s: %v", domain.ErrStorage, namespace, key, err)
	}
	metrics.IncStoreOp("postgres", "del", "ok")
	return tag.RowsAffected(), nil
}

func (s *KeyedStore) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}
