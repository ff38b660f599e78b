//go:build !integration

package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"telegram-pinmsg-bot/internal/domain/ports/repository"
)

// fakeClient is an in-memory RedisClient for counter semantics only.
type fakeClient struct {
	counts  map[string]int64
	expires map[string]time.Duration
	incrErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }
func (f *fakeClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}
func (f *fakeClient) Get(ctx context.Context, key string) (string, error) { return "", nil }
func (f *fakeClient) Incr(ctx context.Context, key string) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.counts[key]++
	return f.counts[key], nil
}
func (f *fakeClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	f.expires[key] = expiration
	return nil
}
func (f *fakeClient) Del(ctx context.Context, keys ...string) (int64, error) { return 0, nil }
func (f *fakeClient) Close() error                                           { return nil }

func TestRateLimiterAllow(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	rl := NewRateLimiter(fc)
	key := repository.UserCommandKey(42, 7, "pin")

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, key, 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("call %d: expected allowed, got ok=%v err=%v", i+1, ok, err)
		}
	}
	ok, err := rl.Allow(ctx, key, 3, time.Minute)
	if err != nil || ok {
		t.Fatalf("4th call: expected limited, got ok=%v err=%v", ok, err)
	}
	if fc.expires[key] != time.Minute {
		t.Fatalf("window should be set on first hit, got %s", fc.expires[key])
	}
}

func TestRateLimiterPropagatesError(t *testing.T) {
	fc := newFakeClient()
	fc.incrErr = errors.New("down")
	if _, err := NewRateLimiter(fc).Allow(context.Background(), "k", 1, time.Second); err == nil {
		t.Fatalf("expected error")
	}
}

func TestKeys(t *testing.T) {
	if got := repository.UserCommandKey(-100, 5, "unpin"); got != "rate_limit:-100:5:unpin" {
		t.Errorf("UserCommandKey: %q", got)
	}
	if got := storeKey("pin", "-100"); got != "kv:pin:-100" {
		t.Errorf("storeKey: %q", got)
	}
	repo := NewPromptStateRepo(nil, 0)
	if got := repo.stateKey(42, 7); got != "prompt_state:42:7" {
		t.Errorf("stateKey: %q", got)
	}
	if repo.ttl != 15*time.Minute {
		t.Errorf("default ttl: %s", repo.ttl)
	}
}
