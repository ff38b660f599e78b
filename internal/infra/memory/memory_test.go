//go:build !integration

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"telegram-pinmsg-bot/internal/domain"
	"telegram-pinmsg-bot/internal/domain/model"
)

func TestKeyedStore(t *testing.T) {
	ctx := context.Background()
	s := NewKeyedStore()

	var rec model.PinRecord
	if err := s.Get(ctx, "pin", "42", &rec); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set(ctx, "pin", "42", model.PinRecord{MessageID: 10}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "pin", "42", model.PinRecord{MessageID: 11}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Get(ctx, "pin", "42", &rec); err != nil || rec.MessageID != 11 {
		t.Fatalf("Get: rec=%+v err=%v", rec, err)
	}
	if s.Len("pin") != 1 {
		t.Fatalf("overwrite should keep one record, got %d", s.Len("pin"))
	}

	n, err := s.Del(ctx, "pin", "42")
	if err != nil || n != 1 {
		t.Fatalf("Del: n=%d err=%v", n, err)
	}
	n, err = s.Del(ctx, "pin", "42")
	if err != nil || n != 0 {
		t.Fatalf("second Del: n=%d err=%v", n, err)
	}
}

func TestPromptStateRepo(t *testing.T) {
	ctx := context.Background()
	r := NewPromptStateRepo()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	st := &model.PromptState{ChatID: 42, UserID: 7, Kind: "pin", Data: model.PromptData{MessageID: 3}, ExpiresAt: now.Add(time.Minute)}
	if err := r.Save(ctx, st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if got, _ := r.Take(ctx, 42, 8); got != nil {
		t.Fatalf("other user must not see the prompt")
	}
	got, err := r.Take(ctx, 42, 7)
	if err != nil || got == nil || got.Data.MessageID != 3 {
		t.Fatalf("Take: got=%+v err=%v", got, err)
	}
	if again, _ := r.Take(ctx, 42, 7); again != nil {
		t.Fatalf("prompt must be consumed exactly once")
	}

	_ = r.Save(ctx, st)
	now = now.Add(2 * time.Minute)
	expired, _ := r.PurgeExpired(ctx)
	if len(expired) != 1 {
		t.Fatalf("expected 1 expired prompt, got %d", len(expired))
	}
	if got, _ := r.Take(ctx, 42, 7); got != nil {
		t.Fatalf("purged prompt must be gone")
	}
}
