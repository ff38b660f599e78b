//go:build !integration

package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"telegram-pinmsg-bot/internal/domain"
	"telegram-pinmsg-bot/internal/domain/model"
	"telegram-pinmsg-bot/internal/infra/memory"
)

func newTestPrompter(ttl time.Duration) (*Prompter, *Dispatcher, *recordingSender, *memory.PromptStateRepo) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, newTestLogger())
	repo := memory.NewPromptStateRepo()
	return NewPrompter(repo, d, ttl, newTestLogger()), d, sender, repo
}

func TestPrompterEmitsRequestAndCompletes(t *testing.T) {
	ctx := context.Background()
	p, d, _, _ := newTestPrompter(0)

	var requested *model.PromptState
	d.On(PromptRequestEvent("pin"), func(ctx context.Context, ev *Event) (Result, error) {
		requested = ev.Prompt
		return Next(), nil
	})
	var completions []*Event
	d.On(PromptCompleteEvent("pin"), func(ctx context.Context, ev *Event) (Result, error) {
		completions = append(completions, ev)
		return Next(), nil
	})

	pending, err := p.Prompt(ctx, 42, 7, "pin", model.PromptData{MessageID: 3})
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	if requested == nil || requested.Data.MessageID != 3 || requested.ChatID != 42 {
		t.Fatalf("prompt.request not emitted with data: %+v", requested)
	}

	// another user's message passes through
	if consumed, _ := p.Intercept(ctx, textMessage(4, groupChat, bob, "hi")); consumed {
		t.Fatalf("message from another user must not complete the prompt")
	}

	reply := textMessage(5, groupChat, alice, "Meeting at 5pm")
	consumed, err := p.Intercept(ctx, reply)
	if err != nil || !consumed {
		t.Fatalf("expected completion, got consumed=%v err=%v", consumed, err)
	}
	if len(completions) != 1 || completions[0].Prompt.Data.MessageID != 3 || completions[0].Message != reply {
		t.Fatalf("unexpected completions %+v", completions)
	}

	got, err := pending.Wait(ctx)
	if err != nil || got != reply {
		t.Fatalf("future: got %v err=%v", got, err)
	}

	// delivered at most once
	if consumed, _ := p.Intercept(ctx, textMessage(6, groupChat, alice, "again")); consumed {
		t.Fatalf("prompt completed twice")
	}
	if p.Outstanding() != 0 {
		t.Fatalf("expected no outstanding prompts, got %d", p.Outstanding())
	}
}

func TestPrompterLastWriteWins(t *testing.T) {
	ctx := context.Background()
	p, d, _, _ := newTestPrompter(0)
	var completed []int
	d.On(PromptCompleteEvent("pin"), func(ctx context.Context, ev *Event) (Result, error) {
		completed = append(completed, ev.Prompt.Data.MessageID)
		return Next(), nil
	})

	first, err := p.Prompt(ctx, 42, 7, "pin", model.PromptData{MessageID: 1})
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	second, err := p.Prompt(ctx, 42, 7, "pin", model.PromptData{MessageID: 2})
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}

	if _, err := first.Wait(ctx); !errors.Is(err, domain.ErrDuplicatePrompt) {
		t.Fatalf("superseded prompt should resolve with ErrDuplicatePrompt, got %v", err)
	}
	if _, err := p.Intercept(ctx, textMessage(9, groupChat, alice, "text")); err != nil {
		t.Fatalf("Intercept: %v", err)
	}
	if len(completed) != 1 || completed[0] != 2 {
		t.Fatalf("only the newest prompt completes, got %v", completed)
	}
	if msg, err := second.Wait(ctx); err != nil || msg.MessageID != 9 {
		t.Fatalf("second future: %v %v", msg, err)
	}
}

func TestPrompterUnknownKindIsSilent(t *testing.T) {
	ctx := context.Background()
	p, _, sender, _ := newTestPrompter(0)

	pending, err := p.Prompt(ctx, 42, 7, "mystery", model.PromptData{})
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	consumed, err := p.Intercept(ctx, textMessage(2, groupChat, alice, "answer"))
	if err != nil || !consumed {
		t.Fatalf("expected silent consumption, got consumed=%v err=%v", consumed, err)
	}
	if len(sender.all()) != 0 {
		t.Fatalf("unknown kind must not produce output")
	}
	select {
	case <-pending.Done():
	default:
		t.Fatalf("future should resolve")
	}
}

func TestPrompterCancel(t *testing.T) {
	ctx := context.Background()
	p, _, _, _ := newTestPrompter(0)
	pending, _ := p.Prompt(ctx, 42, 7, "pin", model.PromptData{})

	if err := p.Cancel(ctx, 42, 7); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := pending.Wait(ctx); !errors.Is(err, domain.ErrPromptCancelled) || !IsPromptEnd(err) {
		t.Fatalf("expected ErrPromptCancelled, got %v", err)
	}
	if consumed, _ := p.Intercept(ctx, textMessage(2, groupChat, alice, "late")); consumed {
		t.Fatalf("cancelled prompt must not complete")
	}
}

func TestPrompterExpiry(t *testing.T) {
	ctx := context.Background()
	p, d, _, _ := newTestPrompter(time.Minute)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }
	p.Register(d)

	pending, _ := p.Prompt(ctx, 42, 7, "pin", model.PromptData{})
	now = now.Add(2 * time.Minute)

	if _, err := d.Dispatch(ctx, &Event{Type: EventTick}); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if _, err := pending.Wait(ctx); !errors.Is(err, domain.ErrPromptExpired) {
		t.Fatalf("expected ErrPromptExpired, got %v", err)
	}
	if p.Outstanding() != 0 {
		t.Fatalf("expired prompt still outstanding")
	}
}

func TestPrompterRequestFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	p, d, _, repo := newTestPrompter(0)
	d.On(PromptRequestEvent("pin"), func(ctx context.Context, ev *Event) (Result, error) {
		return Result{}, domain.ErrTransport
	})

	if _, err := p.Prompt(ctx, 42, 7, "pin", model.PromptData{}); !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if st, _ := repo.Take(ctx, 42, 7); st != nil {
		t.Fatalf("failed prompt must not stay outstanding")
	}
	if p.Outstanding() != 0 {
		t.Fatalf("failed prompt future must be dropped")
	}
}
