//go:build !integration

package application

import (
	"context"
	"errors"
	"testing"

	"telegram-pinmsg-bot/internal/domain"
	"telegram-pinmsg-bot/internal/domain/model"
)

func TestDispatcherRunsHandlersInOrder(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, newTestLogger())

	var order []string
	d.On("x", func(ctx context.Context, ev *Event) (Result, error) {
		order = append(order, "first")
		return Next(model.NewSendMessage(1, "a")), nil
	})
	d.On("x", func(ctx context.Context, ev *Event) (Result, error) {
		order = append(order, "second")
		if len(sender.all()) != 1 {
			t.Errorf("requests of the previous handler must be sent before the next runs")
		}
		return Next(), nil
	})

	stopped, err := d.Dispatch(context.Background(), &Event{Type: "x"})
	if err != nil || stopped {
		t.Fatalf("unexpected stopped=%v err=%v", stopped, err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestDispatcherStopPropagation(t *testing.T) {
	tests := []struct {
		name   string
		result Result
	}{
		{"stop", Halt()},
		{"stop with response", Respond(model.NewSendMessage(1, "gate"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{}
			d := NewDispatcher(sender, newTestLogger())
			ranSpecific := false
			ranLater := false
			d.On(EventCommand, func(ctx context.Context, ev *Event) (Result, error) { return tt.result, nil })
			d.On(EventCommand, func(ctx context.Context, ev *Event) (Result, error) {
				ranLater = true
				return Next(), nil
			})
			d.On(CommandEvent("pin"), func(ctx context.Context, ev *Event) (Result, error) {
				ranSpecific = true
				return Next(), nil
			})

			stopped, err := d.Dispatch(context.Background(), &Event{}, EventCommand, CommandEvent("pin"))
			if err != nil || !stopped {
				t.Fatalf("expected stop, got stopped=%v err=%v", stopped, err)
			}
			if ranLater || ranSpecific {
				t.Fatalf("handlers after a stop must not run (later=%v specific=%v)", ranLater, ranSpecific)
			}
			if got := len(sender.all()); got != len(tt.result.Requests) {
				t.Fatalf("expected %d requests, got %d", len(tt.result.Requests), got)
			}
		})
	}
}

func TestDispatcherStageEventType(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, newTestLogger())
	var seen []string
	record := func(ctx context.Context, ev *Event) (Result, error) {
		seen = append(seen, ev.Type)
		return Next(), nil
	}
	d.On(EventCommand, record)
	d.On(CommandEvent("unpin"), record)

	if _, err := d.Dispatch(context.Background(), &Event{}, EventCommand, CommandEvent("unpin")); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(seen) != 2 || seen[0] != "command" || seen[1] != "command.unpin" {
		t.Fatalf("unexpected stages %v", seen)
	}
}

func TestDispatcherHandlerFailureAbortsChain(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, newTestLogger())
	boom := errors.New("boom")
	ranAfter := false
	d.On("x", func(ctx context.Context, ev *Event) (Result, error) { return Result{}, boom })
	d.On("x", func(ctx context.Context, ev *Event) (Result, error) {
		ranAfter = true
		return Next(), nil
	})

	_, err := d.Dispatch(context.Background(), &Event{Type: "x", Chat: groupChat})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if ranAfter {
		t.Fatalf("chain must abort after a failure")
	}
	if len(sender.all()) != 0 {
		t.Fatalf("a failed handler must not produce output")
	}

	// the dispatcher keeps working for later events
	d2 := NewDispatcher(sender, newTestLogger())
	d2.On("y", func(ctx context.Context, ev *Event) (Result, error) { return Next(), nil })
	if _, err := d2.Dispatch(context.Background(), &Event{Type: "y"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDispatcherRecoversPanics(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, newTestLogger())
	d.On("x", func(ctx context.Context, ev *Event) (Result, error) { panic("bad handler") })
	if _, err := d.Dispatch(context.Background(), &Event{Type: "x"}); err == nil {
		t.Fatalf("expected panic to surface as an error")
	}
}

func TestDispatcherSendFailure(t *testing.T) {
	sender := &recordingSender{err: domain.ErrTransport}
	d := NewDispatcher(sender, newTestLogger())
	d.On("x", func(ctx context.Context, ev *Event) (Result, error) {
		return Next(model.NewSendMessage(1, "hi")), nil
	})
	if _, err := d.Dispatch(context.Background(), &Event{Type: "x"}); !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestDispatcherNoHandlers(t *testing.T) {
	d := NewDispatcher(nil, newTestLogger())
	if d.HasHandlers("nothing") {
		t.Fatalf("expected no handlers")
	}
	stopped, err := d.Dispatch(context.Background(), &Event{Type: "nothing"})
	if stopped || err != nil {
		t.Fatalf("unexpected stopped=%v err=%v", stopped, err)
	}
}
