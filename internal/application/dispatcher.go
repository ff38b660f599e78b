package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"telegram-pinmsg-bot/internal/domain/ports/adapter"
	"telegram-pinmsg-bot/internal/infra/logging"
	"telegram-pinmsg-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Handler reacts to one event. Returning an error aborts the rest of the chain.
type Handler func(ctx context.Context, ev *Event) (Result, error)

// Dispatcher routes events to the handlers registered for their type, in
// registration order, forwarding produced requests to the Sender.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	sender   adapter.Sender
	log      *zerolog.Logger
}

func NewDispatcher(sender adapter.Sender, logger *zerolog.Logger) *Dispatcher {
	l := logger.With().Str("component", "Dispatcher").Logger()
	return &Dispatcher{
		handlers: make(map[string][]Handler),
		sender:   sender,
		log:      &l,
	}
}

// On appends h to the chain of eventType.
func (d *Dispatcher) On(eventType string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], h)
}

// HasHandlers reports whether anything is registered for eventType.
func (d *Dispatcher) HasHandlers(eventType string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[eventType]) > 0
}

func (d *Dispatcher) chain(eventType string) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	hs := d.handlers[eventType]
	out := make([]Handler, len(hs))
	copy(out, hs)
	return out
}

// Dispatch runs the handlers of each event type in types (ev.Type when empty) as
// one chain. A Stop from any handler ends the whole chain, so a gate on "command"
// keeps "command.<name>" from running. It reports whether the chain was stopped.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *Event, types ...string) (bool, error) {
	if len(types) == 0 {
		types = []string{ev.Type}
	}
	for _, t := range types {
		stage := *ev
		stage.Type = t
		stopped, err := d.run(ctx, &stage)
		if err != nil || stopped {
			return stopped, err
		}
	}
	return false, nil
}

func (d *Dispatcher) run(ctx context.Context, ev *Event) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.ObserveEventLatency(ev.Type, float64(time.Since(start).Milliseconds()))
	}()

	for i, h := range d.chain(ev.Type) {
		res, err := d.call(ctx, h, ev)
		if err == nil {
			err = d.send(ctx, res)
		}
		if err != nil {
			metrics.IncHandlerError(ev.Type)
			logging.With(ctx, d.log).Error().Err(err).
				Str("event", ev.Type).
				Int64("chat_id", ev.ChatID()).
				Int("handler", i).
				Msg("handler failed; aborting event")
			return true, err
		}
		if res.Action != Continue {
			logging.With(ctx, d.log).Debug().
				Str("event", ev.Type).
				Str("action", res.Action.String()).
				Msg("propagation stopped")
			return true, nil
		}
	}
	return false, nil
}

// call runs h. A panic counts as a handler failure.
func (d *Dispatcher) call(ctx context.Context, h Handler, ev *Event) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, ev)
}

func (d *Dispatcher) send(ctx context.Context, res Result) error {
	for _, req := range res.Requests {
		if d.sender == nil {
			return fmt.Errorf("no sender configured for %s", req.Action)
		}
		if err := d.sender.Do(ctx, req); err != nil {
			return fmt.Errorf("send %s: %w", req.Action, err)
		}
	}
	return nil
}
