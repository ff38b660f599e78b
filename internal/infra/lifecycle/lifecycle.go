package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Signals that trigger an orderly shutdown.
var Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR2}

// Hook runs once at shutdown with the reason the process is stopping.
type Hook func(cause string)

// Manager runs shutdown hooks exactly once, whether the process stops on a
// signal, a normal return or an unrecovered panic.
type Manager struct {
	mu    sync.Mutex
	hooks []Hook
	once  sync.Once
	log   *zerolog.Logger
	exit  func(code int)
	grace time.Duration
}

// DefaultCrashGrace bounds how long Crash waits for the hooks before exiting.
const DefaultCrashGrace = 15 * time.Second

type Option func(*Manager)

// WithExit replaces os.Exit.
func WithExit(exit func(code int)) Option {
	return func(m *Manager) { m.exit = exit }
}

// WithCrashGrace sets how long Crash waits for the shutdown hooks.
func WithCrashGrace(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.grace = d
		}
	}
}

func New(logger *zerolog.Logger, opts ...Option) *Manager {
	l := logger.With().Str("component", "Lifecycle").Logger()
	m := &Manager{log: &l, exit: os.Exit, grace: DefaultCrashGrace}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddHook registers h. Hooks run in reverse registration order.
func (m *Manager) AddHook(h Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, h)
}

// Shutdown logs cause and runs the hooks. Later calls are no-ops.
func (m *Manager) Shutdown(cause string) {
	m.once.Do(func() {
		m.log.Info().Str("cause", cause).Msg("shutting down")
		m.mu.Lock()
		hooks := make([]Hook, len(m.hooks))
		copy(hooks, m.hooks)
		m.mu.Unlock()
		for i := len(hooks) - 1; i >= 0; i-- {
			m.runHook(hooks[i], cause)
		}
	})
}

func (m *Manager) runHook(h Hook, cause string) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Msg("shutdown hook panicked")
		}
	}()
	h(cause)
}

// NotifyContext returns a context cancelled on the first shutdown signal, and a
// function returning the signal's name once it arrived.
func (m *Manager) NotifyContext(parent context.Context) (context.Context, func() string, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, Signals...)

	var mu sync.Mutex
	var cause string
	go func() {
		select {
		case sig := <-ch:
			mu.Lock()
			cause = "signal " + sig.String()
			mu.Unlock()
			m.log.Info().Str("signal", sig.String()).Msg("signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	stop := func() {
		signal.Stop(ch)
		cancel()
	}
	causeOf := func() string {
		mu.Lock()
		defer mu.Unlock()
		return cause
	}
	return ctx, causeOf, stop
}

// Crash runs the hooks and exits with status 1. The process exits after the
// grace period even when a hook never returns, or when Shutdown is already
// running elsewhere.
func (m *Manager) Crash(cause string) {
	m.log.Error().Str("cause", cause).Msg("fatal failure")
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Shutdown(cause)
	}()
	select {
	case <-done:
	case <-time.After(m.grace):
		m.log.Error().Dur("grace", m.grace).Msg("shutdown hooks did not finish")
	}
	m.exit(1)
}

// Guard runs fn and turns a panic into Crash.
func (m *Manager) Guard(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Bytes("stack", debug.Stack()).Msg("panic")
			m.Crash(fmt.Sprintf("panic: %v", r))
		}
	}()
	fn()
}

// Go runs fn on a new goroutine under Guard.
func (m *Manager) Go(fn func()) {
	go m.Guard(fn)
}

// OnPanic adapts Crash to callbacks that receive a recovered value.
func (m *Manager) OnPanic(recovered any) {
	m.Crash(fmt.Sprintf("panic: %v", recovered))
}
