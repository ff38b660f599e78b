//go:build !integration

package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSchedulerTicks(t *testing.T) {
	l := zerolog.Nop()
	var runs int32
	fired := make(chan struct{}, 16)
	s := NewScheduler(10*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		select {
		case fired <- struct{}{}:
		default:
		}
		return errors.New("keeps going")
	}, &l)

	s.Start(context.Background())
	s.Start(context.Background())
	for i := 0; i < 2; i++ {
		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatalf("scheduler did not tick")
		}
	}
	s.Stop()
	s.Stop()

	after := atomic.LoadInt32(&runs)
	time.Sleep(30 * time.Millisecond)
	if atomic.LoadInt32(&runs) != after {
		t.Fatalf("job ran after Stop")
	}
}

func TestNonPositiveIntervalDefaults(t *testing.T) {
	l := zerolog.Nop()
	s := NewScheduler(0, func(context.Context) error { return nil }, &l)
	if s.interval != time.Minute {
		t.Fatalf("got %s", s.interval)
	}
}

func TestSchedulerPanicReachesHandler(t *testing.T) {
	l := zerolog.Nop()
	s := NewScheduler(5*time.Millisecond, func(context.Context) error {
		panic("tick exploded")
	}, &l)
	got := make(chan any, 1)
	s.SetPanicHandler(func(r any) {
		// shutdown hooks stop the scheduler from the crashing goroutine
		s.Stop()
		got <- r
	})
	s.Start(context.Background())

	select {
	case r := <-got:
		if r != "tick exploded" {
			t.Fatalf("unexpected panic value %v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("panic was not reported")
	}
}
