//go:build !integration

package lifecycle

import (
	"context"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestManager() (*Manager, *int) {
	l := zerolog.Nop()
	code := -1
	m := New(&l, WithExit(func(c int) { code = c }))
	return m, &code
}

func TestShutdownRunsHooksOnceInReverse(t *testing.T) {
	m, _ := newTestManager()
	var order []string
	m.AddHook(func(cause string) { order = append(order, "first:"+cause) })
	m.AddHook(func(cause string) { panic("ignored") })
	m.AddHook(func(cause string) { order = append(order, "last:"+cause) })

	m.Shutdown("done")
	m.Shutdown("again")

	if strings.Join(order, ",") != "last:done,first:done" {
		t.Fatalf("unexpected hook order %v", order)
	}
}

func TestGuardCrashesOnPanic(t *testing.T) {
	m, code := newTestManager()
	var cause string
	m.AddHook(func(c string) { cause = c })

	m.Guard(func() { panic("kaboom") })

	if *code != 1 {
		t.Fatalf("expected exit 1, got %d", *code)
	}
	if cause != "panic: kaboom" {
		t.Fatalf("unexpected cause %q", cause)
	}
}

func TestGuardWithoutPanic(t *testing.T) {
	m, code := newTestManager()
	ran := false
	m.Guard(func() { ran = true })
	if !ran || *code != -1 {
		t.Fatalf("ran=%v code=%d", ran, *code)
	}
}

func TestNotifyContextCancelsOnSignal(t *testing.T) {
	m, _ := newTestManager()
	ctx, causeOf, stop := m.NotifyContext(context.Background())
	defer stop()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR2); err != nil {
		t.Fatalf("kill: %v", err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("context not cancelled by signal")
	}
	if !strings.Contains(causeOf(), "user defined signal 2") {
		t.Fatalf("unexpected cause %q", causeOf())
	}
}

func TestOnPanicCrashes(t *testing.T) {
	m, code := newTestManager()
	var wg sync.WaitGroup
	wg.Add(1)
	m.AddHook(func(string) { wg.Done() })
	m.OnPanic("update 3: boom")
	wg.Wait()
	if *code != 1 {
		t.Fatalf("expected exit 1")
	}
}

func TestCrashExitsWhenHookHangs(t *testing.T) {
	l := zerolog.Nop()
	exited := make(chan int, 1)
	m := New(&l, WithExit(func(c int) { exited <- c }), WithCrashGrace(50*time.Millisecond))
	block := make(chan struct{})
	defer close(block)
	m.AddHook(func(string) { <-block })

	go m.Crash("stuck")

	select {
	case c := <-exited:
		if c != 1 {
			t.Fatalf("expected exit 1, got %d", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("crash did not exit while a hook was blocked")
	}
}

func TestCrashDuringShutdownStillExits(t *testing.T) {
	l := zerolog.Nop()
	exited := make(chan int, 1)
	m := New(&l, WithExit(func(c int) { exited <- c }), WithCrashGrace(50*time.Millisecond))
	inHook := make(chan struct{})
	release := make(chan struct{})
	m.AddHook(func(string) {
		close(inHook)
		<-release
	})

	go m.Shutdown("signal terminated")
	<-inHook
	go m.Crash("panic: late")

	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatalf("crash blocked behind a running shutdown")
	}
	close(release)
}
