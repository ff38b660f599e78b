package scheduler

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
)

// Job is one periodic run. Errors are logged and do not stop the scheduler.
type Job func(ctx context.Context) error

// Scheduler periodically runs a Job. It drives the housekeeping tick and runs
// regardless of how updates are delivered.
type Scheduler struct {
	interval time.Duration
	timeout  time.Duration
	job      Job
	log      *zerolog.Logger
	onPanic  func(recovered any)

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler constructs a scheduler that runs job every interval.
// If interval <= 0 it defaults to 1 minute.
func NewScheduler(interval time.Duration, job Job, logger *zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	l := logger.With().Str("component", "Scheduler").Logger()
	return &Scheduler{
		interval: interval,
		timeout:  30 * time.Second,
		job:      job,
		log:      &l,
		done:     make(chan struct{}),
	}
}

// SetPanicHandler routes panics escaping the job to h after the loop has
// exited. Without a handler the panic propagates. Call before Start.
func (s *Scheduler) SetPanicHandler(h func(recovered any)) {
	s.onPanic = h
}

// Start begins the scheduler loop in a background goroutine.
// Calling Start multiple times has no effect.
func (s *Scheduler) Start(parentCtx context.Context) {
	if s.ctx != nil {
		return
	}
	s.ctx, s.cancel = context.WithCancel(parentCtx)
	go s.run()
}

func (s *Scheduler) run() {
	defer s.recoverPanic()
	s.loop()
}

func (s *Scheduler) recoverPanic() {
	r := recover()
	if r == nil {
		return
	}
	if s.onPanic == nil {
		panic(r)
	}
	s.log.Error().Bytes("stack", debug.Stack()).Msg("scheduled job panicked")
	s.onPanic(r)
}

func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		close(s.done)
	}()

	s.log.Info().Dur("interval", s.interval).Msg("scheduler started")
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(s.ctx)
		}
	}
}

// RunOnce runs the job with a bounded timeout.
func (s *Scheduler) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.job(runCtx); err != nil {
		s.log.Error().Err(err).Msg("scheduled job failed")
	}
}

// Stop cancels the scheduler and waits for the loop to finish. It is idempotent.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.ctx = nil
	s.cancel = nil
	s.done = make(chan struct{})
	s.log.Info().Msg("scheduler stopped")
}
