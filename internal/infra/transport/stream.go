package transport

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"

	"telegram-pinmsg-bot/internal/domain/model"
	"telegram-pinmsg-bot/internal/infra/logging"
)

var ErrStreamClosed = errors.New("stream closed")

// UpdateHandler processes one inbound update.
type UpdateHandler func(ctx context.Context, upd model.Update) error

// Stream fans inbound updates out to a fixed set of shards keyed by chat id.
// Updates of one chat are handled in injection order; different chats overlap.
type Stream struct {
	handle  UpdateHandler
	shards  []chan model.Update
	log     *zerolog.Logger
	onPanic func(recovered any)

	mu      sync.RWMutex
	started bool
	closed  bool
	wg      sync.WaitGroup
}

const shardBuffer = 64

// NewStream builds a stream with n shards (at least 1). onPanic receives panics
// escaping handle on its own goroutine; nil re-panics.
func NewStream(n int, handle UpdateHandler, onPanic func(recovered any), logger *zerolog.Logger) *Stream {
	if n <= 0 {
		n = 1
	}
	shards := make([]chan model.Update, n)
	for i := range shards {
		shards[i] = make(chan model.Update, shardBuffer)
	}
	l := logger.With().Str("component", "Stream").Logger()
	return &Stream{handle: handle, shards: shards, log: &l, onPanic: onPanic}
}

// Start launches the shard workers. Handlers get ctx's values but not its
// cancellation, so updates still queued at Stop are handled to completion.
func (s *Stream) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true
	hctx := context.WithoutCancel(ctx)
	for i, ch := range s.shards {
		s.wg.Add(1)
		go s.work(hctx, i, ch)
	}
}

// Inject queues upd on its chat's shard, blocking while the shard is full.
func (s *Stream) Inject(ctx context.Context, upd model.Update) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStreamClosed
	}
	ch := s.shards[s.shardOf(upd.ChatID())]
	select {
	case ch <- upd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the stream and waits for queued updates to drain.
func (s *Stream) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, ch := range s.shards {
		close(ch)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Stream) shardOf(chatID int64) int {
	if chatID < 0 {
		chatID = -chatID
	}
	return int(chatID % int64(len(s.shards)))
}

func (s *Stream) work(ctx context.Context, shard int, ch <-chan model.Update) {
	defer s.wg.Done()
	for upd := range ch {
		s.process(ctx, shard, upd)
	}
}

func (s *Stream) process(ctx context.Context, shard int, upd model.Update) {
	defer func() {
		if r := recover(); r != nil {
			if s.onPanic == nil {
				panic(r)
			}
			s.log.Error().Bytes("stack", debug.Stack()).Int("update_id", upd.UpdateID).Msg("handler panic")
			// onPanic may call Stop, which waits for this worker
			go s.onPanic(fmt.Sprintf("update %d: %v", upd.UpdateID, r))
		}
	}()
	if err := s.handle(ctx, upd); err != nil {
		logging.With(logging.WithChatID(ctx, upd.ChatID()), s.log).Error().Err(err).
			Int("shard", shard).
			Int("update_id", upd.UpdateID).
			Msg("update handling failed")
	}
}
