//go:build !integration

package application

import (
	"context"
	"sync"
	"time"

	"telegram-pinmsg-bot/internal/domain/model"
	"telegram-pinmsg-bot/internal/infra/i18n"
	"telegram-pinmsg-bot/internal/infra/memory"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

// recordingSender captures outbound requests in order.
type recordingSender struct {
	mu   sync.Mutex
	reqs []model.OutboundRequest
	err  error
}

func (s *recordingSender) Do(ctx context.Context, req model.OutboundRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.reqs = append(s.reqs, req)
	return nil
}

func (s *recordingSender) all() []model.OutboundRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.OutboundRequest, len(s.reqs))
	copy(out, s.reqs)
	return out
}

func (s *recordingSender) last() model.OutboundRequest {
	all := s.all()
	if len(all) == 0 {
		return model.OutboundRequest{}
	}
	return all[len(all)-1]
}

func (s *recordingSender) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = nil
}

// countingTracker records tracked message ids.
type countingTracker struct {
	mu  sync.Mutex
	ids []int
}

func (t *countingTracker) Track(ctx context.Context, msg *model.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ids = append(t.ids, msg.MessageID)
}

// countLimiter allows limit hits per key, or fails with err when set.
type countLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	err    error
}

func (l *countLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts == nil {
		l.counts = map[string]int{}
	}
	l.counts[key]++
	return l.counts[key] <= limit, nil
}

type testBot struct {
	*Bot
	sender  *recordingSender
	store   *memory.KeyedStore
	prompts *memory.PromptStateRepo
	tracker *countingTracker
}

func newTestBot() *testBot {
	sender := &recordingSender{}
	store := memory.NewKeyedStore()
	prompts := memory.NewPromptStateRepo()
	tracker := &countingTracker{}
	bot := NewBot(BotDeps{
		Sender:      sender,
		Store:       store,
		Prompts:     prompts,
		Tracker:     tracker,
		Texts:       i18n.Default(),
		BotUsername: "pinmsgbot",
	}, newTestLogger())
	return &testBot{Bot: bot, sender: sender, store: store, prompts: prompts, tracker: tracker}
}

// message builders

var (
	groupChat   = model.Chat{ID: 42, Type: model.ChatGroup}
	privateChat = model.Chat{ID: 7, Type: model.ChatPrivate}
	alice       = &model.User{ID: 7, FirstName: "Alice"}
	bob         = &model.User{ID: 8, FirstName: "Bob"}
)

func textMessage(id int, chat model.Chat, from *model.User, text string) *model.Message {
	return &model.Message{MessageID: id, Chat: chat, From: from, Text: text}
}

func update(msg *model.Message) model.Update {
	return model.Update{UpdateID: msg.MessageID, Message: msg}
}
