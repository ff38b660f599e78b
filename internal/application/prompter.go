package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"telegram-pinmsg-bot/internal/domain"
	"telegram-pinmsg-bot/internal/domain/model"
	"telegram-pinmsg-bot/internal/domain/ports/repository"
	"telegram-pinmsg-bot/internal/infra/logging"
	"telegram-pinmsg-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// PendingPrompt is the deferred result of a prompt. It resolves once, with the
// completing message or with the reason the prompt ended without one.
type PendingPrompt struct {
	ChatID    int64
	UserID    int64
	Kind      string
	ExpiresAt time.Time

	once sync.Once
	done chan struct{}
	msg  *model.Message
	err  error
}

func newPendingPrompt(st *model.PromptState) *PendingPrompt {
	return &PendingPrompt{
		ChatID:    st.ChatID,
		UserID:    st.UserID,
		Kind:      st.Kind,
		ExpiresAt: st.ExpiresAt,
		done:      make(chan struct{}),
	}
}

func (p *PendingPrompt) resolve(msg *model.Message, err error) {
	p.once.Do(func() {
		p.msg, p.err = msg, err
		close(p.done)
	})
}

// Done is closed when the prompt resolves.
func (p *PendingPrompt) Done() <-chan struct{} { return p.done }

// Wait blocks until the prompt resolves or ctx ends.
func (p *PendingPrompt) Wait(ctx context.Context) (*model.Message, error) {
	select {
	case <-p.done:
		return p.msg, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type promptKey struct {
	chatID int64
	userID int64
}

// expiringRepo is implemented by repositories that need explicit expiry sweeps.
type expiringRepo interface {
	PurgeExpired(ctx context.Context) ([]*model.PromptState, error)
}

// Prompter tracks one outstanding prompt per (chat, user). A new prompt for the
// same pair replaces the old one; the replaced future resolves with
// domain.ErrDuplicatePrompt.
type Prompter struct {
	repo repository.PromptStateRepository
	disp *Dispatcher
	ttl  time.Duration
	now  func() time.Time
	log  *zerolog.Logger

	mu      sync.Mutex
	pending map[promptKey]*PendingPrompt
}

func NewPrompter(repo repository.PromptStateRepository, disp *Dispatcher, ttl time.Duration, logger *zerolog.Logger) *Prompter {
	l := logger.With().Str("component", "Prompter").Logger()
	return &Prompter{
		repo:    repo,
		disp:    disp,
		ttl:     ttl,
		now:     time.Now,
		log:     &l,
		pending: make(map[promptKey]*PendingPrompt),
	}
}

// Register hooks the expiry sweep into the tick event.
func (p *Prompter) Register(d *Dispatcher) {
	d.On(EventTick, func(ctx context.Context, _ *Event) (Result, error) {
		p.ExpireStale(ctx)
		return Next(), nil
	})
}

// Prompt stores a prompt of kind for (chatID, userID) and emits prompt.request.<kind>.
func (p *Prompter) Prompt(ctx context.Context, chatID, userID int64, kind string, data model.PromptData) (*PendingPrompt, error) {
	now := p.now()
	st := &model.PromptState{
		ChatID:    chatID,
		UserID:    userID,
		Kind:      kind,
		Data:      data,
		CreatedAt: now,
	}
	if p.ttl > 0 {
		st.ExpiresAt = now.Add(p.ttl)
	}
	if err := p.repo.Save(ctx, st); err != nil {
		return nil, err
	}

	pending := newPendingPrompt(st)
	key := promptKey{chatID, userID}
	p.mu.Lock()
	prev := p.pending[key]
	p.pending[key] = pending
	p.mu.Unlock()
	if prev != nil {
		metrics.IncPrompt(prev.Kind, "superseded")
		prev.resolve(nil, domain.ErrDuplicatePrompt)
	}
	metrics.IncPrompt(kind, "requested")

	ev := &Event{
		Type:   PromptRequestEvent(kind),
		Chat:   model.Chat{ID: chatID},
		Prompt: st,
	}
	if _, err := p.disp.Dispatch(ctx, ev); err != nil {
		// the user never saw the question, so nothing can complete it
		_ = p.repo.Delete(ctx, chatID, userID)
		p.finish(key, pending, nil, err)
		return nil, err
	}
	return pending, nil
}

// Intercept consumes the outstanding prompt of msg's sender, if any, and emits
// prompt.complete.<kind>. It returns false when msg is an ordinary message.
func (p *Prompter) Intercept(ctx context.Context, msg *model.Message) (bool, error) {
	if msg == nil || msg.From == nil {
		return false, nil
	}
	chatID, userID := msg.Chat.ID, msg.From.ID
	st, err := p.repo.Take(ctx, chatID, userID)
	if err != nil {
		return false, err
	}
	key := promptKey{chatID, userID}
	if st == nil {
		return false, nil
	}
	if st.Expired(p.now()) {
		metrics.IncPrompt(st.Kind, "expired")
		p.finishCurrent(key, nil, domain.ErrPromptExpired)
		return false, nil
	}

	log := logging.With(ctx, p.log)
	evType := PromptCompleteEvent(st.Kind)
	if !p.disp.HasHandlers(evType) {
		log.Debug().Str("kind", st.Kind).Msg("no handler for prompt kind; dropping completion")
		p.finishCurrent(key, msg, nil)
		return true, nil
	}

	metrics.IncPrompt(st.Kind, "completed")
	ev := &Event{
		Type:    evType,
		Chat:    msg.Chat,
		Message: msg,
		Prompt:  st,
	}
	_, err = p.disp.Dispatch(ctx, ev)
	p.finishCurrent(key, msg, err)
	return true, err
}

// Cancel drops the outstanding prompt of (chatID, userID).
func (p *Prompter) Cancel(ctx context.Context, chatID, userID int64) error {
	if err := p.repo.Delete(ctx, chatID, userID); err != nil {
		return err
	}
	p.mu.Lock()
	pending := p.pending[promptKey{chatID, userID}]
	p.mu.Unlock()
	if pending != nil {
		metrics.IncPrompt(pending.Kind, "cancelled")
	}
	p.finishCurrent(promptKey{chatID, userID}, nil, domain.ErrPromptCancelled)
	return nil
}

// ExpireStale resolves futures whose prompts have expired and sweeps the
// repository when it does not expire entries on its own.
func (p *Prompter) ExpireStale(ctx context.Context) {
	if r, ok := p.repo.(expiringRepo); ok {
		states, err := r.PurgeExpired(ctx)
		if err != nil {
			logging.With(ctx, p.log).Warn().Err(err).Msg("purge expired prompts")
		}
		for _, st := range states {
			metrics.IncPrompt(st.Kind, "expired")
		}
	}

	now := p.now()
	var expired []*PendingPrompt
	p.mu.Lock()
	for k, pp := range p.pending {
		if !pp.ExpiresAt.IsZero() && !now.Before(pp.ExpiresAt) {
			expired = append(expired, pp)
			delete(p.pending, k)
		}
	}
	p.mu.Unlock()
	for _, pp := range expired {
		pp.resolve(nil, domain.ErrPromptExpired)
	}
	if len(expired) > 0 {
		logging.With(ctx, p.log).Debug().Int("count", len(expired)).Msg("expired pending prompts")
	}
}

// Outstanding returns the number of unresolved prompts created by this process.
func (p *Prompter) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

func (p *Prompter) finishCurrent(key promptKey, msg *model.Message, err error) {
	p.mu.Lock()
	pending := p.pending[key]
	p.mu.Unlock()
	if pending != nil {
		p.finish(key, pending, msg, err)
	}
}

// finish resolves pending and forgets it unless a newer prompt already took its slot.
func (p *Prompter) finish(key promptKey, pending *PendingPrompt, msg *model.Message, err error) {
	p.mu.Lock()
	if p.pending[key] == pending {
		delete(p.pending, key)
	}
	p.mu.Unlock()
	pending.resolve(msg, err)
}

// IsPromptEnd reports whether err describes a prompt that ended without a reply.
func IsPromptEnd(err error) bool {
	return errors.Is(err, domain.ErrDuplicatePrompt) ||
		errors.Is(err, domain.ErrPromptCancelled) ||
		errors.Is(err, domain.ErrPromptExpired)
}
