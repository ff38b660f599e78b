package transport

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"telegram-pinmsg-bot/internal/config"
	"telegram-pinmsg-bot/internal/infra/logging"
)

type Mode string

const (
	ModeWebhook Mode = "webhook"
	ModePoll    Mode = "poll"
)

// Client is the Bot API surface both modes need.
type Client interface {
	UpdateSource
	SetWebhook(ctx context.Context, url string) error
}

// Selector owns the inbound delivery mode. The mode is fixed at construction.
type Selector struct {
	mode     Mode
	hookPath string
	hookURL  string
	client   Client
	stream   *Stream
	poller   *Poller
	log      *zerolog.Logger

	onPanic func(recovered any)
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New(cfg *config.Config, client Client, stream *Stream, logger *zerolog.Logger) *Selector {
	l := logger.With().Str("component", "Transport").Logger()
	s := &Selector{client: client, stream: stream, log: &l, mode: ModePoll}
	if cfg.Webhook.Enable {
		s.mode = ModeWebhook
		s.hookPath = DeriveHookPath(cfg.Webhook.Path, cfg.Bot.Token)
		s.hookURL = WebhookURL(cfg.Webhook.URLPrefix, s.hookPath)
	} else {
		s.poller = NewPoller(client, stream, cfg.Bot.PollTimeout, logger)
	}
	return s
}

func (s *Selector) Mode() Mode { return s.mode }

// HookPath is empty in poll mode.
func (s *Selector) HookPath() string { return s.hookPath }

// Routes mounts the webhook endpoint; it adds nothing in poll mode.
func (s *Selector) Routes(r chi.Router) {
	if s.mode != ModeWebhook {
		return
	}
	r.Post(s.hookPath, WebhookHandler(s.stream, s.log))
}

// SetPanicHandler routes a panic in the poll loop to h once the loop has
// exited. Without a handler the panic propagates. Call before Start.
func (s *Selector) SetPanicHandler(h func(recovered any)) {
	s.onPanic = h
}

// Start registers the webhook or launches the poll loop.
func (s *Selector) Start(ctx context.Context) error {
	if s.mode == ModeWebhook {
		if err := s.client.SetWebhook(ctx, s.hookURL); err != nil {
			return err
		}
		s.log.Info().Str("path", logging.Redact(s.hookPath, false)).Msg("webhook registered")
		return nil
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.recoverPanic()
		defer s.wg.Done()
		_ = s.poller.Run(ctx)
	}()
	return nil
}

func (s *Selector) recoverPanic() {
	r := recover()
	if r == nil {
		return
	}
	if s.onPanic == nil {
		panic(r)
	}
	s.log.Error().Bytes("stack", debug.Stack()).Msg("poll loop panicked")
	s.onPanic(r)
}

// Stop ends polling. The webhook stays registered so updates queue on the platform side.
func (s *Selector) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
