package application

import (
	"time"

	"telegram-pinmsg-bot/internal/domain/ports/adapter"
	"telegram-pinmsg-bot/internal/domain/ports/repository"
	"telegram-pinmsg-bot/internal/usecase"

	"github.com/rs/zerolog"
)

// BotDeps are the collaborators the bot core is assembled from. Limiter and
// Tracker are optional.
type BotDeps struct {
	Sender      adapter.Sender
	Store       repository.KeyedStore
	Prompts     repository.PromptStateRepository
	Limiter     repository.RateLimiter
	Tracker     adapter.Tracker
	Texts       Texts
	PromptTTL   time.Duration
	RatePerMin  int
	BotUsername string
}

// Bot is the assembled dispatch core.
type Bot struct {
	Dispatcher *Dispatcher
	Prompter   *Prompter
	Router     *Router
	Pins       usecase.PinUseCase
}

// NewBot registers every feature on a fresh dispatcher. Registration order is the
// handler order: analytics, gates, then the features.
func NewBot(deps BotDeps, logger *zerolog.Logger) *Bot {
	disp := NewDispatcher(deps.Sender, logger)
	prompter := NewPrompter(deps.Prompts, disp, deps.PromptTTL, logger)
	pins := usecase.NewPinUseCase(deps.Store, logger)

	if deps.Tracker != nil {
		disp.On(EventMessage, TrackMessages(deps.Tracker))
	}
	disp.On(EventCommand, GroupOnlyGate(deps.Texts))
	if deps.Limiter != nil && deps.RatePerMin > 0 {
		disp.On(EventCommand, RateLimitGate(deps.Limiter, deps.RatePerMin, deps.Texts, logger))
	}

	NewHelpFeature(deps.Texts).Register(disp)
	NewPinFeature(pins, prompter, deps.Texts, logger).Register(disp)
	prompter.Register(disp)

	return &Bot{
		Dispatcher: disp,
		Prompter:   prompter,
		Router:     NewRouter(disp, prompter, deps.BotUsername, logger),
		Pins:       pins,
	}
}
