package application

import (
	"context"
	"time"

	"telegram-pinmsg-bot/internal/domain/model"
	"telegram-pinmsg-bot/internal/domain/ports/adapter"
	"telegram-pinmsg-bot/internal/domain/ports/repository"
	"telegram-pinmsg-bot/internal/infra/logging"
	"telegram-pinmsg-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// GroupOnlyGate stops every command outside groups and points the user to a
// group instead.
func GroupOnlyGate(texts Texts) Handler {
	return func(ctx context.Context, ev *Event) (Result, error) {
		if ev.Chat.IsGroup() {
			return Next(), nil
		}
		return Respond(model.NewSendMessage(ev.Chat.ID, texts.T("group_only"))), nil
	}
}

// RateLimitGate allows perMinute commands per user, chat and command.
func RateLimitGate(limiter repository.RateLimiter, perMinute int, texts Texts, logger *zerolog.Logger) Handler {
	return func(ctx context.Context, ev *Event) (Result, error) {
		if ev.Command == nil || ev.Message == nil || ev.Message.From == nil {
			return Next(), nil
		}
		key := repository.UserCommandKey(ev.Chat.ID, ev.Message.From.ID, ev.Command.Name)
		allowed, err := limiter.Allow(ctx, key, perMinute, time.Minute)
		if err != nil {
			logging.With(ctx, logger).Warn().Err(err).Msg("rate limit check failed")
			return Next(), nil
		}
		if !allowed {
			metrics.IncRateLimitTriggered()
			return Respond(model.NewSendMessage(ev.Chat.ID, texts.T("rate_limited"))), nil
		}
		return Next(), nil
	}
}

// TrackMessages hands every inbound message to the analytics tracker.
func TrackMessages(tracker adapter.Tracker) Handler {
	return func(ctx context.Context, ev *Event) (Result, error) {
		if ev.Message != nil {
			tracker.Track(ctx, ev.Message)
		}
		return Next(), nil
	}
}
