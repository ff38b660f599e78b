package application

import (
	"context"
	"errors"
	"strings"

	"telegram-pinmsg-bot/internal/domain"
	"telegram-pinmsg-bot/internal/domain/model"
	"telegram-pinmsg-bot/internal/infra/logging"
	"telegram-pinmsg-bot/internal/usecase"

	"github.com/rs/zerolog"
)

// Texts resolves user-facing message keys.
type Texts interface {
	T(key string, args ...interface{}) string
}

// PinFeature wires the /pin, /unpin and /pinned commands and the pin prompt.
type PinFeature struct {
	pins     usecase.PinUseCase
	prompter *Prompter
	texts    Texts
	log      *zerolog.Logger
}

func NewPinFeature(pins usecase.PinUseCase, prompter *Prompter, texts Texts, logger *zerolog.Logger) *PinFeature {
	l := logger.With().Str("component", "PinFeature").Logger()
	return &PinFeature{pins: pins, prompter: prompter, texts: texts, log: &l}
}

func (f *PinFeature) Register(d *Dispatcher) {
	d.On(CommandEvent("pin"), f.handlePin)
	d.On(CommandEvent("unpin"), f.handleUnpin)
	d.On(CommandEvent("pinned"), f.handlePinned)
	d.On(PromptRequestEvent(model.PromptKindPin), f.handlePromptRequest)
	d.On(PromptCompleteEvent(model.PromptKindPin), f.handlePromptComplete)
}

func (f *PinFeature) handlePin(ctx context.Context, ev *Event) (Result, error) {
	msg := ev.Message
	chatID := ev.Chat.ID

	// replying with /pin pins the replied-to message directly
	if msg.ReplyToMessage != nil {
		if err := f.pins.PinMessage(ctx, chatID, msg.ReplyToMessage.MessageID); err != nil {
			return f.failure(ctx, ev, err)
		}
		return Respond(model.NewSendMessage(chatID, f.texts.T("pin_done")).WithReplyTo(msg.MessageID)), nil
	}

	if msg.From == nil {
		return Respond(model.NewSendMessage(chatID, f.texts.T("pin_anonymous")).WithReplyTo(msg.MessageID)), nil
	}

	data := model.PromptData{MessageID: msg.MessageID}
	if _, err := f.prompter.Prompt(ctx, chatID, msg.From.ID, model.PromptKindPin, data); err != nil {
		if errors.Is(err, domain.ErrStorage) {
			return f.failure(ctx, ev, err)
		}
		return Result{}, err
	}
	return Next(), nil
}

func (f *PinFeature) handleUnpin(ctx context.Context, ev *Event) (Result, error) {
	unpinned, err := f.pins.UnpinMessage(ctx, ev.Chat.ID)
	if err != nil {
		return f.failure(ctx, ev, err)
	}
	text := f.texts.T("unpin_none")
	if unpinned {
		text = f.texts.T("unpin_done")
	}
	return Respond(model.NewSendMessage(ev.Chat.ID, text)), nil
}

func (f *PinFeature) handlePinned(ctx context.Context, ev *Event) (Result, error) {
	messageID, ok, err := f.pins.GetPinnedMessage(ctx, ev.Chat.ID)
	if err != nil {
		return f.failure(ctx, ev, err)
	}
	if !ok {
		return Respond(model.NewSendMessage(ev.Chat.ID, f.texts.T("pinned_none"))), nil
	}
	return Respond(model.NewForwardMessage(ev.Chat.ID, ev.Chat.ID, messageID)), nil
}

func (f *PinFeature) handlePromptRequest(ctx context.Context, ev *Event) (Result, error) {
	req := model.NewSendMessage(ev.Prompt.ChatID, f.texts.T("pin_prompt")).
		WithReplyTo(ev.Prompt.Data.MessageID).
		WithForceReply()
	return Respond(req), nil
}

func (f *PinFeature) handlePromptComplete(ctx context.Context, ev *Event) (Result, error) {
	reply := ev.Message
	chatID := reply.Chat.ID

	if isCancel(reply.Text) {
		return Respond(model.NewSendMessage(chatID, f.texts.T("pin_cancelled"))), nil
	}
	if err := f.pins.PinMessage(ctx, chatID, reply.MessageID); err != nil {
		return f.failure(ctx, ev, err)
	}
	return Respond(model.NewSendMessage(chatID, f.texts.T("pin_done")).WithReplyTo(reply.MessageID)), nil
}

// isCancel reports whether a prompt reply asks to cancel. Messages without text never do.
func isCancel(text string) bool {
	return text != "" && strings.HasPrefix(strings.TrimSpace(text), "/cancel")
}

// failure logs err and answers with the generic failure text.
func (f *PinFeature) failure(ctx context.Context, ev *Event, err error) (Result, error) {
	logging.With(ctx, f.log).Error().Err(err).
		Str("event", ev.Type).
		Int64("chat_id", ev.Chat.ID).
		Msg("pin operation failed")
	return Respond(model.NewSendMessage(ev.Chat.ID, f.texts.T("error_generic"))), nil
}
