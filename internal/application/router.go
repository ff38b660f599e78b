package application

import (
	"context"
	"strings"

	"telegram-pinmsg-bot/internal/domain/model"
	"telegram-pinmsg-bot/internal/infra/logging"
	"telegram-pinmsg-bot/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Router turns inbound updates into dispatcher events.
type Router struct {
	disp        *Dispatcher
	prompter    *Prompter
	botUsername string
	log         *zerolog.Logger
}

func NewRouter(disp *Dispatcher, prompter *Prompter, botUsername string, logger *zerolog.Logger) *Router {
	l := logger.With().Str("component", "Router").Logger()
	return &Router{
		disp:        disp,
		prompter:    prompter,
		botUsername: strings.TrimPrefix(botUsername, "@"),
		log:         &l,
	}
}

// commandLabel keeps the command metric bounded: only commands with handlers
// get their own series.
func (r *Router) commandLabel(name string) string {
	if r.disp.HasHandlers(CommandEvent(name)) {
		return "/" + name
	}
	return "other"
}

// HandleUpdate processes one update: the message event first, then prompt
// completion, then command events when no prompt consumed the message.
func (r *Router) HandleUpdate(ctx context.Context, upd model.Update) error {
	msg := upd.Message
	if msg == nil {
		return nil
	}

	ctx = logging.WithTraceID(ctx, uuid.NewString())
	ctx = logging.WithChatID(ctx, msg.Chat.ID)
	if msg.From != nil {
		ctx = logging.WithUserID(ctx, msg.From.ID)
	}
	log := logging.With(ctx, r.log)
	log.Trace().Int("update_id", upd.UpdateID).Int("message_id", msg.MessageID).Msg("update received")

	// message handlers are observers; their failures never block the message
	_, _ = r.disp.Dispatch(ctx, &Event{Type: EventMessage, Chat: msg.Chat, Message: msg})

	if r.prompter != nil {
		consumed, err := r.prompter.Intercept(ctx, msg)
		if consumed || err != nil {
			return err
		}
	}

	cmd, ok := model.ParseCommand(msg.Text)
	if !ok {
		return nil
	}
	if cmd.Mention != "" && r.botUsername != "" && !strings.EqualFold(cmd.Mention, r.botUsername) {
		log.Trace().Str("command", cmd.Name).Str("mention", cmd.Mention).Msg("command addressed to another bot")
		return nil
	}
	metrics.IncTelegramCommand(r.commandLabel(cmd.Name))

	ev := &Event{Chat: msg.Chat, Message: msg, Command: &cmd}
	_, err := r.disp.Dispatch(ctx, ev, EventCommand, CommandEvent(cmd.Name))
	return err
}
