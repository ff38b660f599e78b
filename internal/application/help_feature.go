package application

import (
	"context"

	"telegram-pinmsg-bot/internal/domain/model"
)

// HelpCommands answer with the usage text. Like every command they only work in groups.
var HelpCommands = []string{"help", "start"}

// HelpFeature answers the help commands with the usage text.
type HelpFeature struct {
	texts Texts
}

func NewHelpFeature(texts Texts) *HelpFeature {
	return &HelpFeature{texts: texts}
}

func (h *HelpFeature) Register(d *Dispatcher) {
	for _, name := range HelpCommands {
		d.On(CommandEvent(name), h.handleHelp)
	}
}

func (h *HelpFeature) handleHelp(ctx context.Context, ev *Event) (Result, error) {
	return Respond(model.NewSendMessage(ev.Chat.ID, h.texts.T("help_text"))), nil
}
