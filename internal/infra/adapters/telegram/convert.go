package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-pinmsg-bot/internal/domain/model"
)

// ToModelUpdate maps a Bot API update onto the domain model. Updates other than
// new messages carry a nil Message.
func ToModelUpdate(u tgbotapi.Update) model.Update {
	return model.Update{UpdateID: u.UpdateID, Message: toModelMessage(u.Message, 0)}
}

// reply chains from the API are one level deep; depth guards hand-built input
func toModelMessage(m *tgbotapi.Message, depth int) *model.Message {
	if m == nil || depth > 1 {
		return nil
	}
	out := &model.Message{
		MessageID:      m.MessageID,
		Date:           m.Date,
		Text:           m.Text,
		Caption:        m.Caption,
		ReplyToMessage: toModelMessage(m.ReplyToMessage, depth+1),
	}
	if m.Chat != nil {
		out.Chat = model.Chat{ID: m.Chat.ID, Type: model.ChatType(m.Chat.Type), Title: m.Chat.Title}
	}
	if m.From != nil {
		out.From = &model.User{
			ID:        m.From.ID,
			IsBot:     m.From.IsBot,
			FirstName: m.From.FirstName,
			Username:  m.From.UserName,
		}
	}
	return out
}
