package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-pinmsg-bot/internal/config"
	"telegram-pinmsg-bot/internal/domain"
	"telegram-pinmsg-bot/internal/domain/model"
	"telegram-pinmsg-bot/internal/domain/ports/adapter"
	"telegram-pinmsg-bot/internal/infra/logging"
	"telegram-pinmsg-bot/internal/infra/metrics"
)

var _ adapter.Sender = (*Client)(nil)

// Client executes outbound requests against the Bot API and exposes the update
// and webhook calls the transports need.
type Client struct {
	bot *tgbotapi.BotAPI
	log *zerolog.Logger
}

// NewClient authenticates with the Bot API; it fails when the token is rejected.
func NewClient(cfg *config.BotConfig, logger *zerolog.Logger) (*Client, error) {
	if cfg == nil || cfg.Token == "" {
		return nil, fmt.Errorf("%w: bot token is empty", domain.ErrConfiguration)
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: connect bot api: %v", domain.ErrTransport, err)
	}
	return newClient(bot, logger), nil
}

// NewClientWithEndpoint talks to a custom Bot API endpoint, formatted like
// tgbotapi.APIEndpoint.
func NewClientWithEndpoint(token, endpoint string, httpClient tgbotapi.HTTPClient, logger *zerolog.Logger) (*Client, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("%w: connect bot api: %v", domain.ErrTransport, err)
	}
	return newClient(bot, logger), nil
}

func newClient(bot *tgbotapi.BotAPI, logger *zerolog.Logger) *Client {
	l := logger.With().Str("component", "TelegramClient").Logger()
	return &Client{bot: bot, log: &l}
}

// Username is the bot's own username as reported by getMe.
func (c *Client) Username() string { return c.bot.Self.UserName }

// Do performs one outbound request.
func (c *Client) Do(ctx context.Context, req model.OutboundRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chattable, err := toChattable(req)
	if err != nil {
		metrics.IncOutbound(req.Action, false)
		return err
	}
	if _, err := c.bot.Send(chattable); err != nil {
		metrics.IncOutbound(req.Action, false)
		log := logging.With(ctx, c.log)
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			log.Warn().Int("code", apiErr.Code).Str("action", req.Action).Msg(apiErr.Message)
		}
		return fmt.Errorf("%w: %s: %v", domain.ErrTransport, req.Action, err)
	}
	metrics.IncOutbound(req.Action, true)
	return nil
}

// SetWebhook registers url as the update destination.
func (c *Client) SetWebhook(ctx context.Context, url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("%w: webhook url: %v", domain.ErrConfiguration, err)
	}
	if _, err := c.bot.Request(wh); err != nil {
		return fmt.Errorf("%w: setWebhook: %v", domain.ErrTransport, err)
	}
	return nil
}

// DeleteWebhook clears any registered webhook so getUpdates can be used.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	if _, err := c.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("%w: deleteWebhook: %v", domain.ErrTransport, err)
	}
	return nil
}

// GetUpdates long-polls for updates after offset.
func (c *Client) GetUpdates(ctx context.Context, offset, timeout int) ([]model.Update, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := c.bot.GetUpdates(tgbotapi.UpdateConfig{Offset: offset, Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("%w: getUpdates: %v", domain.ErrTransport, err)
	}
	out := make([]model.Update, 0, len(raw))
	for _, u := range raw {
		out = append(out, ToModelUpdate(u))
	}
	return out, nil
}

func toChattable(req model.OutboundRequest) (tgbotapi.Chattable, error) {
	p := req.Params
	switch req.Action {
	case model.ActionSendMessage:
		msg := tgbotapi.NewMessage(p.ChatID, p.Text)
		msg.ReplyToMessageID = p.ReplyToMessageID
		if p.ReplyMarkup != nil && p.ReplyMarkup.ForceReply {
			msg.ReplyMarkup = tgbotapi.ForceReply{ForceReply: true, Selective: p.ReplyMarkup.Selective}
		}
		return msg, nil
	case model.ActionForwardMessage:
		return tgbotapi.NewForward(p.ChatID, p.FromChatID, p.MessageID), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAction, req.Action)
	}
}
