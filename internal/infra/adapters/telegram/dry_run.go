package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-pinmsg-bot/internal/domain/model"
	"telegram-pinmsg-bot/internal/domain/ports/adapter"
	"telegram-pinmsg-bot/internal/infra/logging"
	"telegram-pinmsg-bot/internal/infra/metrics"
)

var _ adapter.Sender = (*DryRunSender)(nil)

// DryRunSender logs outbound requests instead of sending them. Used for local runs.
type DryRunSender struct {
	log *zerolog.Logger
}

func NewDryRunSender(logger *zerolog.Logger) *DryRunSender {
	l := logger.With().Str("component", "DryRunSender").Logger()
	return &DryRunSender{log: &l}
}

func (s *DryRunSender) Do(ctx context.Context, req model.OutboundRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := toChattable(req); err != nil {
		metrics.IncOutbound(req.Action, false)
		return err
	}
	logging.With(ctx, s.log).Info().
		Str("action", req.Action).
		RawJSON("request", []byte(req.String())).
		Msg("dry-run outbound request")
	metrics.IncOutbound(req.Action, true)
	return nil
}
