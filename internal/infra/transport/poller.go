package transport

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-pinmsg-bot/internal/domain/model"
	"telegram-pinmsg-bot/internal/infra/metrics"
)

// UpdateSource is the pull side of the Bot API.
type UpdateSource interface {
	DeleteWebhook(ctx context.Context) error
	GetUpdates(ctx context.Context, offset, timeout int) ([]model.Update, error)
}

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// Poller long-polls for updates and injects them in arrival order.
type Poller struct {
	src     UpdateSource
	stream  *Stream
	timeout int
	log     *zerolog.Logger

	offset int
	sleep  func(ctx context.Context, d time.Duration) bool
}

func NewPoller(src UpdateSource, stream *Stream, timeoutSeconds int, logger *zerolog.Logger) *Poller {
	l := logger.With().Str("component", "Poller").Logger()
	return &Poller{src: src, stream: stream, timeout: timeoutSeconds, log: &l, sleep: sleepCtx}
}

// Run drops any webhook and polls until ctx ends.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.src.DeleteWebhook(ctx); err != nil {
		p.log.Warn().Err(err).Msg("deleteWebhook failed; polling anyway")
	}
	p.log.Info().Int("timeout", p.timeout).Msg("polling started")

	backoff := minBackoff
	for ctx.Err() == nil {
		ups, err := p.src.GetUpdates(ctx, p.offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			p.log.Warn().Err(err).Dur("backoff", backoff).Msg("getUpdates failed")
			if !p.sleep(ctx, backoff) {
				break
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = minBackoff

		for _, upd := range ups {
			if upd.UpdateID >= p.offset {
				p.offset = upd.UpdateID + 1
			}
			metrics.IncUpdate("poll")
			if err := p.stream.Inject(ctx, upd); err != nil {
				p.log.Error().Err(err).Int("update_id", upd.UpdateID).Msg("inject polled update")
				return err
			}
		}
	}
	p.log.Info().Msg("polling stopped")
	return ctx.Err()
}

// Offset is the next update id requested.
func (p *Poller) Offset() int { return p.offset }

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
