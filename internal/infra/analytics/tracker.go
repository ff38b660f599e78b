package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"telegram-pinmsg-bot/internal/config"
	"telegram-pinmsg-bot/internal/domain/model"
	"telegram-pinmsg-bot/internal/domain/ports/adapter"
	"telegram-pinmsg-bot/internal/infra/metrics"
	"telegram-pinmsg-bot/internal/infra/worker"
)

var _ adapter.Tracker = (*Tracker)(nil)

// Submitter queues background work.
type Submitter interface {
	Submit(task worker.Task) error
}

// Tracker counts every inbound message and, when a sink URL is configured, posts a
// copy of it in the background. Nothing waits for the sink.
type Tracker struct {
	sink   string
	token  string
	pool   Submitter
	client *http.Client
	log    *zerolog.Logger
}

func NewTracker(cfg *config.AnalyticsConfig, pool Submitter, logger *zerolog.Logger) *Tracker {
	l := logger.With().Str("component", "Analytics").Logger()
	return &Tracker{
		sink:   cfg.URL,
		token:  cfg.Token,
		pool:   pool,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    &l,
	}
}

func (t *Tracker) Track(ctx context.Context, msg *model.Message) {
	if msg == nil {
		return
	}
	metrics.IncTrackedMessage(string(msg.Chat.Type))
	if t.sink == "" || t.pool == nil {
		return
	}

	body, err := json.Marshal(msg)
	if err != nil {
		t.log.Debug().Err(err).Msg("encode tracked message")
		return
	}
	target := t.eventURL(msg)
	if err := t.pool.Submit(func(ctx context.Context) error {
		return t.post(ctx, target, body)
	}); err != nil {
		t.log.Debug().Err(err).Int("message_id", msg.MessageID).Msg("analytics event dropped")
	}
}

func (t *Tracker) eventURL(msg *model.Message) string {
	name := "Message"
	if cmd, ok := model.ParseCommand(msg.Text); ok {
		name = "/" + cmd.Name
	}
	q := url.Values{}
	q.Set("token", t.token)
	q.Set("uid", strconv.FormatInt(msg.SenderID(), 10))
	q.Set("name", name)
	return t.sink + "?" + q.Encode()
}

func (t *Tracker) post(ctx context.Context, target string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("analytics post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("analytics post: status %d", resp.StatusCode)
	}
	return nil
}
