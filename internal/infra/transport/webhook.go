package transport

import (
	"encoding/json"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-pinmsg-bot/internal/infra/adapters/telegram"
	"telegram-pinmsg-bot/internal/infra/logging"
	"telegram-pinmsg-bot/internal/infra/metrics"
)

const maxUpdateBody = 1 << 20

// WebhookHandler decodes one update per POST and injects it into stream. The
// response does not wait for the update to be handled.
func WebhookHandler(stream *Stream, logger *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logging.With(r.Context(), logger)

		var raw tgbotapi.Update
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBody)).Decode(&raw); err != nil {
			log.Warn().Err(err).Msg("malformed webhook update")
			http.Error(w, "malformed update", http.StatusBadRequest)
			return
		}
		metrics.IncUpdate("webhook")

		upd := telegram.ToModelUpdate(raw)
		if err := stream.Inject(r.Context(), upd); err != nil {
			log.Error().Err(err).Int("update_id", upd.UpdateID).Msg("inject webhook update")
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
