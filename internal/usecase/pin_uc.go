package usecase

import (
	"context"
	"errors"
	"strconv"

	"telegram-pinmsg-bot/internal/domain"
	"telegram-pinmsg-bot/internal/domain/model"
	"telegram-pinmsg-bot/internal/domain/ports/repository"
	"telegram-pinmsg-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ PinUseCase = (*pinUC)(nil)

// PinUseCase stores, clears and reads the pinned message of a chat.
type PinUseCase interface {
	PinMessage(ctx context.Context, chatID int64, messageID int) error
	// UnpinMessage reports whether a pinned message existed.
	UnpinMessage(ctx context.Context, chatID int64) (bool, error)
	// GetPinnedMessage returns the pinned message id; ok is false when nothing is pinned.
	GetPinnedMessage(ctx context.Context, chatID int64) (messageID int, ok bool, err error)
}

type pinUC struct {
	store repository.KeyedStore
	log   *zerolog.Logger
}

func NewPinUseCase(store repository.KeyedStore, logger *zerolog.Logger) *pinUC {
	l := logger.With().Str("component", "PinUC").Logger()
	return &pinUC{store: store, log: &l}
}

func chatKey(chatID int64) string { return strconv.FormatInt(chatID, 10) }

func (u *pinUC) PinMessage(ctx context.Context, chatID int64, messageID int) error {
	defer logging.TraceDuration(u.log, "PinUC.PinMessage")()
	if messageID <= 0 {
		return domain.ErrInvalidArgument
	}
	logging.With(ctx, u.log).Info().Int64("chat_id", chatID).Int("message_id", messageID).Msg("pinning message")
	return u.store.Set(ctx, model.PinNamespace, chatKey(chatID), model.PinRecord{MessageID: messageID})
}

func (u *pinUC) UnpinMessage(ctx context.Context, chatID int64) (bool, error) {
	defer logging.TraceDuration(u.log, "PinUC.UnpinMessage")()
	logging.With(ctx, u.log).Info().Int64("chat_id", chatID).Msg("unpinning message")
	n, err := u.store.Del(ctx, model.PinNamespace, chatKey(chatID))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (u *pinUC) GetPinnedMessage(ctx context.Context, chatID int64) (int, bool, error) {
	defer logging.TraceDuration(u.log, "PinUC.GetPinnedMessage")()
	logging.With(ctx, u.log).Debug().Int64("chat_id", chatID).Msg("obtaining pinned message")

	var rec model.PinRecord
	err := u.store.Get(ctx, model.PinNamespace, chatKey(chatID), &rec)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if rec.MessageID == 0 {
		return 0, false, nil
	}
	return rec.MessageID, true, nil
}
