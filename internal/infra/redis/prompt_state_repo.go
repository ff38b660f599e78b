package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telegram-pinmsg-bot/internal/domain"
	"telegram-pinmsg-bot/internal/domain/model"
	"telegram-pinmsg-bot/internal/domain/ports/repository"
)

var _ repository.PromptStateRepository = (*PromptStateRepo)(nil)

// PromptStateRepo manages outstanding prompts in Redis. Expiry is delegated to key TTLs.
type PromptStateRepo struct {
	client *Client
	ttl    time.Duration
}

func NewPromptStateRepo(client *Client, ttl time.Duration) *PromptStateRepo {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &PromptStateRepo{client: client, ttl: ttl}
}

func (s *PromptStateRepo) stateKey(chatID, userID int64) string {
	return fmt.Sprintf("prompt_state:%d:%d", chatID, userID)
}

func (s *PromptStateRepo) Save(ctx context.Context, state *model.PromptState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.stateKey(state.ChatID, state.UserID), data, s.ttl); err != nil {
		return fmt.Errorf("%w: save prompt: %v", domain.ErrStorage, err)
	}
	return nil
}

func (s *PromptStateRepo) Take(ctx context.Context, chatID, userID int64) (*model.PromptState, error) {
	data, err := s.client.GetDel(ctx, s.stateKey(chatID, userID))
	if IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: take prompt: %v", domain.ErrStorage, err)
	}

	var state model.PromptState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("%w: decode prompt: %v", domain.ErrStorage, err)
	}
	return &state, nil
}

func (s *PromptStateRepo) Delete(ctx context.Context, chatID, userID int64) error {
	if _, err := s.client.Del(ctx, s.stateKey(chatID, userID)); err != nil {
		return fmt.Errorf("%w: delete prompt: %v", domain.ErrStorage, err)
	}
	return nil
}
