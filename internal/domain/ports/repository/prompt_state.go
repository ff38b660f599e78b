package repository

import (
	"context"
	"fmt"
	"time"

	"telegram-pinmsg-bot/internal/domain/model"
)

// PromptStateRepository is the port for outstanding prompts, one per (chat, user).
type PromptStateRepository interface {
	// Save stores the state, replacing any outstanding one for the same pair.
	Save(ctx context.Context, state *model.PromptState) error
	// Take atomically loads and removes the state. It returns (nil, nil) when none
	// is outstanding.
	Take(ctx context.Context, chatID, userID int64) (*model.PromptState, error)
	Delete(ctx context.Context, chatID, userID int64) error
}

// RateLimiter counts hits against a key inside a sliding window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// UserCommandKey scopes a rate limit to one command of one user in one chat.
func UserCommandKey(chatID, userID int64, command string) string {
	return fmt.Sprintf("rate_limit:%d:%d:%s", chatID, userID, command)
}
