package model

import "time"

// PromptKindPin is the prompt asking a user for the message to pin.
const PromptKindPin = "pin"

// PromptState is the outstanding fill-in-the-blank interaction for one (chat, user) pair.
type PromptState struct {
	ChatID    int64      `json:"chat_id"`
	UserID    int64      `json:"user_id"`
	Kind      string     `json:"kind"`
	Data      PromptData `json:"data"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at,omitempty"`
}

// PromptData anchors the prompt to the message that triggered it.
type PromptData struct {
	MessageID int `json:"message_id"`
}

// Expired reports whether the prompt has passed its expiry at the given instant.
// A zero ExpiresAt never expires.
func (p *PromptState) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt)
}
