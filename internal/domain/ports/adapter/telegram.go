// File: internal/domain/ports/adapter/telegram.go
package adapter

import (
	"context"

	"telegram-pinmsg-bot/internal/domain/model"
)

// Sender executes outbound requests against the chat platform.
type Sender interface {
	Do(ctx context.Context, req model.OutboundRequest) error
}

// Tracker receives a fire-and-forget copy of every inbound message.
type Tracker interface {
	Track(ctx context.Context, msg *model.Message)
}
