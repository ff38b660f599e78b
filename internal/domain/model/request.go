package model

import "encoding/json"

// Outbound actions understood by the platform sender.
const (
	ActionSendMessage    = "sendMessage"
	ActionForwardMessage = "forwardMessage"
)

// ReplyMarkup mirrors the subset of platform reply markup the bot produces.
type ReplyMarkup struct {
	ForceReply bool `json:"force_reply,omitempty"`
	Selective  bool `json:"selective,omitempty"`
}

// RequestParams holds the parameters of an OutboundRequest. Only the fields relevant
// to the action are set.
type RequestParams struct {
	ChatID           int64        `json:"chat_id"`
	FromChatID       int64        `json:"from_chat_id,omitempty"`
	MessageID        int          `json:"message_id,omitempty"`
	Text             string       `json:"text,omitempty"`
	ReplyToMessageID int          `json:"reply_to_message_id,omitempty"`
	ReplyMarkup      *ReplyMarkup `json:"reply_markup,omitempty"`
}

// OutboundRequest describes one platform action. Values are never mutated after
// construction; the With* helpers return modified copies.
type OutboundRequest struct {
	Action string        `json:"action"`
	Params RequestParams `json:"parameters"`
}

// NewSendMessage builds a sendMessage request.
func NewSendMessage(chatID int64, text string) OutboundRequest {
	return OutboundRequest{
		Action: ActionSendMessage,
		Params: RequestParams{ChatID: chatID, Text: text},
	}
}

// NewForwardMessage builds a forwardMessage request copying messageID from
// fromChatID into chatID.
func NewForwardMessage(chatID, fromChatID int64, messageID int) OutboundRequest {
	return OutboundRequest{
		Action: ActionForwardMessage,
		Params: RequestParams{ChatID: chatID, FromChatID: fromChatID, MessageID: messageID},
	}
}

func (r OutboundRequest) WithReplyTo(messageID int) OutboundRequest {
	r.Params.ReplyToMessageID = messageID
	return r
}

// WithForceReply asks the platform to open a threaded reply for the addressed user only.
func (r OutboundRequest) WithForceReply() OutboundRequest {
	r.Params.ReplyMarkup = &ReplyMarkup{ForceReply: true, Selective: true}
	return r
}

func (r OutboundRequest) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		return r.Action
	}
	return string(b)
}
