package model

// PinNamespace is the State Store namespace holding one PinRecord per chat.
const PinNamespace = "pin"

// PinRecord is the pinned message of a chat. Absence means nothing is pinned.
type PinRecord struct {
	MessageID int `json:"message_id"`
}
