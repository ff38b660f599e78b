package model

import "strings"

type ChatType string

const (
	ChatPrivate    ChatType = "private"
	ChatGroup      ChatType = "group"
	ChatSupergroup ChatType = "supergroup"
	ChatChannel    ChatType = "channel"
)

// Chat is the conversation an update was received in. It is owned by the platform.
type Chat struct {
	ID    int64    `json:"id"`
	Type  ChatType `json:"type"`
	Title string   `json:"title,omitempty"`
}

// IsGroup reports whether the chat is a group or supergroup.
func (c Chat) IsGroup() bool {
	return c.Type == ChatGroup || c.Type == ChatSupergroup
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Message is immutable once received.
type Message struct {
	MessageID      int      `json:"message_id"`
	Chat           Chat     `json:"chat"`
	From           *User    `json:"from,omitempty"`
	Date           int      `json:"date,omitempty"`
	Text           string   `json:"text,omitempty"`
	Caption        string   `json:"caption,omitempty"`
	ReplyToMessage *Message `json:"reply_to_message,omitempty"`
}

// SenderID returns the id of the sending user, or 0 for anonymous senders.
func (m *Message) SenderID() int64 {
	if m == nil || m.From == nil {
		return 0
	}
	return m.From.ID
}

// Command is a structured form of a message starting with "/name".
type Command struct {
	Name      string `json:"name"`
	Mention   string `json:"mention,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ParseCommand extracts a command from message text. The second return value is
// false when the text is not a command.
func ParseCommand(text string) (Command, bool) {
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}
	head, args, _ := strings.Cut(text, " ")
	if nl := strings.IndexByte(head, '\n'); nl >= 0 {
		args = head[nl+1:] + " " + args
		head = head[:nl]
	}
	name := strings.TrimPrefix(head, "/")
	name, mention, _ := strings.Cut(name, "@")
	if name == "" {
		return Command{}, false
	}
	return Command{
		Name:      strings.ToLower(name),
		Mention:   mention,
		Arguments: strings.TrimSpace(args),
	}, true
}

// Update is one inbound delivery from the platform.
type Update struct {
	UpdateID int      `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// ChatID returns the chat the update belongs to, or 0 when it carries no message.
func (u Update) ChatID() int64 {
	if u.Message == nil {
		return 0
	}
	return u.Message.Chat.ID
}
