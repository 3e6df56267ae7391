package cota

import "context"

// MessageRef identifies one rendered message in a chat.
type MessageRef struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

// Button is one inline keyboard cell. Token is the opaque callback command,
// a space-delimited verb plus optional integer argument.
type Button struct {
	Text  string
	Token string
}

// Transport abstracts the chat backend. Edit and Delete return
// ErrStaleMessage when the backend refuses to touch an old message.
type Transport interface {
	Send(chatID int64, text string, grid [][]Button) (MessageRef, error)
	Edit(ref MessageRef, text string, grid [][]Button) error
	Delete(ref MessageRef) error
	// Notice shows a transient in-chat message that deletes itself after a
	// short delay. Fire-and-forget: it must never block the caller.
	Notice(chatID int64, text string)
}

// Store persists the serialized session registry. Load returns (nil, nil)
// when no snapshot exists yet.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}
