package core

import (
	"context"
	"time"
)

// Update is one record returned by the messaging backend's poll endpoint.
type Update struct {
	UpdateID int64
	Message  *IncomingMessage
}

// IncomingMessage represents a message received from Telegram.
// Text is nil when the message carried no text payload.
type IncomingMessage struct {
	UpdateID  int64
	MessageID int64
	ChatID    int64
	Text      *string
	Timestamp time.Time
}

// MessageHandler processes an inbound message.
type MessageHandler func(ctx context.Context, msg IncomingMessage)
