package core

import "time"

// Reply represents an outbound message to be delivered to a chat.
type Reply struct {
	ID        string    `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
