package model

import (
	"time"
)

const (
	TextMessageType = "text"
)

type MessageList []Message

type Message struct {
	ID             string    `db:"id" json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	SenderID       string    `db:"sender_id" json:"sender_id"`
	Content        string    `db:"content" json:"content"`
	MessageType    string    `db:"message_type" json:"message_type"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Before reports whether m sorts ahead of other: created_at ascending, ties broken by id.
func (m Message) Before(other Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID < other.ID
}

type NewMessage struct {
	ConversationID string
	SenderID       string
	Content        string
	MessageType    string
}
