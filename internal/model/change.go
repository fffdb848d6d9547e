package model

import (
	"encoding/json"
	"fmt"
)

const (
	TableConversations = "conversations"
	TableMessages      = "messages"
	TableProfiles      = "profiles"
)

type ChangeOp string

const (
	OpInsert ChangeOp = "INSERT"
	OpUpdate ChangeOp = "UPDATE"
	OpDelete ChangeOp = "DELETE"
)

// ChangeEvent is one row-level notification emitted by the store triggers.
type ChangeEvent struct {
	Table  string          `json:"table"`
	Op     ChangeOp        `json:"op"`
	Record json.RawMessage `json:"record,omitempty"`
	Old    json.RawMessage `json:"old_record,omitempty"`
}

// Row returns the new row image, or the old one for deletes.
func (e ChangeEvent) Row() json.RawMessage {
	if e.Op == OpDelete || len(e.Record) == 0 {
		return e.Old
	}
	return e.Record
}

func (e ChangeEvent) Message() (Message, error) {
	var msg Message
	if e.Table != TableMessages {
		return msg, fmt.Errorf("event on table %s is not a message", e.Table)
	}
	if err := json.Unmarshal(e.Row(), &msg); err != nil {
		return msg, fmt.Errorf("failed to decode message row: %w", err)
	}
	return msg, nil
}

func (e ChangeEvent) Conversation() (Conversation, error) {
	var conv Conversation
	if e.Table != TableConversations {
		return conv, fmt.Errorf("event on table %s is not a conversation", e.Table)
	}
	if err := json.Unmarshal(e.Row(), &conv); err != nil {
		return conv, fmt.Errorf("failed to decode conversation row: %w", err)
	}
	return conv, nil
}
