package model

import (
	"time"
)

type ConversationStatus string

const (
	StatusActive   ConversationStatus = "active"
	StatusPending  ConversationStatus = "pending"
	StatusResolved ConversationStatus = "resolved"
)

type ConversationPriority string

const (
	PriorityLow    ConversationPriority = "low"
	PriorityNormal ConversationPriority = "normal"
	PriorityMedium ConversationPriority = "medium"
	PriorityHigh   ConversationPriority = "high"
	PriorityUrgent ConversationPriority = "urgent"
)

const (
	DefaultConversationTitle = "Nova Conversa"
	// GreetingMessage opens every conversation a patient starts.
	GreetingMessage = "Olá! Preciso de ajuda."
)

func (s ConversationStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusResolved:
		return true
	default:
		return false
	}
}

// Display maps the stored status onto the three dashboard buckets.
func (s ConversationStatus) Display() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusResolved:
		return "resolved"
	default:
		return "in-progress"
	}
}

// Display collapses the stored priority onto low/medium/high.
func (p ConversationPriority) Display() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh, PriorityUrgent:
		return "high"
	default:
		return "medium"
	}
}

type ConversationList []Conversation

type Conversation struct {
	ID          string               `db:"id" json:"id"`
	Title       string               `db:"title" json:"title"`
	PatientID   string               `db:"patient_id" json:"patient_id"`
	AttendantID *string              `db:"attendant_id" json:"attendant_id"`
	Status      ConversationStatus   `db:"status" json:"status"`
	Priority    ConversationPriority `db:"priority" json:"priority"`
	CreatedAt   time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `db:"updated_at" json:"updated_at"`
}

func (c Conversation) Assigned() bool {
	return c.AttendantID != nil && *c.AttendantID != ""
}

func (c Conversation) AssignedTo(userID string) bool {
	return c.Assigned() && *c.AttendantID == userID
}

type NewConversation struct {
	Title     string
	PatientID string
	Status    ConversationStatus
	Priority  ConversationPriority
}

// ConversationFilter narrows aggregate counts; zero fields are ignored.
type ConversationFilter struct {
	Status       ConversationStatus
	AttendantID  string
	UpdatedSince time.Time
}

// ConversationSummary is the role-scoped list projection of a conversation.
type ConversationSummary struct {
	Conversation

	PatientName     string     `json:"patient_name"`
	LastMessage     string     `json:"last_message"`
	LastMessageAt   *time.Time `json:"last_message_at,omitempty"`
	UnreadCount     int        `json:"unread_count"`
	DisplayStatus   string     `json:"display_status"`
	DisplayPriority string     `json:"display_priority"`
}

type ConversationSummaryList []ConversationSummary
