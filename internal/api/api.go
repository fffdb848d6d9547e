// Package api holds the request and response bodies of the HTTP API.
package api

import (
	"time"

	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

type Error struct {
	Error string `json:"error"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type SessionResponse struct {
	User      model.Identity `json:"user"`
	Token     string         `json:"token,omitempty"`
	ExpiresAt time.Time      `json:"expires_at"`
}

type CreateConversationRequest struct {
	Title string `json:"title"`
}

type AssignRequest struct {
	// AttendantID defaults to the caller.
	AttendantID string `json:"attendant_id"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

type SendMessageRequest struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
}

type SendMessageResponse struct {
	Message model.Message `json:"message"`
}

type QuickRepliesResponse struct {
	Replies []string `json:"replies"`
}

type ConnectTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type SubscribeTokenResponse struct {
	Token     string `json:"token"`
	Channel   string `json:"channel"`
	ExpiresAt int64  `json:"expires_at"`
}
