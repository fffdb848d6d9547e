package model

import "github.com/golang-jwt/jwt/v5"

type CentrifugoEvent struct {
	Method string      `json:"method"`
	Params interface{} `json:"params"`
}

type CentrifugoEventParams struct {
	Channel string      `json:"channel"`
	Data    interface{} `json:"data"`
}

type CentrifugoConnectClaims struct {
	jwt.RegisteredClaims
}

type CentrifugoSubscribeClaims struct {
	jwt.RegisteredClaims

	Channel string `json:"channel"`
	Client  string `json:"client,omitempty"`

	UserID string `json:"user_id"`
}

type SessionClaims struct {
	jwt.RegisteredClaims

	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// InboxUpdate is pushed to a user's inbox channel after every list refresh.
type InboxUpdate struct {
	State         string                  `json:"state"`
	Conversations ConversationSummaryList `json:"conversations"`
	Error         string                  `json:"error,omitempty"`
}

// ChatUpdate is pushed to a user's chat channel after every timeline change.
type ChatUpdate struct {
	State        string        `json:"state"`
	Conversation *Conversation `json:"conversation,omitempty"`
	Messages     []ChatMessage `json:"messages"`
	Error        string        `json:"error,omitempty"`
}

type ChatMessage struct {
	Message
	Pending bool `json:"pending"`
	Mine    bool `json:"mine"`
}
