//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package chat

import (
	"context"
	"time"

	"github.com/JovanneSousa/health-chat-sync/internal/changefeed"
	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

type DBRepo interface {
	GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error)
	ListMessages(ctx context.Context, conversationID string) (model.MessageList, error)
	InsertMessage(ctx context.Context, message model.NewMessage) (*model.Message, error)
	AssignConversation(ctx context.Context, conversationID, attendantID string) error
	TouchConversation(ctx context.Context, conversationID string) (time.Time, error)
}

type Feed interface {
	Subscribe(filter changefeed.Filter, handler changefeed.Handler) *changefeed.Subscription
}
